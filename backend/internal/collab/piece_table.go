/*
结构示例

初始文档内容 `"Hello world"`：

- original buffer 内容：`"Hello world"`
- add buffer 为空
- piece 表：

	[ (orig, offset=0, length=11) ]  // 整个文档

change-set `[retain(5) insert(" collaborative")]` 作用之后：

- add buffer = `" collaborative"`
- piece 表从一条拆成三条：

	[
	  (orig, offset=0, length=5),   // "Hello"
	  (add,  offset=0, length=14),  // " collaborative"
	  (orig, offset=5, length=6),   // " world"
	]
*/
package collab

import (
	"fmt"
	"strings"

	"collabDelta/backend/internal/ot/delta"
)

type bufferKind int

const (
	bufOriginal bufferKind = iota
	bufAdd
)

type piece struct {
	// 从 original 还是 add 上切
	buf    bufferKind
	offset int
	length int
}

// PieceTable 文本缓冲区；按字符（rune）寻址，属性不影响文本内容
type PieceTable struct {
	original []rune
	add      []rune
	pieces   []piece
}

func NewPieceTable(initial string) *PieceTable {
	r := []rune(initial)
	pt := &PieceTable{original: r}
	if len(r) > 0 {
		pt.pieces = []piece{{buf: bufOriginal, offset: 0, length: len(r)}}
	}
	return pt
}

// NewPieceTableFromDelta 从文档形式的 Delta 建立缓冲区
func NewPieceTableFromDelta(doc *delta.Delta) (*PieceTable, error) {
	if !doc.IsDocument() {
		return nil, fmt.Errorf("%w: not a document: %s", delta.ErrInvalidOp, doc)
	}
	return NewPieceTable(DocumentText(doc)), nil
}

func (pt *PieceTable) Len() int {
	n := 0
	for _, p := range pt.pieces {
		n += p.length
	}
	return n
}

func (pt *PieceTable) String() string {
	var sb strings.Builder
	for _, p := range pt.pieces {
		sb.WriteString(string(pt.source(p.buf)[p.offset : p.offset+p.length]))
	}
	return sb.String()
}

func (pt *PieceTable) source(kind bufferKind) []rune {
	if kind == bufAdd {
		return pt.add
	}
	return pt.original
}

// Apply 把 change-set 作用到缓冲区。
// retain/delete 越过文档末尾时返回 ErrOutOfRange，缓冲区保持不变。
func (pt *PieceTable) Apply(d *delta.Delta) error {
	if err := checkRange(pt.Len(), d); err != nil {
		return err
	}
	pos := 0
	for _, op := range d.Ops() {
		switch op.Kind {
		case delta.KindRetain:
			pos += op.Count
		case delta.KindInsert:
			pos += pt.insertAt(pos, opRunes(op))
		case delta.KindDelete:
			pt.deleteAt(pos, op.Count)
		}
	}
	return nil
}

// insertAt 追加到 add buffer，再把目标 piece 拆成 左 / 新 / 右
func (pt *PieceTable) insertAt(pos int, r []rune) int {
	start := len(pt.add)
	pt.add = append(pt.add, r...)
	added := piece{buf: bufAdd, offset: start, length: len(r)}

	idx, offset := pt.locate(pos)
	if idx == len(pt.pieces) {
		pt.pieces = append(pt.pieces, added)
		return len(r)
	}

	cur := pt.pieces[idx]
	split := make([]piece, 0, 3)
	if offset > 0 {
		split = append(split, piece{buf: cur.buf, offset: cur.offset, length: offset})
	}
	split = append(split, added)
	if cur.length-offset > 0 {
		split = append(split, piece{buf: cur.buf, offset: cur.offset + offset, length: cur.length - offset})
	}

	// 只替换目标 piece，其余原样
	newPieces := make([]piece, 0, len(pt.pieces)+2)
	newPieces = append(newPieces, pt.pieces[:idx]...)
	newPieces = append(newPieces, split...)
	newPieces = append(newPieces, pt.pieces[idx+1:]...)
	pt.pieces = newPieces
	return len(r)
}

// deleteAt 从 pos 开始删 n 个字符，跨 piece 时逐个裁剪
func (pt *PieceTable) deleteAt(pos, n int) {
	remain := n
	idx, offset := pt.locate(pos)

	for remain > 0 && idx < len(pt.pieces) {
		cur := pt.pieces[idx]
		take := min(remain, cur.length-offset)

		if offset == 0 && take == cur.length {
			// 整个 piece 删掉，idx 不动
			pt.pieces = append(pt.pieces[:idx], pt.pieces[idx+1:]...)
			remain -= take
			continue
		}

		left := piece{buf: cur.buf, offset: cur.offset, length: offset}
		right := piece{buf: cur.buf, offset: cur.offset + offset + take, length: cur.length - offset - take}
		repl := make([]piece, 0, 2)
		if left.length > 0 {
			repl = append(repl, left)
		}
		if right.length > 0 {
			repl = append(repl, right)
		}

		newPieces := make([]piece, 0, len(pt.pieces)+1)
		newPieces = append(newPieces, pt.pieces[:idx]...)
		newPieces = append(newPieces, repl...)
		newPieces = append(newPieces, pt.pieces[idx+1:]...)
		pt.pieces = newPieces

		remain -= take
		// 下一轮从 右半段（或其后的 piece）开头继续
		idx += len(repl)
		if right.length > 0 {
			idx--
		}
		offset = 0
	}
}

// 根据逻辑位置 pos，找到对应的 piece 下标 idx 和在该 piece 内的偏移 offset
func (pt *PieceTable) locate(pos int) (idx int, offset int) {
	cur := 0
	for i, p := range pt.pieces {
		if pos < cur+p.length {
			return i, pos - cur
		}
		cur += p.length
	}
	return len(pt.pieces), 0
}

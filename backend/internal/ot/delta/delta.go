package delta

import (
	"fmt"
	"reflect"
	"strings"
)

// Delta 有序的 Op 序列。
//
// 只有 insert 时表示一份文档；混有 retain/delete 时表示对文档的一次修改（change-set），
// 从左到右作用：retain/delete 消耗原文档长度，insert 不消耗。
//
// 所有修改都经过 Push，保证：相邻同类型且属性相同的 Op 一定被合并；
// 同一位置上 insert 永远排在 delete 之前。
//
//	"ops":[{"retain":5},{"insert":"Hello"}]
type Delta []Op

// New 空 Delta，用于链式构造：New().Retain(5).Insert("Hello", nil)
func New() *Delta {
	return &Delta{}
}

// FromOps 用已有的 Op 列表构造 Delta。列表会被拷贝，长度为 0 的 Op 被丢弃，
// 其余保持原样（不做合并），与直接给定 ops 的语义一致。
func FromOps(ops []Op) *Delta {
	d := make(Delta, 0, len(ops))
	for _, op := range ops {
		if !op.valid() {
			continue
		}
		op.Attrs = op.Attrs.Clone()
		d = append(d, op)
	}
	return &d
}

// Ops 返回底层 Op 列表
func (d *Delta) Ops() []Op {
	if d == nil {
		return nil
	}
	return *d
}

// Insert 插入文本；空串直接忽略，空属性归一化为无属性
func (d *Delta) Insert(text string, attrs AttributeMap) *Delta {
	if text == "" {
		return d
	}
	return d.Push(Op{Kind: KindInsert, Text: text, Attrs: attrs.normalize()})
}

// InsertEmbed 插入非文本内容（长度为 1）；nil 忽略
func (d *Delta) InsertEmbed(embed any, attrs AttributeMap) *Delta {
	if embed == nil {
		return d
	}
	if s, ok := embed.(string); ok {
		return d.Insert(s, attrs)
	}
	return d.Push(Op{Kind: KindInsert, Embed: embed, Attrs: attrs.normalize()})
}

// Retain 保留 length 个单位，可同时修改属性；length <= 0 忽略
func (d *Delta) Retain(length int, attrs AttributeMap) *Delta {
	if length <= 0 {
		return d
	}
	return d.Push(Op{Kind: KindRetain, Count: length, Attrs: attrs.normalize()})
}

// Delete 删除 length 个单位；length <= 0 忽略
func (d *Delta) Delete(length int) *Delta {
	if length <= 0 {
		return d
	}
	return d.Push(Op{Kind: KindDelete, Count: length})
}

// Push 唯一的修改入口。按顺序应用：
//  1. delete 后面紧跟 delete：长度相加
//  2. delete 后面来了 insert：insert 放到 delete 前面（插入而不是追加）
//  3. 调整位置后，与前一个 Op 同为 insert 文本/retain 且属性相同：合并
func (d *Delta) Push(op Op) *Delta {
	if !op.valid() {
		return d
	}
	op.Attrs = op.Attrs.Clone()
	if op.Kind == KindDelete {
		op.Attrs = nil
	}

	ops := *d
	index := len(ops)
	if index > 0 {
		last := ops[index-1]
		if op.Kind == KindDelete && last.Kind == KindDelete {
			ops[index-1] = Op{Kind: KindDelete, Count: last.Count + op.Count}
			return d
		}
		if last.Kind == KindDelete && op.Kind == KindInsert {
			index--
			if index == 0 {
				*d = append(Delta{op}, ops...)
				return d
			}
			last = ops[index-1]
		}
		if last.Attrs.Equal(op.Attrs) {
			if op.isText() && last.isText() {
				ops[index-1] = Op{Kind: KindInsert, Text: last.Text + op.Text, Attrs: op.Attrs}
				return d
			}
			if op.Kind == KindRetain && last.Kind == KindRetain {
				ops[index-1] = Op{Kind: KindRetain, Count: last.Count + op.Count, Attrs: op.Attrs}
				return d
			}
		}
	}

	if index == len(ops) {
		*d = append(ops, op)
		return d
	}
	ops = append(ops, Op{})
	copy(ops[index+1:], ops[index:])
	ops[index] = op
	*d = ops
	return d
}

// Chop 去掉末尾无属性的 retain，它不携带任何信息
func (d *Delta) Chop() *Delta {
	ops := *d
	if n := len(ops); n > 0 {
		last := ops[n-1]
		if last.Kind == KindRetain && len(last.Attrs) == 0 {
			*d = ops[:n-1]
		}
	}
	return d
}

// Concat 把 other 接在后面，接缝处照常合并；返回新的 Delta
func (d *Delta) Concat(other *Delta) *Delta {
	out := make(Delta, len(*d), len(*d)+len(other.Ops()))
	copy(out, *d)
	res := &out
	for _, op := range other.Ops() {
		res.Push(op)
	}
	return res
}

// Slice 按长度单位截取 [start, end)；end < 0 表示到末尾
func (d *Delta) Slice(start, end int) *Delta {
	out := New()
	iter := NewOpIterator(d.Ops())
	index := 0
	for (end < 0 || index < end) && iter.HasNext() {
		var op Op
		if index < start {
			op = iter.NextN(start - index)
		} else {
			n, _ := iter.PeekLength()
			if end >= 0 && end-index < n {
				n = end - index
			}
			op = iter.NextN(n)
			*out = append(*out, op)
		}
		index += op.Len()
	}
	return out
}

// Length 所有 Op 的长度之和
func (d *Delta) Length() int {
	n := 0
	for _, op := range d.Ops() {
		n += op.Len()
	}
	return n
}

// ChangeLength 应用后文档长度的净变化
func (d *Delta) ChangeLength() int {
	n := 0
	for _, op := range d.Ops() {
		switch op.Kind {
		case KindInsert:
			n += op.Len()
		case KindDelete:
			n -= op.Count
		}
	}
	return n
}

// IsDocument 只含 insert 的 Delta 表示一份文档
func (d *Delta) IsDocument() bool {
	for _, op := range d.Ops() {
		if op.Kind != KindInsert {
			return false
		}
	}
	return true
}

// Equal 逐个比较 Op；属性 nil 与空 map 视为相同
func (d *Delta) Equal(other *Delta) bool {
	a, b := d.Ops(), other.Ops()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Kind != b[i].Kind || a[i].Count != b[i].Count || a[i].Text != b[i].Text {
			return false
		}
		if !reflect.DeepEqual(a[i].Embed, b[i].Embed) || !a[i].Attrs.Equal(b[i].Attrs) {
			return false
		}
	}
	return true
}

func (d *Delta) String() string {
	ops := d.Ops()
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, " "))
}

package delta

// OpIterator 在 Op 序列上的游标，可以在一个 Op 中间切开，
// 让 compose/transform 以不同粒度的两个 Delta 步调一致地前进。
//
// 迭代完之后视为一个无限长的 retain（恒等操作）：
// PeekType 返回 KindRetain，PeekLength 的第二个返回值为 false。
type OpIterator struct {
	ops    []Op
	index  int // 当前 Op 下标
	offset int // 当前 Op 已消费的长度
}

func NewOpIterator(ops []Op) *OpIterator {
	return &OpIterator{ops: ops}
}

// HasNext 是否还有未消费的长度
func (it *OpIterator) HasNext() bool {
	return it.index < len(it.ops)
}

// PeekLength 当前 Op 剩余长度；已耗尽时 ok=false，表示长度无界
func (it *OpIterator) PeekLength() (n int, ok bool) {
	if !it.HasNext() {
		return 0, false
	}
	return it.ops[it.index].Len() - it.offset, true
}

// PeekType 当前 Op 的类型；已耗尽时按 retain 处理
func (it *OpIterator) PeekType() Kind {
	if !it.HasNext() {
		return KindRetain
	}
	return it.ops[it.index].Kind
}

// Next 取出当前 Op 剩下的全部
func (it *OpIterator) Next() Op {
	n, ok := it.PeekLength()
	if !ok {
		return Op{Kind: KindRetain}
	}
	return it.NextN(n)
}

// NextN 最多消费 n 个单位，返回同类型、按长度切好的 Op，属性原样带出。
// 已耗尽时返回长度为 n 的无属性 retain。
func (it *OpIterator) NextN(n int) Op {
	if !it.HasNext() {
		return Op{Kind: KindRetain, Count: n}
	}
	op := it.ops[it.index]
	offset := it.offset
	remain := op.Len() - offset
	if n >= remain {
		n = remain
		it.index++
		it.offset = 0
	} else {
		it.offset += n
	}

	switch op.Kind {
	case KindDelete:
		return Op{Kind: KindDelete, Count: n}
	case KindRetain:
		return Op{Kind: KindRetain, Count: n, Attrs: op.Attrs}
	default:
		if op.Embed != nil {
			// embed 长度为 1，不可再切
			return Op{Kind: KindInsert, Embed: op.Embed, Attrs: op.Attrs}
		}
		return Op{Kind: KindInsert, Text: sliceRunes(op.Text, offset, offset+n), Attrs: op.Attrs}
	}
}

// Rest 剩余的全部 Op，当前 Op 若已被消费一部分则只返回剩下的部分。
// 不移动游标。
func (it *OpIterator) Rest() []Op {
	if !it.HasNext() {
		return nil
	}
	if it.offset == 0 {
		return it.ops[it.index:]
	}
	saved := *it
	head := it.Next()
	rest := append([]Op{head}, it.ops[it.index:]...)
	*it = saved
	return rest
}

// sliceRunes 按字符下标截取 [from, to)
func sliceRunes(s string, from, to int) string {
	if from == 0 {
		// 常见情况：从头截取，避免整串转 []rune
		i := 0
		for pos := range s {
			if i == to {
				return s[:pos]
			}
			i++
		}
		return s
	}
	r := []rune(s)
	return string(r[from:to])
}

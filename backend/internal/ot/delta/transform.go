package delta

type transformStep func(out *Delta, self, other *OpIterator, priority bool)

// transformTable[self][other]
var transformTable = [kindCount][kindCount]transformStep{
	KindInsert: {
		KindInsert: func(out *Delta, self, other *OpIterator, priority bool) {
			if priority {
				// self 的内容排在前面，先跳过它；other 的 insert 下一步再处理
				out.Retain(self.Next().Len(), nil)
				return
			}
			// other 抢到位置，self 的 insert 留到下一步变成 retain
			out.Push(other.Next())
		},
		KindRetain: transformSkipSelfInsert,
		KindDelete: transformSkipSelfInsert,
	},
	KindDelete: {
		KindInsert: transformOtherInsert,
		// 内容已被 self 删掉，other 的 retain/delete 都不再需要
		KindRetain: transformDropBoth,
		KindDelete: transformDropBoth,
	},
	KindRetain: {
		KindInsert: transformOtherInsert,
		KindRetain: func(out *Delta, self, other *OpIterator, priority bool) {
			n := stepLength(self, other)
			a, b := self.NextN(n), other.NextN(n)
			// 即使属性为空也要 retain，保证长度对齐
			out.Retain(n, TransformAttributes(a.Attrs, b.Attrs, priority))
		},
		KindDelete: func(out *Delta, self, other *OpIterator, priority bool) {
			n := stepLength(self, other)
			self.NextN(n)
			out.Push(other.NextN(n))
		},
	},
}

func transformSkipSelfInsert(out *Delta, self, other *OpIterator, priority bool) {
	out.Retain(self.Next().Len(), nil)
}

func transformOtherInsert(out *Delta, self, other *OpIterator, priority bool) {
	out.Push(other.Next())
}

func transformDropBoth(out *Delta, self, other *OpIterator, priority bool) {
	n := stepLength(self, other)
	self.NextN(n)
	other.NextN(n)
}

// Transform 把与 d 并发、基于同一份文档产生的 other 变换到 d 之后：
//
//	d.Compose(d.Transform(other, p)) == other.Compose(other.Transform(d, !p))
//
// priority=true 表示 d 先发生，同一位置冲突时以 d 为主。
func (d *Delta) Transform(other *Delta, priority bool) *Delta {
	self := NewOpIterator(d.Ops())
	that := NewOpIterator(other.Ops())
	out := New()

	for self.HasNext() || that.HasNext() {
		if !that.HasNext() {
			// self 剩下的部分只会产生末尾的 retain，直接丢弃
			break
		}
		if !self.HasNext() {
			for _, op := range that.Rest() {
				out.Push(op)
			}
			break
		}
		step := transformTable[self.PeekType()][that.PeekType()]
		assert(step != nil, "delta: no transform step for ", self.PeekType(), "/", that.PeekType())
		step(out, self, that, priority)
	}
	return out.Chop()
}

// TransformPosition 把光标位置 index 映射到 d 应用之后的位置。
// priority=true 时恰好插在 index 处的内容不会把光标往后推。
func (d *Delta) TransformPosition(index int, priority bool) int {
	iter := NewOpIterator(d.Ops())
	offset := 0
	for iter.HasNext() && offset <= index {
		length, _ := iter.PeekLength()
		kind := iter.PeekType()
		iter.Next()
		switch kind {
		case KindDelete:
			// 删除光标之前的内容，光标左移
			index -= min(length, index-offset)
			continue
		case KindInsert:
			if offset < index || !priority {
				index += length
			}
		}
		offset += length
	}
	return index
}

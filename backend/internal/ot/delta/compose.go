package delta

import "fmt"

func assert(b bool, v ...any) {
	if !b {
		panic(fmt.Sprint(v...))
	}
}

// stepLength 两个游标本步共同消费的长度：取较小者，已耗尽的一方视为无界。
// 两边同时耗尽说明驱动循环写错了。
func stepLength(a, b *OpIterator) int {
	an, aok := a.PeekLength()
	bn, bok := b.PeekLength()
	assert(aok || bok, "delta: lock-step reached with both iterators exhausted")
	switch {
	case !aok:
		return bn
	case !bok:
		return an
	case an < bn:
		return an
	default:
		return bn
	}
}

type composeStep func(out *Delta, self, other *OpIterator)

// composeTable[self][other]。
// self 的 delete 作用在 other 看到的文档之前，所以只消费 self 自己。
var composeTable = [kindCount][kindCount]composeStep{
	KindInsert: {
		// other 的 insert 先落位，self 的 insert 留到下一步
		KindInsert: composeOtherInsert,
		KindRetain: func(out *Delta, self, other *OpIterator) {
			n := stepLength(self, other)
			ins, ret := self.NextN(n), other.NextN(n)
			ins.Attrs = ComposeAttributes(ins.Attrs, ret.Attrs, false)
			out.Push(ins)
		},
		// 刚插入就被删掉，什么都不输出
		KindDelete: func(out *Delta, self, other *OpIterator) {
			n := stepLength(self, other)
			self.NextN(n)
			other.NextN(n)
		},
	},
	KindDelete: {
		KindInsert: composeOtherInsert,
		KindRetain: composeSelfDelete,
		KindDelete: composeSelfDelete,
	},
	KindRetain: {
		KindInsert: composeOtherInsert,
		// retain 允许显式清除属性，nil 要保留下来
		KindRetain: func(out *Delta, self, other *OpIterator) {
			n := stepLength(self, other)
			a, b := self.NextN(n), other.NextN(n)
			out.Retain(n, ComposeAttributes(a.Attrs, b.Attrs, true))
		},
		// 即将被删的内容上的属性修改没有意义
		KindDelete: func(out *Delta, self, other *OpIterator) {
			n := stepLength(self, other)
			self.NextN(n)
			out.Push(other.NextN(n))
		},
	},
}

func composeOtherInsert(out *Delta, self, other *OpIterator) {
	out.Push(other.Next())
}

func composeSelfDelete(out *Delta, self, other *OpIterator) {
	out.Push(self.Next())
}

// Compose 把 d 之后再应用 other 合并成一个等价的 change-set：
//
//	apply(apply(doc, d), other) == apply(doc, d.Compose(other))
func (d *Delta) Compose(other *Delta) *Delta {
	self := NewOpIterator(d.Ops())
	that := NewOpIterator(other.Ops())
	out := New()

	for self.HasNext() || that.HasNext() {
		if !that.HasNext() {
			// other 已经结束，剩下的 self 原样输出
			for _, op := range self.Rest() {
				out.Push(op)
			}
			break
		}
		if !self.HasNext() {
			for _, op := range that.Rest() {
				out.Push(op)
			}
			break
		}
		step := composeTable[self.PeekType()][that.PeekType()]
		assert(step != nil, "delta: no compose step for ", self.PeekType(), "/", that.PeekType())
		step(out, self, that)
	}
	return out.Chop()
}

package delta_test

import (
	"testing"

	"github.com/go-playground/assert/v2"

	"collabDelta/backend/internal/ot/delta"
)

func newIteratorFixture() *delta.Delta {
	return delta.New().
		Insert("Hello", delta.AttributeMap{"bold": true}).
		Retain(3, nil).
		InsertEmbed(2, delta.AttributeMap{"src": "http://quilljs.com/"}).
		Delete(4)
}

func TestOpIterator_HasNext(t *testing.T) {
	iter := delta.NewOpIterator(newIteratorFixture().Ops())
	assert.Equal(t, iter.HasNext(), true)

	empty := delta.NewOpIterator(nil)
	assert.Equal(t, empty.HasNext(), false)
}

func TestOpIterator_PeekLengthOffsetZero(t *testing.T) {
	iter := delta.NewOpIterator(newIteratorFixture().Ops())
	for _, want := range []int{5, 3, 1, 4} {
		n, ok := iter.PeekLength()
		assert.Equal(t, ok, true)
		assert.Equal(t, n, want)
		iter.Next()
	}
	_, ok := iter.PeekLength()
	assert.Equal(t, ok, false)
}

func TestOpIterator_PeekLengthOffsetPositive(t *testing.T) {
	iter := delta.NewOpIterator(newIteratorFixture().Ops())
	iter.NextN(2)
	n, _ := iter.PeekLength()
	assert.Equal(t, n, 3)
}

func TestOpIterator_PeekType(t *testing.T) {
	iter := delta.NewOpIterator(newIteratorFixture().Ops())
	for _, want := range []delta.Kind{delta.KindInsert, delta.KindRetain, delta.KindInsert, delta.KindDelete} {
		assert.Equal(t, iter.PeekType(), want)
		iter.Next()
	}
	// 耗尽之后视为无限 retain
	assert.Equal(t, iter.PeekType(), delta.KindRetain)
}

func TestOpIterator_Next(t *testing.T) {
	d := newIteratorFixture()
	iter := delta.NewOpIterator(d.Ops())
	for _, op := range d.Ops() {
		assert.Equal(t, iter.Next(), op)
	}
	assert.Equal(t, iter.Next(), delta.Op{Kind: delta.KindRetain})
	assert.Equal(t, iter.NextN(4), delta.Op{Kind: delta.KindRetain, Count: 4})
}

func TestOpIterator_NextLength(t *testing.T) {
	bold := delta.AttributeMap{"bold": true}
	iter := delta.NewOpIterator(newIteratorFixture().Ops())

	assert.Equal(t, iter.NextN(2), delta.Op{Kind: delta.KindInsert, Text: "He", Attrs: bold})
	assert.Equal(t, iter.NextN(10), delta.Op{Kind: delta.KindInsert, Text: "llo", Attrs: bold})
	assert.Equal(t, iter.NextN(1), delta.Op{Kind: delta.KindRetain, Count: 1})
	assert.Equal(t, iter.NextN(2), delta.Op{Kind: delta.KindRetain, Count: 2})
	assert.Equal(t, iter.NextN(5).IsEmbed(), true)
	assert.Equal(t, iter.NextN(3), delta.Op{Kind: delta.KindDelete, Count: 3})
	assert.Equal(t, iter.NextN(3), delta.Op{Kind: delta.KindDelete, Count: 1})
	assert.Equal(t, iter.HasNext(), false)
}

func TestOpIterator_NextMultibyte(t *testing.T) {
	iter := delta.NewOpIterator(delta.New().Insert("héllo, 世界", nil).Ops())
	assert.Equal(t, iter.NextN(2).Text, "hé")
	assert.Equal(t, iter.NextN(6).Text, "llo, 世")
	assert.Equal(t, iter.Next().Text, "界")
}

func TestOpIterator_Rest(t *testing.T) {
	d := newIteratorFixture()
	iter := delta.NewOpIterator(d.Ops())

	assert.Equal(t, iter.Rest(), d.Ops())

	iter.NextN(2)
	rest := iter.Rest()
	assert.Equal(t, rest[0], delta.Op{Kind: delta.KindInsert, Text: "llo", Attrs: delta.AttributeMap{"bold": true}})
	assert.Equal(t, rest[1:], d.Ops()[1:])
	// Rest 不移动游标
	n, _ := iter.PeekLength()
	assert.Equal(t, n, 3)

	iter.Next()
	iter.NextN(1)
	assert.Equal(t, iter.Rest()[0], delta.Op{Kind: delta.KindRetain, Count: 2})

	for iter.HasNext() {
		iter.Next()
	}
	assert.Equal(t, len(iter.Rest()), 0)
}

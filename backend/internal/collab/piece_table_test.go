package collab

import (
	"errors"
	"testing"

	"collabDelta/backend/internal/ot/delta"
)

func TestPieceTable_BasicString(t *testing.T) {
	pt := NewPieceTable("Hello world")
	if got := pt.String(); got != "Hello world" {
		t.Fatalf("String() = %q, want %q", got, "Hello world")
	}
	if gotLen := pt.Len(); gotLen != len([]rune("Hello world")) {
		t.Fatalf("Len() = %d, want %d", gotLen, len([]rune("Hello world")))
	}

	empty := NewPieceTable("")
	if empty.Len() != 0 || empty.String() != "" {
		t.Fatalf("NewPieceTable(\"\") = %q (len %d), want empty", empty.String(), empty.Len())
	}
}

func TestPieceTable_InsertMiddle(t *testing.T) {
	pt := NewPieceTable("Hello world")

	// 跳过 "Hello"，在 pos=5 插入
	d := delta.New().Retain(5, nil).Insert(" collaborative", nil)
	if err := pt.Apply(d); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := "Hello collaborative world"
	if got := pt.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestPieceTable_DeleteMiddle(t *testing.T) {
	pt := NewPieceTable("Hello collaborative world")

	// 保留 "Hello"，然后删 " collaborative"
	d := delta.New().Retain(5, nil).Delete(14)
	if err := pt.Apply(d); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := "Hello world"
	if got := pt.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestPieceTable_DeleteAcrossPieces(t *testing.T) {
	pt := NewPieceTable("Hello world")
	if err := pt.Apply(delta.New().Retain(5, nil).Insert(" big", nil)); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	// "Hello big world" -> 删掉 "llo big wo"
	if err := pt.Apply(delta.New().Retain(2, nil).Delete(10)); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := pt.String(); got != "Herld" {
		t.Fatalf("String() = %q, want %q", got, "Herld")
	}
	if pt.Len() != 5 {
		t.Fatalf("Len() = %d, want %d", pt.Len(), 5)
	}
}

func TestPieceTable_ReplaceAtStart(t *testing.T) {
	pt := NewPieceTable("abc")
	// insert 永远排在 delete 之前
	if err := pt.Apply(delta.New().Delete(1).Insert("X", nil)); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := pt.String(); got != "Xbc" {
		t.Fatalf("String() = %q, want %q", got, "Xbc")
	}
}

func TestPieceTable_AppendAndEmbed(t *testing.T) {
	pt := NewPieceTable("")
	d := delta.New().
		Insert("img:", delta.AttributeMap{"bold": true}).
		InsertEmbed(map[string]any{"image": "a.png"}, nil)
	if err := pt.Apply(d); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	want := "img:" + string(EmbedRune)
	if got := pt.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if pt.Len() != 5 {
		t.Fatalf("Len() = %d, want %d", pt.Len(), 5)
	}
}

func TestPieceTable_Multibyte(t *testing.T) {
	pt := NewPieceTable("你好世界")
	if err := pt.Apply(delta.New().Retain(2, delta.AttributeMap{"bold": true}).Insert("，", nil)); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := pt.String(); got != "你好，世界" {
		t.Fatalf("String() = %q, want %q", got, "你好，世界")
	}
}

func TestPieceTable_OutOfRange(t *testing.T) {
	cases := []*delta.Delta{
		delta.New().Retain(4, nil),
		delta.New().Retain(1, nil).Delete(3),
		delta.New().Delete(2).Insert("xy", nil).Retain(2, nil),
	}
	for _, d := range cases {
		pt := NewPieceTable("abc")
		err := pt.Apply(d)
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Apply(%s) error = %v, want %v", d, err, ErrOutOfRange)
		}
		if got := pt.String(); got != "abc" {
			t.Fatalf("Apply(%s) modified buffer to %q", d, got)
		}
	}

	pt := NewPieceTable("abc")
	if err := pt.Apply(delta.New().Retain(3, nil).Insert("d", nil)); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
}

func TestPieceTable_MatchesCompose(t *testing.T) {
	doc := delta.New().Insert("Hello ", nil).Insert("world", delta.AttributeMap{"bold": true})
	pt, err := NewPieceTableFromDelta(doc)
	if err != nil {
		t.Fatalf("NewPieceTableFromDelta() error = %v", err)
	}

	changes := []*delta.Delta{
		delta.New().Retain(6, nil).Delete(5).Insert("there", nil),
		delta.New().Insert("Oh, ", nil).Retain(2, nil).Delete(3),
		delta.New().Retain(5, delta.AttributeMap{"italic": true}).InsertEmbed(1, nil).Delete(1),
	}
	for _, c := range changes {
		if err := pt.Apply(c); err != nil {
			t.Fatalf("Apply(%s) error = %v", c, err)
		}
		doc = doc.Compose(c)
		if got, want := pt.String(), DocumentText(doc); got != want {
			t.Fatalf("after %s: String() = %q, want %q", c, got, want)
		}
	}
}

func TestNewPieceTableFromDelta_NotDocument(t *testing.T) {
	_, err := NewPieceTableFromDelta(delta.New().Retain(1, nil))
	if !errors.Is(err, delta.ErrInvalidOp) {
		t.Fatalf("NewPieceTableFromDelta() error = %v, want %v", err, delta.ErrInvalidOp)
	}
}

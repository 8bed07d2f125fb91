package delta

import (
	"fmt"
	"unicode/utf8"
)

// Kind 操作类型
type Kind int

const (
	KindInsert Kind = iota
	KindRetain
	KindDelete

	kindCount
)

// 新增 Kind 时编译失败，提醒同时更新 compose/transform 的分派表
var _ = [1]struct{}{}[kindCount-3]

func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindRetain:
		return "retain"
	case KindDelete:
		return "delete"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Op 一个原子编辑操作：insert / retain / delete 三选一。
//
//	insert: Text 或 Embed（二者取其一），可带 Attrs
//	retain: Count >= 1，可带 Attrs
//	delete: Count >= 1
//
// 放进 Delta 之后视为不可变。
type Op struct {
	Kind  Kind
	Count int          // retain/delete 的长度
	Text  string       // insert 的文本
	Embed any          // insert 的非文本内容（图片等），长度恒为 1
	Attrs AttributeMap // 样式属性
}

// IsEmbed 是否为 embed 插入
func (op Op) IsEmbed() bool {
	return op.Kind == KindInsert && op.Embed != nil
}

// isText 是否为文本插入；只有文本插入之间才能拼接
func (op Op) isText() bool {
	return op.Kind == KindInsert && op.Embed == nil
}

// Len 操作占用的长度：文本按字符（rune）计，embed 为 1
func (op Op) Len() int {
	switch op.Kind {
	case KindInsert:
		if op.Embed != nil {
			return 1
		}
		return utf8.RuneCountInString(op.Text)
	default:
		return op.Count
	}
}

// valid 长度为 0 的操作不允许进入 Delta
func (op Op) valid() bool {
	switch op.Kind {
	case KindInsert:
		return op.Embed != nil || op.Text != ""
	case KindRetain, KindDelete:
		return op.Count > 0
	}
	return false
}

func (op Op) String() string {
	var s string
	switch op.Kind {
	case KindInsert:
		if op.Embed != nil {
			s = fmt.Sprintf("insert(%v)", op.Embed)
		} else {
			s = fmt.Sprintf("insert(%q)", op.Text)
		}
	default:
		s = fmt.Sprintf("%s(%d)", op.Kind, op.Count)
	}
	if len(op.Attrs) > 0 && op.Kind != KindDelete {
		s += op.Attrs.String()
	}
	return s
}

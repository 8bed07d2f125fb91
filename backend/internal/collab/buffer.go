package collab

import (
	"errors"
	"strings"

	"collabDelta/backend/internal/ot/delta"
)

// EmbedRune embed 在纯文本缓冲区里的占位符，占一个位置
const EmbedRune = '\uFFFC'

var ErrOutOfRange = errors.New("OUT_OF_RANGE")

// 抽象文档内容缓冲区接口
type Buffer interface {
	Len() int
	Apply(d *delta.Delta) error
	String() string
}

// DocumentText 把文档形式的 Delta 渲染成纯文本，忽略属性
func DocumentText(doc *delta.Delta) string {
	var sb strings.Builder
	for _, op := range doc.Ops() {
		if op.Kind != delta.KindInsert {
			continue
		}
		if op.IsEmbed() {
			sb.WriteRune(EmbedRune)
			continue
		}
		sb.WriteString(op.Text)
	}
	return sb.String()
}

// opRunes insert 对应写入缓冲区的字符
func opRunes(op delta.Op) []rune {
	if op.IsEmbed() {
		return []rune{EmbedRune}
	}
	return []rune(op.Text)
}

// checkRange 预先走一遍 change-set，确认 retain/delete 没有越过文档末尾
func checkRange(docLen int, d *delta.Delta) error {
	pos, length := 0, docLen
	for _, op := range d.Ops() {
		switch op.Kind {
		case delta.KindRetain:
			pos += op.Count
			if pos > length {
				return ErrOutOfRange
			}
		case delta.KindInsert:
			pos += op.Len()
			length += op.Len()
		case delta.KindDelete:
			if pos+op.Count > length {
				return ErrOutOfRange
			}
			length -= op.Count
		}
	}
	return nil
}

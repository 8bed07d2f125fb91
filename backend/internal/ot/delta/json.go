package delta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidOp = errors.New("INVALID_OP")

// opRecord 序列化形态：
//
//	{"insert":"abc","attributes":{...}} / {"insert":1} / {"retain":5} / {"delete":4}
type opRecord struct {
	Insert     json.RawMessage `json:"insert,omitempty"`
	Retain     *int            `json:"retain,omitempty"`
	Delete     *int            `json:"delete,omitempty"`
	Attributes AttributeMap    `json:"attributes,omitempty"`
}

func (op Op) MarshalJSON() ([]byte, error) {
	var rec opRecord
	switch op.Kind {
	case KindInsert:
		var content any = op.Text
		if op.Embed != nil {
			content = op.Embed
		}
		b, err := json.Marshal(content)
		if err != nil {
			return nil, fmt.Errorf("marshal insert: %w", err)
		}
		rec.Insert = b
		rec.Attributes = op.Attrs
	case KindRetain:
		n := op.Count
		rec.Retain = &n
		rec.Attributes = op.Attrs
	case KindDelete:
		n := op.Count
		rec.Delete = &n
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidOp, int(op.Kind))
	}
	return json.Marshal(rec)
}

func (op *Op) UnmarshalJSON(data []byte) error {
	var rec opRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOp, err)
	}

	set := 0
	if rec.Insert != nil {
		set++
	}
	if rec.Retain != nil {
		set++
	}
	if rec.Delete != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: exactly one of insert/retain/delete is required: %s", ErrInvalidOp, data)
	}

	attrs := rec.Attributes.normalize()
	switch {
	case rec.Retain != nil:
		*op = Op{Kind: KindRetain, Count: *rec.Retain, Attrs: attrs}
	case rec.Delete != nil:
		*op = Op{Kind: KindDelete, Count: *rec.Delete}
	default:
		var content any
		if err := json.Unmarshal(rec.Insert, &content); err != nil {
			return fmt.Errorf("%w: insert: %v", ErrInvalidOp, err)
		}
		switch v := content.(type) {
		case nil:
			return fmt.Errorf("%w: insert is null", ErrInvalidOp)
		case string:
			*op = Op{Kind: KindInsert, Text: v, Attrs: attrs}
		default:
			*op = Op{Kind: KindInsert, Embed: v, Attrs: attrs}
		}
	}
	return nil
}

func (d Delta) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Op(d))
}

// UnmarshalJSON 接受 [...] 和 {"ops":[...]} 两种形式。
// 长度为 0 的操作被丢弃，其余保持原样。
func (d *Delta) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var ops []Op
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Ops []Op `json:"ops"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		ops = wrapped.Ops
	} else if err := json.Unmarshal(data, &ops); err != nil {
		return err
	}
	*d = *FromOps(ops)
	return nil
}

// Parse 从 JSON 解析一个 Delta
func Parse(data []byte) (*Delta, error) {
	d := New()
	if err := json.Unmarshal(data, d); err != nil {
		return nil, err
	}
	return d, nil
}

package delta

import (
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// AttributeMap 样式属性（粗体/颜色等）。
// 值为 nil 表示“显式移除该属性”（tombstone），只在 compose 中有意义。
// 空 map 永远不会被存进 Op，统一归一化为 nil（无属性）。
type AttributeMap map[string]any

// normalize 把空 map 归一化为 nil
func (a AttributeMap) normalize() AttributeMap {
	if len(a) == 0 {
		return nil
	}
	return a
}

// Clone 浅拷贝；属性值都是标量，浅拷贝足够
func (a AttributeMap) Clone() AttributeMap {
	if len(a) == 0 {
		return nil
	}
	return maps.Clone(a)
}

// Equal 深比较，nil 与空 map 视为相等
func (a AttributeMap) Equal(b AttributeMap) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return maps.EqualFunc(a, b, reflect.DeepEqual)
}

// String 按 key 排序输出，保证日志/演示输出稳定
func (a AttributeMap) String() string {
	if len(a) == 0 {
		return "{}"
	}
	keys := maps.Keys(a)
	slices.Sort(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		v := a[k]
		if v == nil {
			fmt.Fprintf(&sb, "%s:null", k)
			continue
		}
		if s, ok := v.(string); ok {
			fmt.Fprintf(&sb, "%s:%q", k, s)
			continue
		}
		fmt.Fprintf(&sb, "%s:%v", k, v)
	}
	sb.WriteByte('}')
	return sb.String()
}

// ComposeAttributes 合并先后两次属性修改：change 覆盖 base。
// keepNull=false 时结果中的 nil（移除标记）被消费掉；
// keepNull=true 时保留 nil，供之后的 retain 继续表达“已清除”。
func ComposeAttributes(base, change AttributeMap, keepNull bool) AttributeMap {
	out := make(AttributeMap, len(base)+len(change))
	maps.Copy(out, base)
	maps.Copy(out, change)
	if !keepNull {
		maps.DeleteFunc(out, func(_ string, v any) bool { return v == nil })
	}
	return out.normalize()
}

// TransformAttributes 只用于 retain + retain 的 transform。
//
// mine 已经先被应用。priority=true 时 mine 里已经设置过的 key 以 mine 为准，
// theirs 只保留 mine 没有的 key；priority=false 时 theirs 原样通过。
//
//	mine   = {color: blue}
//	theirs = {bold: true, color: red}
//	priority=true  -> {bold: true}
//	priority=false -> {bold: true, color: red}
func TransformAttributes(mine, theirs AttributeMap, priority bool) AttributeMap {
	if len(theirs) == 0 {
		return nil
	}
	if len(mine) == 0 || !priority {
		return theirs.Clone()
	}
	out := make(AttributeMap, len(theirs))
	for k, v := range theirs {
		// key 存在即算已设置，包括 nil
		if _, set := mine[k]; !set {
			out[k] = v
		}
	}
	return out.normalize()
}

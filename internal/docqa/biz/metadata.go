package biz

import (
	"math"
)

// SanitizeMetadata 只保留基本类型（字符串、布尔、有限数值）与字符串数组，其余值整体丢弃。
// 返回新 map，不修改入参。
func SanitizeMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if clean, ok := sanitizeValue(v); ok {
			out[k] = clean
		}
	}
	return out
}

func sanitizeValue(v any) (any, bool) {
	switch val := v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return val, true
	case float32:
		return val, isFinite(float64(val))
	case float64:
		return val, isFinite(val)
	case []string:
		cp := make([]string, len(val))
		copy(cp, val)
		return cp, true
	case []any:
		strs := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			strs = append(strs, s)
		}
		return strs, true
	default:
		return nil, false
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

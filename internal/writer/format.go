// internal/writer/format.go
package writer

import (
	"fmt"
	"strconv"
)

func FormatPercent(v any) string {
	f, ok := toFloat(v)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.1f%%", f)
}

func FormatVolume(v any) string {
	f, ok := toFloat(v)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.3fm3", f)
}

// FormatNumber prints the value as is; the unit is published separately.
func FormatNumber(v any) string {
	f, ok := toFloat(v)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatInt truncates toward zero.
func FormatInt(v any) string {
	f, ok := toFloat(v)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d", int64(f))
}

func FormatText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}

package utils

import (
	"fmt"
	"strconv"
)

// ToString converts loosely typed values, such as decoded JSON metadata, to string.
// Floats are written without exponent so numeric identifiers like ISBNs survive.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

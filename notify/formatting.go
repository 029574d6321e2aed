package notify

import (
	"fmt"
	"strings"
)

// Embed colors
const (
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorInfo    = 0x3498DB // Blue
)

// FormatBalance formats a balance with commas for thousands
func FormatBalance(balance int64) string {
	str := fmt.Sprintf("%d", balance)
	negative := strings.HasPrefix(str, "-")
	if negative {
		str = str[1:]
	}

	n := len(str)
	if n <= 3 {
		if negative {
			return "-" + str
		}
		return str
	}

	var result strings.Builder
	if negative {
		result.WriteRune('-')
	}
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

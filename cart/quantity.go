package cart

import (
	"errors"
	"strconv"
	"strings"
)

// ParseQuantity turns free-form quantity input into an integer. Leading and
// trailing space is ignored and a leading integer prefix is accepted ("3 bags"
// is 3). Anything without digits yields 0, which UpdateQuantity treats as a
// removal. Values beyond the int range saturate at math.MaxInt or math.MinInt.
func ParseQuantity(raw string) int {
	s := strings.TrimSpace(raw)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}

	// Atoi 溢位時回傳 ±MaxInt
	n, err := strconv.Atoi(s[:end])
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return n
}

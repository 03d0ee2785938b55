package utility

import (
	"fmt"
	"math/rand"
	"strings"
)

// RandomColorHex returns a #rrggbb color avoiding the darkest and
// lightest component values.
func RandomColorHex() string {
	r := rand.Intn(248) + 4
	g := rand.Intn(248) + 4
	b := rand.Intn(248) + 4
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Plural appends an "s" to word unless n is exactly 1.
func Plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// EqualFoldTrim compares two names ignoring case and surrounding space.
func EqualFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

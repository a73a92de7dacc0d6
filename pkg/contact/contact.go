// Package contact works with on-file contact methods without leaking them.
package contact

import (
	"strings"
)

// Mask obscures a contact method for use as a delivery hint.
// Emails keep the first rune of the local part and the domain
// ("m*****@example.com"); anything else keeps the last two runes.
// The full contact never appears in a hint.
func Mask(method string) string {
	if at := strings.IndexByte(method, '@'); at > 0 {
		local := []rune(method[:at])
		return string(local[0]) + strings.Repeat("*", len(local)-1) + method[at:]
	}

	runes := []rune(method)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-2:])
}

package document

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ToWinAnsi re-encodes s as Windows-1252 bytes, the encoding the core PDF
// fonts read. Runes the code page cannot show, including the C1 controls
// U+0080 to U+009F, become '?'.
func ToWinAnsi(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x80 && r <= 0x9f {
			b.WriteByte('?')
			continue
		}
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}

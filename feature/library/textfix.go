package library

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// maxMojibakeRounds bounds how many layers of double encoding are undone.
const maxMojibakeRounds = 2

// FixText repairs encoding artifacts produced by metadata extraction tools.
// Invalid UTF-8 is read as Windows-1252, UTF-8 that was mis-decoded as
// Windows-1252 is re-decoded, and the result is NFC normalized and trimmed.
func FixText(s string) string {
	if !utf8.ValidString(s) {
		if decoded, err := charmap.Windows1252.NewDecoder().String(s); err == nil {
			s = decoded
		} else {
			s = strings.ToValidUTF8(s, "")
		}
	}

	for i := 0; i < maxMojibakeRounds; i++ {
		fixed, ok := undoMojibake(s)
		if !ok {
			break
		}
		s = fixed
	}

	return strings.TrimSpace(norm.NFC.String(s))
}

// undoMojibake reverses one round of UTF-8 bytes decoded as Windows-1252.
// It only succeeds when the recovered bytes are valid UTF-8 with at least one
// multibyte sequence, so plain ASCII and genuine Latin-1 text pass untouched.
func undoMojibake(s string) (string, bool) {
	if isASCII(s) {
		return "", false
	}
	raw, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil || !utf8.ValidString(raw) || isASCII(raw) {
		return "", false
	}
	return raw, true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

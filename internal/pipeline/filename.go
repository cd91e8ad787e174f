package pipeline

import (
	"fmt"
	"strings"
)

// maxTitleRunes bounds output filenames well under common filesystem limits.
const maxTitleRunes = 200

// illegalFilenameChars are replaced in titles before they become filenames.
const illegalFilenameChars = `/\:*?"<>|`

// sanitizeTitle converts a site-supplied title into a safe filename stem.
// Illegal filename characters and control runes become underscores, the
// result is trimmed of surrounding dots and spaces and capped in length,
// and a title with nothing usable left falls back to the job id.
func sanitizeTitle(title, fallback string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r < 0x20 || r == 0x7f:
			b.WriteRune('_')
		case strings.ContainsRune(illegalFilenameChars, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	s := strings.Trim(b.String(), ". ")
	if runes := []rune(s); len(runes) > maxTitleRunes {
		s = strings.Trim(string(runes[:maxTitleRunes]), ". ")
	}
	if s == "" {
		return fallback
	}
	return s
}

// contentDisposition builds the attachment header for filename. Both forms
// are emitted: a plain ASCII filename for clients that understand nothing
// else, and the percent-encoded UTF-8 filename* form that preserves the
// original title.
func contentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		asciiFallback(filename), rfc5987Encode(filename))
}

// asciiFallback maps filename to printable ASCII, replacing everything
// else with underscores. Quotes and backslashes are replaced too so the
// result can sit inside a quoted-string unescaped.
func asciiFallback(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r < 0x20 || r > 0x7e:
			b.WriteRune('_')
		case r == '"' || r == '\\':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// rfc5987Encode percent-encodes filename for the filename* parameter.
func rfc5987Encode(filename string) string {
	var b strings.Builder
	for _, c := range []byte(filename) {
		if isAttrChar(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// isAttrChar reports whether c may appear bare in an RFC 5987 value.
func isAttrChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '&', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

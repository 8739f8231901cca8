package uploads

import (
	"path"
	"strings"
)

const maxFilenameLength = 128

// SecureFilename reduces an uploaded filename to a safe ASCII base name.
// It returns "" when nothing usable remains.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if len(out) > maxFilenameLength {
		out = strings.TrimLeft(out[len(out)-maxFilenameLength:], "._")
	}
	return out
}

// Ext returns the lowercased extension of name without the dot.
func Ext(name string) string {
	ext := path.Ext(name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

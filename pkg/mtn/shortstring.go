package mtn

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// PRMTag marks the start of a joint code inside a joint-table string.
const PRMTag = "PRM:"

// ShortString is a length-prefixed byte string exactly as stored on disk.
// Some producers embed non-text bytes, so format decisions use the raw bytes
// and Text is for diagnostics only.
type ShortString []byte

// Key returns the raw bytes as a Go string, suitable as a map key.
func (s ShortString) Key() string {
	return string(s)
}

// Text decodes the bytes as UTF-8, replacing invalid sequences with U+FFFD.
func (s ShortString) Text() string {
	if len(s) == 0 {
		return ""
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(s)
	if err != nil {
		return strings.ToValidUTF8(string(s), "�")
	}
	return string(out)
}

// PRMCode returns the suffix starting at the PRM tag, dropping any prefix
// bytes a producer placed in front of it. Strings without the tag are
// returned unchanged.
func (s ShortString) PRMCode() ShortString {
	i := bytes.Index(s, []byte(PRMTag))
	if i <= 0 {
		return s
	}
	return s[i:]
}

func (s ShortString) String() string {
	return s.Text()
}

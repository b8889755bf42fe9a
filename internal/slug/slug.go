// Package slug derives short, deterministic, URL-safe identifiers for
// content that has no natural key.
//
// A slug is 128 bits rendered as 22 characters of unpadded URL-safe base64.
// The high 64 bits are the xxhash64 of the first field; the low 64 bits are
// the xxhash64 of the remaining fields joined with the ASCII unit separator
// (0x1F). Every field is NFC-normalised first, so visually identical titles
// typed with different Unicode compositions produce the same slug.
//
// Changing the field order or the combination scheme changes every
// published URL.
package slug

import (
	"encoding/base64"
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/toudaivocadou/vocadou/internal/content"
)

// separator joins the low-half fields; it cannot appear in front matter text.
const separator = "\x1f"

// Length is the length of every slug.
const Length = 22

// Slug hashes fields into a 22-character identifier.
func Slug(fields ...string) string {
	var first string
	var rest []string
	if len(fields) > 0 {
		first = norm.NFC.String(fields[0])
		rest = make([]string, len(fields)-1)
		for i, f := range fields[1:] {
			rest[i] = norm.NFC.String(f)
		}
	}

	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], xxhash.Sum64String(first))
	binary.BigEndian.PutUint64(buf[8:], xxhash.Sum64String(strings.Join(rest, separator)))

	return base64.RawURLEncoding.EncodeToString(buf[:])
}

// Work is the slug of a release: title, then author handle.
func Work(title string, author content.Handle) string {
	return Slug(title, string(author))
}

// Album is the slug of an album: title, then front cover reference.
func Album(title, frontCover string) string {
	return Slug(title, frontCover)
}

// Post is the slug of a news post: title, author handle, then ISO date.
func Post(title string, author content.Handle, date content.Date) string {
	return Slug(title, string(author), date.String())
}

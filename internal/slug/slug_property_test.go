//go:build property

package slug

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/text/unicode/norm"
)

// TestSlugProperties checks determinism and sensitivity of slugs.
func TestSlugProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("slug is deterministic", prop.ForAll(
		func(title, author string) bool {
			return Slug(title, author) == Slug(title, author)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("slug has fixed length", prop.ForAll(
		func(fields []string) bool {
			return len(Slug(fields...)) == Length
		},
		gen.SliceOf(gen.AnyString()),
	))

	properties.Property("different fields give different slugs", prop.ForAll(
		func(title, a, b string) bool {
			if norm.NFC.String(a) == norm.NFC.String(b) {
				return true
			}
			return Slug(title, a) != Slug(title, b) && Slug(a, title) != Slug(b, title)
		},
		gen.AnyString(),
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

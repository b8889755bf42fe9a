//go:build property

package names

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/toudaivocadou/vocadou/internal/content"
)

// TestTableProperties checks lookups against arbitrary member sets.
func TestTableProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	// Every unique handle looks up its own display name.
	properties.Property("lookup returns the member's name", prop.ForAll(
		func(handles []string, names []string) bool {
			seen := map[string]bool{}
			var members []*content.Member
			for i, h := range handles {
				if seen[h] {
					continue
				}
				seen[h] = true
				name := h
				if i < len(names) {
					name = names[i]
				}
				members = append(members, &content.Member{Handle: content.Handle(h), Name: name})
			}

			table, err := Build(members)
			if err != nil {
				return false
			}
			if table.Len() != len(members) {
				return false
			}
			for _, m := range members {
				got, ok := table.Lookup(m.Handle)
				if !ok || got != m.Name {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Identifier()),
		gen.SliceOf(gen.AnyString()),
	))

	// Any repeated handle is rejected.
	properties.Property("duplicates are rejected", prop.ForAll(
		func(handles []string, pick int) bool {
			members := make([]*content.Member, 0, len(handles)+1)
			for _, h := range handles {
				members = append(members, &content.Member{Handle: content.Handle(h), Name: h})
			}
			dup := handles[pick%len(handles)]
			members = append(members, &content.Member{Handle: content.Handle(dup), Name: "again"})

			_, err := Build(members)
			return err != nil
		},
		gen.SliceOf(gen.Identifier()).SuchThat(func(hs []string) bool { return len(hs) > 0 }),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

//go:build property

package watcher

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDebouncerProperties checks that a burst collapses into one sorted
// batch holding every distinct path once.
func TestDebouncerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("burst yields one deduplicated batch", prop.ForAll(
		func(ids []int) bool {
			if len(ids) == 0 {
				return true
			}

			d := NewDebouncer(5 * time.Millisecond)
			want := map[string]bool{}
			for _, id := range ids {
				p := fmt.Sprintf("works/%d.md", id%7)
				want[p] = true
				d.addEvent(ChangeEvent{Type: EventTypeModified, Path: p})
			}

			var batch []ChangeEvent
			select {
			case batch = <-d.output:
			case <-time.After(time.Second):
				return false
			}

			if len(batch) != len(want) {
				return false
			}
			paths := make([]string, len(batch))
			for i, e := range batch {
				if !want[e.Path] {
					return false
				}
				paths[i] = e.Path
			}
			return sort.StringsAreSorted(paths)
		},
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}

// Package names builds the handle to display-name table every later build
// stage resolves member references against.
package names

import (
	"sort"
	"strings"

	"github.com/toudaivocadou/vocadou/internal/content"
	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
)

type entry struct {
	name string
	file string
}

// Table maps member handles to display names. It is read-only once built
// and safe for concurrent use.
type Table struct {
	entries map[content.Handle]entry
	handles []content.Handle
}

// Build inserts every member's handle. Two members sharing a handle is an
// error naming both files.
func Build(members []*content.Member) (*Table, error) {
	t := &Table{
		entries: make(map[content.Handle]entry, len(members)),
		handles: make([]content.Handle, 0, len(members)),
	}

	for _, m := range members {
		if prev, ok := t.entries[m.Handle]; ok {
			return nil, siteerrors.NewDuplicateError(string(m.Handle), prev.file, m.Path)
		}
		t.entries[m.Handle] = entry{name: m.Name, file: m.Path}
		t.handles = append(t.handles, m.Handle)
	}

	sort.Slice(t.handles, func(i, j int) bool { return t.handles[i] < t.handles[j] })

	return t, nil
}

// Lookup returns the display name for h.
func (t *Table) Lookup(h content.Handle) (string, bool) {
	e, ok := t.entries[h]
	return e.name, ok
}

// Has reports whether h is a known member.
func (t *Table) Has(h content.Handle) bool {
	_, ok := t.entries[h]
	return ok
}

// MustName returns the display name for a handle that has already been
// validated. It panics on unknown handles.
func (t *Table) MustName(h content.Handle) string {
	e, ok := t.entries[h]
	if !ok {
		panic("names: unvalidated handle " + string(h))
	}
	return e.name
}

// Name returns the display name for h, or the raw handle when unknown.
func (t *Table) Name(h content.Handle) string {
	if e, ok := t.entries[h]; ok {
		return e.name
	}
	return string(h)
}

// Source returns the member file that defined h.
func (t *Table) Source(h content.Handle) string {
	return t.entries[h].file
}

// Handles returns every handle in sorted order.
func (t *Table) Handles() []content.Handle {
	out := make([]content.Handle, len(t.handles))
	copy(out, t.handles)
	return out
}

// Len returns the number of members.
func (t *Table) Len() int {
	return len(t.entries)
}

// Suggest returns known handles that look like h: case-insensitive matches
// first, then handles sharing a substring or within a small edit distance.
func (t *Table) Suggest(h content.Handle) []string {
	needle := strings.ToLower(string(h))
	if needle == "" {
		return nil
	}

	var exact, near []string
	for _, known := range t.handles {
		lk := strings.ToLower(string(known))
		switch {
		case lk == needle:
			exact = append(exact, string(known))
		case strings.Contains(lk, needle) || strings.Contains(needle, lk):
			near = append(near, string(known))
		case levenshtein(lk, needle) <= 2:
			near = append(near, string(known))
		default:
			// Display names are a common mistake for handles.
			if strings.EqualFold(t.entries[known].name, string(h)) {
				near = append(near, string(known))
			}
		}
	}

	return append(exact, near...)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}

	return prev[len(rb)]
}

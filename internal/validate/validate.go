// Package validate checks that every member reference in the loaded content
// resolves against the name table.
//
// Validation is fail-fast. Works are checked first, then albums, then posts;
// within a record the primary author comes first, then collaborators or
// contributors in declaration order, then album cover illustrators, then
// tracklist entries. The order only decides which error surfaces first.
package validate

import (
	"maps"
	"slices"

	"github.com/toudaivocadou/vocadou/internal/content"
	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
	"github.com/toudaivocadou/vocadou/internal/names"
)

// Validate returns the first unresolved reference, or nil.
func Validate(table *names.Table, set *content.Set) error {
	v := &validator{table: table, works: indexWorks(set.Works)}

	for _, w := range set.Works {
		if err := v.work(w); err != nil {
			return err
		}
	}
	for _, a := range set.Albums {
		if err := v.album(a); err != nil {
			return err
		}
	}
	for _, p := range set.Posts {
		if err := v.post(p); err != nil {
			return err
		}
	}

	return nil
}

type workKey struct {
	title  string
	author content.Handle
}

func indexWorks(works []*content.Work) map[workKey]struct{} {
	idx := make(map[workKey]struct{}, len(works))
	for _, w := range works {
		idx[workKey{title: w.Title, author: w.Author}] = struct{}{}
	}
	return idx
}

type validator struct {
	table *names.Table
	works map[workKey]struct{}
}

// check resolves h. freeText names the field that would accept a non-member.
func (v *validator) check(file, field string, h content.Handle, freeText string) error {
	if v.table.Has(h) {
		return nil
	}
	return siteerrors.NewUnresolvedError(siteerrors.ErrCodeUnknownHandle, file, field, string(h)).
		WithHint(siteerrors.UnresolvedHandleHint(string(h), v.table.Suggest(h), freeText))
}

func (v *validator) work(w *content.Work) error {
	if err := v.check(w.Path, "author", w.Author, ""); err != nil {
		return err
	}
	for _, c := range w.Collaborators {
		if err := v.check(w.Path, "collaborators", c, "extra_collaborators"); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) post(p *content.Post) error {
	if err := v.check(p.Path, "author", p.Author, ""); err != nil {
		return err
	}
	for _, c := range p.Collaborators {
		if err := v.check(p.Path, "collaborators", c, ""); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) album(a *content.Album) error {
	for _, c := range a.Contributors {
		if err := v.check(a.Path, "contributors", c, "extra_contributors"); err != nil {
			return err
		}
	}

	if !a.FrontCoverIllustratorNotOnSite {
		h := content.Handle(a.FrontCoverIllustrator)
		if err := v.check(a.Path, "front_cover_illustrator", h, "front_cover_illustrator_not_on_site"); err != nil {
			return err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(a.OtherCovers)) {
		cover := a.OtherCovers[name]
		if cover.IllustratorIsNotOnSite {
			continue
		}
		field := "other_covers." + name + ".illustrator"
		if err := v.check(a.Path, field, content.Handle(cover.Illustrator), "illustrator_is_not_on_site"); err != nil {
			return err
		}
	}

	// Only on-site tracks refer to members and works; the rest are free text.
	for _, t := range a.Tracklist {
		if !t.OnSite {
			continue
		}
		author := content.Handle(t.Author)
		if !t.ExternalAuthor {
			if err := v.check(a.Path, "tracklist.author", author, "external_author"); err != nil {
				return err
			}
		}
		if _, ok := v.works[workKey{title: t.Title, author: author}]; !ok {
			return siteerrors.NewUnresolvedError(siteerrors.ErrCodeUnknownWork, a.Path, "tracklist.title", t.Title).
				WithHint(siteerrors.UnknownWorkHint(t.Title, t.Author))
		}
	}

	return nil
}

// Package siteindex assembles validated content into the sorted, filtered
// collections every page renderer reads from.
//
// The index owns deep copies of its records. Renderers may hold on to them
// for the whole render phase without being able to change what was
// validated.
package siteindex

import (
	"cmp"
	"slices"

	"github.com/toudaivocadou/vocadou/internal/content"
)

// Index is the aggregate view of one build's content.
type Index struct {
	// Members are ordered by role tier, then display name, then handle.
	Members []*content.Member
	// Posts and Works are newest first; equal dates keep load order.
	Posts []*content.Post
	Works []*content.Work
	// Albums are ordered by release date, newest first.
	Albums []*content.Album

	byHandle map[content.Handle]*content.Member
}

// Assemble clones and sorts the inputs. It cannot fail.
func Assemble(
	members []*content.Member,
	posts []*content.Post,
	works []*content.Work,
	albums []*content.Album,
) *Index {
	idx := &Index{
		Members:  cloneAll(members, (*content.Member).Clone),
		Posts:    cloneAll(posts, (*content.Post).Clone),
		Works:    cloneAll(works, (*content.Work).Clone),
		Albums:   cloneAll(albums, (*content.Album).Clone),
		byHandle: make(map[content.Handle]*content.Member, len(members)),
	}

	SortMembers(idx.Members)
	SortPosts(idx.Posts)
	SortWorks(idx.Works)
	SortAlbums(idx.Albums)

	for _, m := range idx.Members {
		idx.byHandle[m.Handle] = m
	}

	return idx
}

// FromSet is Assemble over a loaded set.
func FromSet(set *content.Set) *Index {
	return Assemble(set.Members, set.Posts, set.Works, set.Albums)
}

func cloneAll[T any](in []*T, clone func(*T) *T) []*T {
	out := make([]*T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}

// CompareMembers is the member ordering: role tier, display name, handle.
func CompareMembers(a, b *content.Member) int {
	if c := cmp.Compare(a.Role, b.Role); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Handle, b.Handle)
}

// SortMembers sorts members in place.
func SortMembers(members []*content.Member) {
	slices.SortFunc(members, CompareMembers)
}

// SortPosts sorts posts newest first, keeping load order for equal dates.
func SortPosts(posts []*content.Post) {
	slices.SortStableFunc(posts, func(a, b *content.Post) int {
		return content.CompareDates(b.Date, a.Date)
	})
}

// SortWorks sorts works newest first, keeping load order for equal dates.
func SortWorks(works []*content.Work) {
	slices.SortStableFunc(works, func(a, b *content.Work) int {
		return content.CompareDates(b.Date, a.Date)
	})
}

// SortAlbums sorts albums by release date, newest first.
func SortAlbums(albums []*content.Album) {
	slices.SortStableFunc(albums, func(a, b *content.Album) int {
		return content.CompareDates(b.ReleaseDate, a.ReleaseDate)
	})
}

// Member returns the indexed member with handle h.
func (idx *Index) Member(h content.Handle) (*content.Member, bool) {
	m, ok := idx.byHandle[h]
	return m, ok
}

// OfficialPosts are the club's announcements.
func (idx *Index) OfficialPosts() []*content.Post {
	return filter(idx.Posts, func(p *content.Post) bool { return p.Official })
}

// MemberPosts are the posts that are not official announcements.
func (idx *Index) MemberPosts() []*content.Post {
	return filter(idx.Posts, func(p *content.Post) bool { return !p.Official })
}

// FeaturedWorks are the works flagged as featured.
func (idx *Index) FeaturedWorks() []*content.Work {
	return filter(idx.Works, func(w *content.Work) bool { return w.Featured })
}

// WorksBy returns works h authored or collaborated on.
func (idx *Index) WorksBy(h content.Handle) []*content.Work {
	return filter(idx.Works, func(w *content.Work) bool {
		return w.Author == h || slices.Contains(w.Collaborators, h)
	})
}

// FeaturedWorksBy returns the featured works h authored.
func (idx *Index) FeaturedWorksBy(h content.Handle) []*content.Work {
	return filter(idx.Works, func(w *content.Work) bool {
		return w.Featured && w.Author == h
	})
}

// PostsBy returns posts h authored or collaborated on.
func (idx *Index) PostsBy(h content.Handle) []*content.Post {
	return filter(idx.Posts, func(p *content.Post) bool {
		return p.Author == h || slices.Contains(p.Collaborators, h)
	})
}

// AlbumsWith returns albums h contributed to.
func (idx *Index) AlbumsWith(h content.Handle) []*content.Album {
	return filter(idx.Albums, func(a *content.Album) bool {
		return slices.Contains(a.Contributors, h)
	})
}

func filter[T any](in []*T, keep func(*T) bool) []*T {
	out := make([]*T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

package siteindex

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toudaivocadou/vocadou/internal/content"
)

func d(y, m, day int) content.Date {
	return content.Date{Year: y, Month: m, Day: day}
}

func mem(handle, name, position string) *content.Member {
	return &content.Member{
		Handle:   content.Handle(handle),
		Name:     name,
		Position: position,
		Role:     content.ParseRole(position),
	}
}

func handlesOf(members []*content.Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = string(m.Handle)
	}
	return out
}

func TestMemberSortTiers(t *testing.T) {
	idx := Assemble([]*content.Member{
		mem("b", "B", "PR officer"),
		mem("a", "A", "president"),
		mem("c", "C", ""),
	}, nil, nil, nil)

	assert.Equal(t, []string{"a", "b", "c"}, handlesOf(idx.Members))
}

func TestMemberSortFullOrder(t *testing.T) {
	idx := Assemble([]*content.Member{
		mem("zz", "Zed", ""),
		mem("aa", "Ann", ""),
		mem("tr", "Tom", "treasurer"),
		mem("ar", "Art", "accountant"),
		mem("vp", "Vic", "副代表"),
		mem("pr", "Pat", "広報"),
		mem("p", "Pres", "代表"),
		mem("ann2", "Ann", ""),
	}, nil, nil, nil)

	want := []string{"p", "vp", "pr", "ar", "tr", "aa", "ann2", "zz"}
	if diff := cmp.Diff(want, handlesOf(idx.Members)); diff != "" {
		t.Errorf("member order mismatch (-want +got):\n%s", diff)
	}
}

func TestPostSortDescending(t *testing.T) {
	posts := []*content.Post{
		{Title: "old", Date: d(2024, 1, 1)},
		{Title: "new", Date: d(2025, 6, 1)},
		{Title: "mid", Date: d(2024, 12, 31)},
	}
	idx := Assemble(nil, posts, nil, nil)

	var titles []string
	for _, p := range idx.Posts {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"new", "mid", "old"}, titles)
}

func TestWorkSortIsStable(t *testing.T) {
	works := []*content.Work{
		{Title: "first", Date: d(2024, 1, 1)},
		{Title: "second", Date: d(2024, 1, 1)},
		{Title: "newest", Date: d(2024, 2, 1)},
		{Title: "third", Date: d(2024, 1, 1)},
	}
	idx := Assemble(nil, nil, works, nil)

	var titles []string
	for _, w := range idx.Works {
		titles = append(titles, w.Title)
	}
	assert.Equal(t, []string{"newest", "first", "second", "third"}, titles)
}

func TestAlbumSort(t *testing.T) {
	idx := Assemble(nil, nil, nil, []*content.Album{
		{Title: "a", ReleaseDate: d(2023, 5, 1)},
		{Title: "b", ReleaseDate: d(2024, 11, 3)},
	})
	assert.Equal(t, "b", idx.Albums[0].Title)
}

func TestAssembleClones(t *testing.T) {
	works := []*content.Work{{Title: "Song", Author: "alice", Collaborators: []content.Handle{"bob"}}}
	idx := Assemble(nil, nil, works, nil)

	idx.Works[0].Title = "changed"
	idx.Works[0].Collaborators[0] = "mallory"

	assert.Equal(t, "Song", works[0].Title)
	assert.Equal(t, content.Handle("bob"), works[0].Collaborators[0])
	assert.NotSame(t, works[0], idx.Works[0])
}

func TestDerivedViews(t *testing.T) {
	members := []*content.Member{mem("alice", "Alice", ""), mem("bob", "Bob", "")}
	posts := []*content.Post{
		{Title: "announce", Author: "alice", Official: true, Date: d(2024, 1, 1)},
		{Title: "diary", Author: "bob", Collaborators: []content.Handle{"alice"}, Date: d(2024, 1, 2)},
	}
	works := []*content.Work{
		{Title: "hit", Author: "alice", Featured: true, Date: d(2024, 1, 1)},
		{Title: "b-side", Author: "alice", Date: d(2024, 1, 2)},
		{Title: "collab", Author: "bob", Featured: true, Collaborators: []content.Handle{"alice"}, Date: d(2024, 1, 3)},
	}
	albums := []*content.Album{
		{Title: "comp", Contributors: []content.Handle{"alice", "bob"}, ReleaseDate: d(2024, 5, 5)},
		{Title: "solo", Contributors: []content.Handle{"bob"}, ReleaseDate: d(2024, 6, 6)},
	}
	idx := Assemble(members, posts, works, albums)

	titles := func(ws []*content.Work) []string {
		var out []string
		for _, w := range ws {
			out = append(out, w.Title)
		}
		return out
	}

	require.Len(t, idx.OfficialPosts(), 1)
	assert.Equal(t, "announce", idx.OfficialPosts()[0].Title)
	require.Len(t, idx.MemberPosts(), 1)
	assert.Equal(t, "diary", idx.MemberPosts()[0].Title)

	assert.Equal(t, []string{"collab", "hit"}, titles(idx.FeaturedWorks()))
	assert.Equal(t, []string{"collab", "b-side", "hit"}, titles(idx.WorksBy("alice")))
	assert.Equal(t, []string{"hit"}, titles(idx.FeaturedWorksBy("alice")))
	assert.Len(t, idx.PostsBy("alice"), 2)
	assert.Len(t, idx.PostsBy("bob"), 1)
	assert.Len(t, idx.AlbumsWith("alice"), 1)
	assert.Len(t, idx.AlbumsWith("bob"), 2)
	assert.Empty(t, idx.WorksBy("nobody"))

	m, ok := idx.Member("bob")
	require.True(t, ok)
	assert.Equal(t, "Bob", m.Name)
}

func TestAssembleEmpty(t *testing.T) {
	idx := Assemble(nil, nil, nil, nil)
	assert.Empty(t, idx.Members)
	assert.Empty(t, idx.OfficialPosts())
	assert.Empty(t, idx.FeaturedWorks())
}

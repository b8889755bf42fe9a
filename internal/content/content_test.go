package content

import (
	"context"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
)

func writeFiles(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0o644))
	}
	return fs
}

func TestSplitFrontMatter(t *testing.T) {
	testCases := []struct {
		name      string
		src       string
		wantFront string
		wantBody  string
		wantErr   bool
	}{
		{
			name:      "basic",
			src:       "title = \"x\"\n===\nhello\n",
			wantFront: "title = \"x\"\n",
			wantBody:  "hello\n",
		},
		{
			name:      "delimiter with surrounding spaces",
			src:       "a = 1\n  ===  \nbody",
			wantFront: "a = 1\n",
			wantBody:  "body",
		},
		{
			name:      "crlf line endings",
			src:       "a = 1\r\n===\r\nbody",
			wantFront: "a = 1\r\n",
			wantBody:  "body",
		},
		{
			name:      "delimiter on last line",
			src:       "a = 1\n===",
			wantFront: "a = 1\n",
			wantBody:  "",
		},
		{
			name:      "only first delimiter splits",
			src:       "a = 1\n===\nx\n===\ny",
			wantFront: "a = 1\n",
			wantBody:  "x\n===\ny",
		},
		{
			name:    "delimiter inside a line is not a split",
			src:     "a = \"===\"\nbody",
			wantErr: true,
		},
		{
			name:    "missing delimiter",
			src:     "a = 1\nbody",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			front, body, err := SplitFrontMatter("posts/x.md", tc.src)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, siteerrors.IsMalformed(err))
				assert.Contains(t, err.Error(), "posts/x.md")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantFront, front)
			assert.Equal(t, tc.wantBody, body)
		})
	}
}

func TestParseRole(t *testing.T) {
	testCases := []struct {
		position string
		expected Role
	}{
		{"president", RolePresident},
		{" President ", RolePresident},
		{"代表", RolePresident},
		{"vice-president", RoleVicePresident},
		{"Vice President", RoleVicePresident},
		{"副代表", RoleVicePresident},
		{"PR officer", RolePROfficer},
		{"PR", RolePROfficer},
		{"広報", RolePROfficer},
		{"treasurer", RoleOther},
		{"former president", RoleOther},
		{"", RoleNone},
		{"   ", RoleNone},
	}

	for _, tc := range testCases {
		t.Run(tc.position, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseRole(tc.position))
		})
	}

	assert.Less(t, RolePresident, RoleVicePresident)
	assert.Less(t, RoleVicePresident, RolePROfficer)
	assert.Less(t, RolePROfficer, RoleOther)
	assert.Less(t, RoleOther, RoleNone)
}

func TestLoadDefaults(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"members/alice.md": `name = "Alice"
ascii_name = "alice"
position = "president"
links = ["https://x.com/alice", "https://x.com/alice"]
===
Hi, I'm Alice.
`,
		"works/song.md": `title = "Song"
author = "alice"
date = 2024-05-01
link = "https://www.youtube.com/watch?v=abc"
===
`,
		"posts/news.md": `title = "News"
author = "alice"
date = 2024-06-01
===
Body
`,
		"albums/first.md": `title = "First"
release_date = 2024-11-03
album_type = "ToudaiVocadou"
front_cover = "images/first.jpg"
front_cover_illustrator = "alice"

[[tracklist]]
author = "alice"
title = "Song"
on_site = true
===
`,
	})

	set, err := NewLoader(fs, "", nil).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, set.Len())

	m := set.Members[0]
	assert.Equal(t, Handle("alice"), m.Handle)
	assert.Equal(t, RolePresident, m.Role)
	assert.Equal(t, []string{"https://x.com/alice"}, m.Links)
	assert.NotNil(t, m.FeaturedWorks)
	assert.Equal(t, "members/alice.md", m.Path)
	assert.Equal(t, "Hi, I'm Alice.\n", m.Body)

	w := set.Works[0]
	assert.Equal(t, DisplayLink, w.Display)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", w.DisplayTarget())
	assert.Equal(t, Date{Year: 2024, Month: 5, Day: 1}, w.Date)
	assert.Empty(t, w.Short)
	assert.False(t, w.Featured)
	assert.NotNil(t, w.Collaborators)
	assert.NotNil(t, w.ExtraCollaborators)

	p := set.Posts[0]
	assert.False(t, p.Official)
	assert.Empty(t, p.HeaderImage)
	assert.NotNil(t, p.Collaborators)

	a := set.Albums[0]
	assert.Equal(t, AlbumClub, a.AlbumType)
	assert.False(t, a.FrontCoverIllustratorNotOnSite)
	require.Len(t, a.Tracklist, 1)
	assert.True(t, a.Tracklist[0].OnSite)
	assert.False(t, a.Tracklist[0].ExternalAuthor)
	assert.NotNil(t, a.OtherCovers)
}

func TestLoadOrderAndDrafts(t *testing.T) {
	member := "name = \"%s\"\nascii_name = \"%s\"\n===\n"
	fs := writeFiles(t, map[string]string{
		"members/b.md":      fmt.Sprintf(member, "B", "b"),
		"members/a.md":      fmt.Sprintf(member, "A", "a"),
		"members/_draft.md": "not even toml",
		"members/notes.txt": "ignored",
	})

	set, err := NewLoader(fs, "", nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, set.Members, 2)
	assert.Equal(t, Handle("a"), set.Members[0].Handle)
	assert.Equal(t, Handle("b"), set.Members[1].Handle)
	assert.Empty(t, set.Works)
}

func TestWorkDisplayPrecedence(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"works/a.md": `title = "A"
author = "x"
date = 2024-01-01
cover_image = "images/a.jpg"
link = "https://example.com"
file = "audio/a.ogg"
===
`,
		"works/b.md": `title = "B"
author = "x"
date = 2024-01-01
file = "audio/b.ogg"
===
`,
	})

	set, err := NewLoader(fs, "", nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DisplayCover, set.Works[0].Display)
	assert.Equal(t, "images/a.jpg", set.Works[0].DisplayTarget())
	assert.Equal(t, DisplayAudio, set.Works[1].Display)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name      string
		file      string
		body      string
		wantField string
		wantCode  string
	}{
		{
			name:     "missing delimiter",
			file:     "posts/a.md",
			body:     "title = \"x\"\n",
			wantCode: siteerrors.ErrCodeMissingDelimiter,
		},
		{
			name:     "bad toml",
			file:     "posts/a.md",
			body:     "title = \n===\n",
			wantCode: siteerrors.ErrCodeFrontMatter,
		},
		{
			name:     "wrong type",
			file:     "works/a.md",
			body:     "title = 3\nauthor = \"a\"\ndate = 2024-01-01\nlink = \"x\"\n===\n",
			wantCode: siteerrors.ErrCodeFrontMatter,
		},
		{
			name:      "missing ascii_name",
			file:      "members/a.md",
			body:      "name = \"A\"\n===\n",
			wantField: "ascii_name",
			wantCode:  siteerrors.ErrCodeMissingField,
		},
		{
			name:      "unknown key",
			file:      "works/a.md",
			body:      "title = \"t\"\nauthor = \"a\"\ndate = 2024-01-01\nlink = \"x\"\ncolaborators = [\"bob\"]\n===\n",
			wantField: "colaborators",
			wantCode:  siteerrors.ErrCodeFrontMatter,
		},
		{
			name:      "non-ascii handle",
			file:      "members/a.md",
			body:      "name = \"A\"\nascii_name = \"ありす\"\n===\n",
			wantField: "ascii_name",
			wantCode:  siteerrors.ErrCodeInvalidField,
		},
		{
			name:      "handle with slash",
			file:      "members/a.md",
			body:      "name = \"A\"\nascii_name = \"../alice\"\n===\n",
			wantField: "ascii_name",
			wantCode:  siteerrors.ErrCodeInvalidField,
		},
		{
			name:      "missing date",
			file:      "works/a.md",
			body:      "title = \"t\"\nauthor = \"a\"\nlink = \"x\"\n===\n",
			wantField: "date",
			wantCode:  siteerrors.ErrCodeMissingField,
		},
		{
			name:     "work without display",
			file:     "works/a.md",
			body:     "title = \"t\"\nauthor = \"a\"\ndate = 2024-01-01\n===\n",
			wantCode: siteerrors.ErrCodeMissingField,
		},
		{
			name:      "unknown album type",
			file:      "albums/a.md",
			body:      "title = \"t\"\nrelease_date = 2024-01-01\nalbum_type = \"Bootleg\"\nfront_cover = \"c.jpg\"\nfront_cover_illustrator = \"a\"\n===\n",
			wantField: "album_type",
			wantCode:  siteerrors.ErrCodeInvalidField,
		},
		{
			name:      "track without title",
			file:      "albums/a.md",
			body:      "title = \"t\"\nrelease_date = 2024-01-01\nalbum_type = \"Solo\"\nfront_cover = \"c.jpg\"\nfront_cover_illustrator = \"a\"\n[[tracklist]]\nauthor = \"a\"\n===\n",
			wantField: "tracklist[0].title",
			wantCode:  siteerrors.ErrCodeMissingField,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := writeFiles(t, map[string]string{tc.file: tc.body})

			_, err := NewLoader(fs, "site", nil).Load(context.Background())
			require.Error(t, err)
			assert.True(t, siteerrors.IsMalformed(err))

			se, ok := siteerrors.As(err)
			require.True(t, ok)
			assert.Equal(t, "site/"+tc.file, se.File)
			assert.Equal(t, tc.wantCode, se.Code)
			if tc.wantField != "" {
				assert.Equal(t, tc.wantField, se.Field)
			}
		})
	}
}

func TestValidHandle(t *testing.T) {
	for _, h := range []Handle{"alice", "Bob_2", "k.tanaka", "mi-ku"} {
		assert.True(t, ValidHandle(h), h)
	}
	for _, h := range []Handle{"", ".hidden", "a/b", `a\b`, "a b", "ありす", "..", "alice?"} {
		assert.False(t, ValidHandle(h), h)
	}
}

func TestLoadCancelled(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"members/a.md": "name = \"A\"\nascii_name = \"a\"\n===\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(fs, "", nil).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloneIsDeep(t *testing.T) {
	a := &Album{
		Contributors: []Handle{"a"},
		OtherCovers:  map[string]Illustration{"back": {Link: "b.jpg", Illustrator: "a"}},
		Tracklist:    []Track{{Title: "t", Author: "a"}},
	}
	c := a.Clone()
	c.Contributors[0] = "z"
	c.OtherCovers["back"] = Illustration{Link: "changed"}
	c.Tracklist[0].Title = "changed"

	assert.Equal(t, Handle("a"), a.Contributors[0])
	assert.Equal(t, "b.jpg", a.OtherCovers["back"].Link)
	assert.Equal(t, "t", a.Tracklist[0].Title)
}

func TestCompareDates(t *testing.T) {
	d := func(y, m, day int) Date { return Date{Year: y, Month: m, Day: day} }
	assert.Equal(t, -1, CompareDates(d(2024, 1, 1), d(2024, 12, 31)))
	assert.Equal(t, 1, CompareDates(d(2025, 6, 1), d(2024, 12, 31)))
	assert.Equal(t, 0, CompareDates(d(2024, 1, 1), d(2024, 1, 1)))
	assert.Equal(t, 1, CompareDates(d(2024, 1, 2), d(2024, 1, 1)))
}

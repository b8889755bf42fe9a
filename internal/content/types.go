// Package content loads the site's Markdown content files and decodes their
// TOML front matter into typed records.
//
// A content file is a TOML front matter block, a line containing only
// "===", and a Markdown body. Records are immutable once loaded; later
// stages only ever read them or work on clones.
package content

import (
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Handle is a member's stable ASCII identifier. It is compared
// case-sensitively and is used as the lookup key for every author,
// collaborator and contributor reference, and as the member page name.
type Handle string

// String returns the raw handle.
func (h Handle) String() string { return string(h) }

// Handles converts raw strings into handles.
func Handles(raw []string) []Handle {
	out := make([]Handle, len(raw))
	for i, r := range raw {
		out[i] = Handle(r)
	}
	return out
}

// Date is a calendar date without time of day.
type Date = toml.LocalDate

// CompareDates orders two dates, returning -1, 0 or 1.
func CompareDates(a, b Date) int {
	switch {
	case a.Year != b.Year:
		return cmpInt(a.Year, b.Year)
	case a.Month != b.Month:
		return cmpInt(a.Month, b.Month)
	default:
		return cmpInt(a.Day, b.Day)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func isZeroDate(d Date) bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Role is a member's position, ordered by sort priority.
type Role int

const (
	RolePresident Role = iota
	RoleVicePresident
	RolePROfficer
	RoleOther
	RoleNone
)

// String returns the canonical English name of the role tier.
func (r Role) String() string {
	switch r {
	case RolePresident:
		return "president"
	case RoleVicePresident:
		return "vice-president"
	case RolePROfficer:
		return "PR officer"
	case RoleOther:
		return "other"
	default:
		return "none"
	}
}

// ParseRole maps a free-form position string onto its sort tier.
func ParseRole(position string) Role {
	p := strings.ToLower(strings.TrimSpace(position))
	switch p {
	case "":
		return RoleNone
	case "president", "代表":
		return RolePresident
	case "vice-president", "vice president", "副代表":
		return RoleVicePresident
	case "pr officer", "pr", "広報":
		return RolePROfficer
	default:
		return RoleOther
	}
}

// Category identifies a content collection.
type Category string

const (
	CategoryMembers Category = "members"
	CategoryPosts   Category = "posts"
	CategoryWorks   Category = "works"
	CategoryAlbums  Category = "albums"
)

// Pattern returns the glob used to discover the collection's files.
// Files whose name starts with an underscore are drafts and are skipped.
func (c Category) Pattern() string {
	return string(c) + "/[^_]*.md"
}

// Source records where a record was loaded from.
type Source struct {
	Path string
	Body string
}

// FeaturedLink is an entry in a member's hand-picked showcase.
type FeaturedLink struct {
	Title       string `toml:"title" json:"title"`
	Description string `toml:"description" json:"description,omitempty"`
	Link        string `toml:"link" json:"link"`
}

// Member is the identity anchor of the content graph.
type Member struct {
	Source `toml:"-" json:"-"`

	Name          string         `toml:"name" json:"name"`
	Handle        Handle         `toml:"ascii_name" json:"ascii_name"`
	Department    string         `toml:"department" json:"department,omitempty"`
	Position      string         `toml:"position" json:"position,omitempty"`
	EntryYear     int            `toml:"entry_year" json:"entry_year,omitempty"`
	Short         string         `toml:"short" json:"short"`
	Links         []string       `toml:"links" json:"links"`
	FeaturedWorks []FeaturedLink `toml:"featured_works" json:"featured_works"`

	Role Role `toml:"-" json:"-"`
}

// DisplayKind says which field a work is presented with.
type DisplayKind int

const (
	DisplayCover DisplayKind = iota
	DisplayLink
	DisplayAudio
)

// Work is a single release by a member.
type Work struct {
	Source `toml:"-" json:"-"`

	Title              string   `toml:"title" json:"title"`
	Author             Handle   `toml:"author" json:"author"`
	Collaborators      []Handle `toml:"collaborators" json:"collaborators"`
	ExtraCollaborators []string `toml:"extra_collaborators" json:"extra_collaborators"`
	Date               Date     `toml:"date" json:"date"`
	Short              string   `toml:"short" json:"short"`
	CoverImage         string   `toml:"cover_image" json:"cover_image,omitempty"`
	Link               string   `toml:"link" json:"link,omitempty"`
	File               string   `toml:"file" json:"file,omitempty"`
	RemixOriginalWork  string   `toml:"remix_original_work" json:"remix_original_work,omitempty"`
	Featured           bool     `toml:"featured" json:"featured"`
	Streaming          []string `toml:"streaming" json:"streaming"`
	DurationSeconds    int      `toml:"duration_seconds" json:"duration_seconds,omitempty"`

	Display DisplayKind `toml:"-" json:"-"`
}

// DisplayTarget returns the cover, link or audio file the work is shown with.
func (w *Work) DisplayTarget() string {
	switch w.Display {
	case DisplayCover:
		return w.CoverImage
	case DisplayLink:
		return w.Link
	default:
		return w.File
	}
}

// IsRemix reports whether the work links to an original it remixes.
func (w *Work) IsRemix() bool { return w.RemixOriginalWork != "" }

// Post is a news or blog entry.
type Post struct {
	Source `toml:"-" json:"-"`

	Title         string   `toml:"title" json:"title"`
	Author        Handle   `toml:"author" json:"author"`
	Collaborators []Handle `toml:"collaborators" json:"collaborators"`
	Date          Date     `toml:"date" json:"date"`
	HeaderImage   string   `toml:"header_image" json:"header_image,omitempty"`
	Short         string   `toml:"short" json:"short"`
	SocialLinks   []string `toml:"social_links" json:"social_links"`
	Official      bool     `toml:"official" json:"official"`
}

// AlbumType classifies who released an album.
type AlbumType string

const (
	AlbumSolo          AlbumType = "Solo"
	AlbumGroupExternal AlbumType = "GroupExternal"
	AlbumClub          AlbumType = "ToudaiVocadou"
)

// Valid reports whether t is one of the known album types.
func (t AlbumType) Valid() bool {
	switch t {
	case AlbumSolo, AlbumGroupExternal, AlbumClub:
		return true
	}
	return false
}

// Illustration is an additional album cover.
type Illustration struct {
	Link                   string `toml:"link" json:"link"`
	Illustrator            string `toml:"illustrator" json:"illustrator"`
	IllustratorIsNotOnSite bool   `toml:"illustrator_is_not_on_site" json:"illustrator_is_not_on_site"`
}

// Track is an album tracklist entry. An on-site track refers to a Work by
// title and author; an external-author track carries free text that is not
// checked against the member list.
type Track struct {
	Author          string `toml:"author" json:"author"`
	Title           string `toml:"title" json:"title"`
	DurationSeconds int    `toml:"duration_seconds" json:"duration_seconds,omitempty"`
	Link            string `toml:"link" json:"link,omitempty"`
	OnSite          bool   `toml:"on_site" json:"on_site"`
	ExternalAuthor  bool   `toml:"external_author" json:"external_author"`
}

// Album is a compilation or solo album.
type Album struct {
	Source `toml:"-" json:"-"`

	Title                          string                  `toml:"title" json:"title"`
	Subtitle                       string                  `toml:"subtitle" json:"subtitle,omitempty"`
	ReleaseDate                    Date                    `toml:"release_date" json:"release_date"`
	Short                          string                  `toml:"short" json:"short"`
	AlbumType                      AlbumType               `toml:"album_type" json:"album_type"`
	Contributors                   []Handle                `toml:"contributors" json:"contributors"`
	ExtraContributors              []string                `toml:"extra_contributors" json:"extra_contributors"`
	CrossfadeDemonstration         string                  `toml:"crossfade_demonstration" json:"crossfade_demonstration,omitempty"`
	FrontCover                     string                  `toml:"front_cover" json:"front_cover"`
	FrontCoverIllustrator          string                  `toml:"front_cover_illustrator" json:"front_cover_illustrator"`
	FrontCoverIllustratorNotOnSite bool                    `toml:"front_cover_illustrator_not_on_site" json:"front_cover_illustrator_not_on_site"`
	OtherCovers                    map[string]Illustration `toml:"other_covers" json:"other_covers"`
	PlaylistLink                   string                  `toml:"playlist_link" json:"playlist_link,omitempty"`
	Tracklist                      []Track                 `toml:"tracklist" json:"tracklist"`
	SNSLinks                       []string                `toml:"sns_links" json:"sns_links"`
}

// Set holds every record loaded for one build, in file-path order.
type Set struct {
	Members []*Member
	Posts   []*Post
	Works   []*Work
	Albums  []*Album
}

// Len returns the total number of records.
func (s *Set) Len() int {
	return len(s.Members) + len(s.Posts) + len(s.Works) + len(s.Albums)
}

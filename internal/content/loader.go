package content

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/spf13/afero"

	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
	"github.com/toudaivocadou/vocadou/internal/logging"
)

// Loader discovers and decodes content files under a content root.
type Loader struct {
	// fs is rooted at the content root; all globbing happens relative to it
	fs afero.Fs
	// root is only used to report full paths in errors
	root   string
	logger logging.Logger
}

// NewLoader creates a loader reading from fs. root is prefixed to every
// reported file path and may be empty.
func NewLoader(fs afero.Fs, root string, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Loader{fs: fs, root: root, logger: logger.WithComponent("loader")}
}

// NewOSLoader creates a loader over the real filesystem rooted at root.
func NewOSLoader(root string, logger logging.Logger) *Loader {
	return NewLoader(afero.NewBasePathFs(afero.NewOsFs(), root), root, logger)
}

// Load reads every collection. Records come back in lexical file-path order.
// The first malformed file aborts the load.
func (l *Loader) Load(ctx context.Context) (*Set, error) {
	var (
		set Set
		err error
	)

	if set.Members, err = loadCategory(ctx, l, CategoryMembers, l.decodeMember); err != nil {
		return nil, err
	}
	if set.Posts, err = loadCategory(ctx, l, CategoryPosts, l.decodePost); err != nil {
		return nil, err
	}
	if set.Works, err = loadCategory(ctx, l, CategoryWorks, l.decodeWork); err != nil {
		return nil, err
	}
	if set.Albums, err = loadCategory(ctx, l, CategoryAlbums, l.decodeAlbum); err != nil {
		return nil, err
	}

	l.logger.Info(ctx, "Loaded content",
		"members", len(set.Members),
		"posts", len(set.Posts),
		"works", len(set.Works),
		"albums", len(set.Albums))

	return &set, nil
}

// Files lists the content files of one collection, relative to the root.
func (l *Loader) Files(category Category) ([]string, error) {
	matches, err := afero.Glob(l.fs, category.Pattern())
	if err != nil {
		return nil, siteerrors.WrapIO(err, siteerrors.ErrCodeFileRead, string(category), "failed to list content files")
	}
	return matches, nil
}

func loadCategory[T any](
	ctx context.Context,
	l *Loader,
	category Category,
	decode func(path, front, body string) (*T, error),
) ([]*T, error) {
	files, err := l.Files(category)
	if err != nil {
		return nil, err
	}

	records := make([]*T, 0, len(files))
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := l.displayPath(rel)
		raw, err := afero.ReadFile(l.fs, rel)
		if err != nil {
			return nil, siteerrors.WrapIO(err, siteerrors.ErrCodeFileRead, path, "failed to read content file")
		}

		front, body, err := SplitFrontMatter(path, string(raw))
		if err != nil {
			return nil, err
		}

		record, err := decode(path, front, body)
		if err != nil {
			return nil, err
		}
		records = append(records, record)

		l.logger.Debug(ctx, "Loaded content file", "category", string(category), "file", path)
	}

	return records, nil
}

func (l *Loader) displayPath(rel string) string {
	if l.root == "" {
		return rel
	}
	return filepath.Join(l.root, rel)
}

func missing(path, field string) error {
	return siteerrors.NewMalformedError(siteerrors.ErrCodeMissingField, path, "required field is missing", nil).
		WithField(field, "")
}

func invalid(path, field, value, message string) error {
	return siteerrors.NewMalformedError(siteerrors.ErrCodeInvalidField, path, message, nil).
		WithField(field, value)
}

// ValidHandle reports whether h can be used in output paths such as
// members/<handle>.html.
func ValidHandle(h Handle) bool {
	if h == "" || h[0] == '.' {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

func (l *Loader) decodeMember(path, front, body string) (*Member, error) {
	m := &Member{}
	if err := decodeFrontMatter(path, front, m); err != nil {
		return nil, err
	}

	switch {
	case m.Name == "":
		return nil, missing(path, "name")
	case m.Handle == "":
		return nil, missing(path, "ascii_name")
	case !ValidHandle(m.Handle):
		return nil, invalid(path, "ascii_name", string(m.Handle),
			"ascii_name may only contain ASCII letters, digits, '-', '_' and '.'")
	}

	for i, fw := range m.FeaturedWorks {
		if fw.Title == "" {
			return nil, missing(path, "featured_works["+strconv.Itoa(i)+"].title")
		}
		if fw.Link == "" {
			return nil, missing(path, "featured_works["+strconv.Itoa(i)+"].link")
		}
	}

	m.Links = dedupe(m.Links)
	if m.FeaturedWorks == nil {
		m.FeaturedWorks = []FeaturedLink{}
	}
	m.Role = ParseRole(m.Position)
	m.Source = Source{Path: path, Body: body}

	return m, nil
}

func (l *Loader) decodeWork(path, front, body string) (*Work, error) {
	w := &Work{}
	if err := decodeFrontMatter(path, front, w); err != nil {
		return nil, err
	}

	switch {
	case w.Title == "":
		return nil, missing(path, "title")
	case w.Author == "":
		return nil, missing(path, "author")
	case isZeroDate(w.Date):
		return nil, missing(path, "date")
	}

	switch {
	case w.CoverImage != "":
		w.Display = DisplayCover
	case w.Link != "":
		w.Display = DisplayLink
	case w.File != "":
		w.Display = DisplayAudio
	default:
		return nil, siteerrors.NewMalformedError(siteerrors.ErrCodeMissingField, path,
			"work has nothing to display", nil).
			WithHint("set one of `cover_image`, `link` or `file`")
	}

	w.Collaborators = orEmpty(w.Collaborators)
	w.ExtraCollaborators = orEmpty(w.ExtraCollaborators)
	w.Streaming = orEmpty(w.Streaming)
	w.Source = Source{Path: path, Body: body}

	return w, nil
}

func (l *Loader) decodePost(path, front, body string) (*Post, error) {
	p := &Post{}
	if err := decodeFrontMatter(path, front, p); err != nil {
		return nil, err
	}

	switch {
	case p.Title == "":
		return nil, missing(path, "title")
	case p.Author == "":
		return nil, missing(path, "author")
	case isZeroDate(p.Date):
		return nil, missing(path, "date")
	}

	p.Collaborators = orEmpty(p.Collaborators)
	p.SocialLinks = orEmpty(p.SocialLinks)
	p.Source = Source{Path: path, Body: body}

	return p, nil
}

func (l *Loader) decodeAlbum(path, front, body string) (*Album, error) {
	a := &Album{}
	if err := decodeFrontMatter(path, front, a); err != nil {
		return nil, err
	}

	switch {
	case a.Title == "":
		return nil, missing(path, "title")
	case isZeroDate(a.ReleaseDate):
		return nil, missing(path, "release_date")
	case a.AlbumType == "":
		return nil, missing(path, "album_type")
	case a.FrontCover == "":
		return nil, missing(path, "front_cover")
	case a.FrontCoverIllustrator == "":
		return nil, missing(path, "front_cover_illustrator")
	}

	if !a.AlbumType.Valid() {
		return nil, invalid(path, "album_type", string(a.AlbumType),
			"album_type must be one of Solo, GroupExternal, ToudaiVocadou")
	}

	for i, t := range a.Tracklist {
		if t.Title == "" {
			return nil, missing(path, "tracklist["+strconv.Itoa(i)+"].title")
		}
		if t.Author == "" {
			return nil, missing(path, "tracklist["+strconv.Itoa(i)+"].author")
		}
	}

	for _, name := range slices.Sorted(maps.Keys(a.OtherCovers)) {
		cover := a.OtherCovers[name]
		if cover.Link == "" {
			return nil, missing(path, "other_covers."+name+".link")
		}
		if cover.Illustrator == "" {
			return nil, missing(path, "other_covers."+name+".illustrator")
		}
	}

	a.Contributors = orEmpty(a.Contributors)
	a.ExtraContributors = orEmpty(a.ExtraContributors)
	a.Tracklist = orEmpty(a.Tracklist)
	a.SNSLinks = orEmpty(a.SNSLinks)
	if a.OtherCovers == nil {
		a.OtherCovers = map[string]Illustration{}
	}
	a.Source = Source{Path: path, Body: body}

	return a, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// dedupe keeps the first occurrence of every link; member links are a set.
func dedupe(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, l := range links {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Package assets discovers the site's static files, fingerprints them and
// resolves content references to their published URLs.
//
// Local assets are published under hash/<hex>.<ext>, where hex is the
// xxhash64 of the file contents, so a changed file always gets a new URL.
// Audio files are too large to ship with the site and are served from the
// external asset origin under their source path instead.
package assets

import (
	"context"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
	"github.com/toudaivocadou/vocadou/internal/logging"
)

// Kind classifies an asset.
type Kind string

const (
	KindStyle  Kind = "style"
	KindScript Kind = "script"
	KindImage  Kind = "image"
	KindSVG    Kind = "svg"
	KindAudio  Kind = "audio"
)

// HashDir is the output directory fingerprinted assets are written to.
const HashDir = "hash"

// rule describes one asset collection: a directory, whether to descend into
// subdirectories, and the accepted extensions.
type rule struct {
	dir       string
	recursive bool
	exts      []string
	kind      Kind
}

var rules = []rule{
	{dir: "styles", exts: []string{".css"}, kind: KindStyle},
	{dir: "js", exts: []string{".js"}, kind: KindScript},
	{dir: "images", recursive: true, exts: []string{".jpg", ".png", ".gif", ".avif"}, kind: KindImage},
	{dir: "assets", recursive: true, exts: []string{".svg"}, kind: KindSVG},
	{dir: "audio", recursive: true, exts: []string{".ogg"}, kind: KindAudio},
}

// Asset is one discovered file.
type Asset struct {
	// Source is the slash-separated path relative to the content root
	Source string
	Kind   Kind
	// Hash is the hex xxhash64 of the contents
	Hash string
	Size int64
	// URL is where the asset is published
	URL string
}

// External reports whether the asset is served from the external origin.
func (a *Asset) External() bool { return a.Kind == KindAudio }

// OutputPath is the path the asset is written to, relative to the output
// directory. External assets have none.
func (a *Asset) OutputPath() string {
	if a.External() {
		return ""
	}
	return path.Join(HashDir, a.Hash+path.Ext(a.Source))
}

// Catalogue indexes every asset of one build. It is read-only once scanned
// and safe for concurrent use.
type Catalogue struct {
	fs           afero.Fs
	externalRoot string
	assets       map[string]*Asset
}

// Options configures a scan.
type Options struct {
	// ExternalURLRoot is the origin audio files are served from
	ExternalURLRoot string
	// Hashes is reused across builds to skip rehashing unchanged files
	Hashes *HashCache
	Logger logging.Logger
}

// Scan walks the asset directories of fs.
func Scan(ctx context.Context, fsys afero.Fs, opts Options) (*Catalogue, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.WithComponent("assets")

	hashes := opts.Hashes
	if hashes == nil {
		hashes = NewHashCache()
	}

	c := &Catalogue{
		fs:           fsys,
		externalRoot: strings.TrimSuffix(opts.ExternalURLRoot, "/"),
		assets:       make(map[string]*Asset),
	}

	for _, r := range rules {
		if err := c.scanRule(ctx, r, hashes); err != nil {
			return nil, err
		}
	}

	logger.Info(ctx, "Scanned assets", "count", len(c.assets), "cache_hits", hashes.Hits())

	return c, nil
}

func (c *Catalogue) scanRule(ctx context.Context, r rule, hashes *HashCache) error {
	if _, err := c.fs.Stat(r.dir); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return siteerrors.WrapIO(err, siteerrors.ErrCodeFileRead, r.dir, "failed to read asset directory")
	}

	return afero.Walk(c.fs, r.dir, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return siteerrors.WrapIO(err, siteerrors.ErrCodeFileRead, p, "failed to walk asset directory")
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			if p != r.dir && !r.recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !hasExt(p, r.exts) {
			return nil
		}

		source := filepath.ToSlash(p)
		hash, err := hashes.Hash(c.fs, p, info)
		if err != nil {
			return err
		}

		a := &Asset{Source: source, Kind: r.kind, Hash: hash, Size: info.Size()}
		if a.External() {
			a.URL = c.externalRoot + "/" + escapePath(source)
		} else {
			a.URL = "/" + a.OutputPath()
		}
		c.assets[source] = a
		return nil
	})
}

func hasExt(p string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// Normalize turns a content reference into a catalogue key.
func Normalize(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, "/")
	ref = path.Clean(ref)
	return strings.TrimPrefix(ref, "./")
}

// IsAbsoluteURL reports whether ref already points at another origin.
func IsAbsoluteURL(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Lookup returns the asset for ref.
func (c *Catalogue) Lookup(ref string) (*Asset, bool) {
	a, ok := c.assets[Normalize(ref)]
	return a, ok
}

// Resolve returns the published URL for ref. Absolute URLs pass through
// unchanged; anything else must be a catalogued asset.
func (c *Catalogue) Resolve(ref string) (string, error) {
	if IsAbsoluteURL(ref) {
		return ref, nil
	}
	a, ok := c.Lookup(ref)
	if !ok {
		return "", siteerrors.NewMissingAssetError(ref)
	}
	return a.URL, nil
}

// MustExist is Resolve for callers that only need the existence check.
func (c *Catalogue) MustExist(ref string) error {
	_, err := c.Resolve(ref)
	return err
}

// Assets returns every asset sorted by source path.
func (c *Catalogue) Assets() []*Asset {
	out := make([]*Asset, 0, len(c.assets))
	for _, a := range c.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Len returns the number of assets.
func (c *Catalogue) Len() int { return len(c.assets) }

// Publish copies every local asset into out under its fingerprinted name.
// Files that already exist with the same name are skipped: the name is the
// content hash.
func (c *Catalogue) Publish(ctx context.Context, out afero.Fs) (int, error) {
	if err := out.MkdirAll(HashDir, 0o755); err != nil {
		return 0, siteerrors.WrapIO(err, siteerrors.ErrCodeFileWrite, HashDir, "failed to create asset directory")
	}

	written := 0
	for _, a := range c.Assets() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if a.External() {
			continue
		}

		dst := a.OutputPath()
		if ok, _ := afero.Exists(out, dst); ok {
			continue
		}

		data, err := afero.ReadFile(c.fs, filepath.FromSlash(a.Source))
		if err != nil {
			return written, siteerrors.WrapIO(err, siteerrors.ErrCodeFileRead, a.Source, "failed to read asset")
		}
		if err := afero.WriteFile(out, dst, data, 0o644); err != nil {
			return written, siteerrors.WrapIO(err, siteerrors.ErrCodeFileWrite, dst, "failed to write asset")
		}

		written++
	}

	return written, nil
}

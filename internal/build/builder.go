// Package build runs the whole site build: load, check, render, write.
package build

import (
	"context"
	"net/http"
	"os"
	"path"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/toudaivocadou/vocadou/internal/assets"
	"github.com/toudaivocadou/vocadou/internal/content"
	"github.com/toudaivocadou/vocadou/internal/dom"
	"github.com/toudaivocadou/vocadou/internal/embed"
	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
	"github.com/toudaivocadou/vocadou/internal/logging"
	"github.com/toudaivocadou/vocadou/internal/markup"
	"github.com/toudaivocadou/vocadou/internal/names"
	"github.com/toudaivocadou/vocadou/internal/rewrite"
	"github.com/toudaivocadou/vocadou/internal/siteindex"
	"github.com/toudaivocadou/vocadou/internal/validate"
	"github.com/toudaivocadou/vocadou/internal/view"
)

// Options configures a Builder.
type Options struct {
	BuildID int
	// DataRoot is only used to report file paths
	DataRoot        string
	SiteURL         string
	ExternalURLRoot string
	Workers         int
	// Clean empties the output tree before a successful build writes it
	Clean bool

	EmbedEnabled  bool
	EmbedTimeout  time.Duration
	EmbedEndpoint string
	HTTPClient    *http.Client
}

// Builder builds the site from a content tree into an output tree.
type Builder struct {
	src     afero.Fs
	out     afero.Fs
	opts    Options
	logger  logging.Logger
	hashes  *assets.HashCache
	metrics *Metrics
	builds  int64
}

// New creates a Builder reading content from src and writing to out.
func New(src, out afero.Fs, opts Options, logger logging.Logger) *Builder {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &Builder{
		src:     src,
		out:     out,
		opts:    opts,
		logger:  logger.WithComponent("build"),
		hashes:  assets.NewHashCache(),
		metrics: NewMetrics(),
	}
}

// Metrics returns the tracker of this builder's builds.
func (b *Builder) Metrics() *Metrics { return b.metrics }

// Graph is the checked content of one build.
type Graph struct {
	Set   *content.Set
	Names *names.Table
	Index *siteindex.Index
}

// Result summarises a successful build.
type Result struct {
	BuildID  int
	Pages    []string
	Files    []string
	Assets   int
	Records  int
	Duration time.Duration
}

// buildID numbers rebuilds within one process after the configured id.
func (b *Builder) nextBuildID() int {
	return b.opts.BuildID + int(atomic.AddInt64(&b.builds, 1)) - 1
}

// Check loads every record and validates all references without
// rendering anything.
func (b *Builder) Check(ctx context.Context) (*Graph, error) {
	return b.check(ctx, b.logger.With("build_id", b.opts.BuildID))
}

func (b *Builder) check(ctx context.Context, logger logging.Logger) (*Graph, error) {
	set, err := content.NewLoader(b.src, b.opts.DataRoot, logger).Load(ctx)
	if err != nil {
		return nil, err
	}

	table, err := names.Build(set.Members)
	if err != nil {
		return nil, err
	}

	if err := validate.Validate(table, set); err != nil {
		return nil, err
	}
	logger.Info(ctx, "References validated", "records", set.Len(), "members", table.Len())

	return &Graph{Set: set, Names: table, Index: siteindex.FromSet(set)}, nil
}

type renderedPage struct {
	path string
	meta view.Meta
	data []byte
}

// Build runs one full build. Nothing is written unless every record
// validates and every page renders.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	id := b.nextBuildID()
	logger := b.logger.With("build_id", id)

	res, err := b.build(ctx, id, logger)
	duration := time.Since(start)
	b.metrics.Record(id, res, err, duration)

	if err != nil {
		siteerrors.NewErrorHandler(logger.With("duration", duration)).Handle(ctx, err)
		return nil, err
	}
	res.Duration = duration
	logger.Info(ctx, "Build finished",
		"pages", len(res.Pages),
		"files", len(res.Files),
		"assets", res.Assets,
		"duration", duration)
	return res, nil
}

func (b *Builder) build(ctx context.Context, id int, logger logging.Logger) (*Result, error) {
	graph, err := b.check(ctx, logger)
	if err != nil {
		return nil, err
	}

	catalogue, err := assets.Scan(ctx, b.src, assets.Options{
		ExternalURLRoot: b.opts.ExternalURLRoot,
		Hashes:          b.hashes,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	links, err := rewrite.New(b.opts.SiteURL)
	if err != nil {
		return nil, err
	}

	embedder := embed.New(embed.Options{
		Enabled:  b.opts.EmbedEnabled,
		Timeout:  b.opts.EmbedTimeout,
		Endpoint: b.opts.EmbedEndpoint,
		Client:   b.opts.HTTPClient,
		Assets:   catalogue,
		Logger:   logger,
	})
	md := markup.New(graph.Names, catalogue, embedder)
	site := &view.Site{
		Names:  graph.Names,
		Index:  graph.Index,
		Assets: catalogue,
		Embeds: embedder,
		Links:  links,
	}

	pages, err := b.render(ctx, site, md, links, logger)
	if err != nil {
		return nil, err
	}

	worksList, err := WorksList(ctx, site, links)
	if err != nil {
		return nil, err
	}
	sitemap, err := Sitemap(links, pages)
	if err != nil {
		return nil, err
	}

	if b.opts.Clean {
		if err := b.clean(); err != nil {
			return nil, err
		}
	}

	res := &Result{BuildID: id, Records: graph.Set.Len()}
	for _, pg := range pages {
		if err := b.write(pg.path, pg.data); err != nil {
			return nil, err
		}
		res.Pages = append(res.Pages, pg.path)
		res.Files = append(res.Files, pg.path)
	}
	for _, f := range []struct {
		name string
		data []byte
	}{
		{"works_list.json", worksList},
		{"sitemap.xml", sitemap},
		{"robots.txt", Robots(links)},
	} {
		if err := b.write(f.name, f.data); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, f.name)
	}

	if res.Assets, err = catalogue.Publish(ctx, b.out); err != nil {
		return nil, err
	}

	sort.Strings(res.Pages)
	sort.Strings(res.Files)
	return res, nil
}

type pageJob func(ctx context.Context) (*view.Page, error)

func (b *Builder) jobs(site *view.Site, md *markup.Renderer) []pageJob {
	jobs := []pageJob{
		site.IndexPage,
		site.JoinPage,
		site.NotFoundPage,
		site.MembersPage,
		site.WorksPage,
		site.NewsPage,
	}

	for _, m := range site.Index.Members {
		jobs = append(jobs, func(ctx context.Context) (*view.Page, error) {
			body, err := md.Render(ctx, m.Path, m.Body)
			if err != nil {
				return nil, err
			}
			return site.MemberPage(ctx, m, body)
		})
	}
	for _, w := range site.Index.Works {
		jobs = append(jobs, func(ctx context.Context) (*view.Page, error) {
			body, err := md.Render(ctx, w.Path, w.Body)
			if err != nil {
				return nil, err
			}
			return site.WorkPage(ctx, w, body)
		})
	}
	for _, a := range site.Index.Albums {
		jobs = append(jobs, func(ctx context.Context) (*view.Page, error) {
			body, err := md.Render(ctx, a.Path, a.Body)
			if err != nil {
				return nil, err
			}
			return site.AlbumPage(ctx, a, body)
		})
	}
	for _, p := range site.Index.Posts {
		jobs = append(jobs, func(ctx context.Context) (*view.Page, error) {
			body, err := md.Render(ctx, p.Path, p.Body)
			if err != nil {
				return nil, err
			}
			return site.PostPage(ctx, p, body)
		})
	}

	return jobs
}

// render builds every page on a bounded pool. The site is only read, so
// pages can be rendered in any order; results keep job order.
func (b *Builder) render(
	ctx context.Context,
	site *view.Site,
	md *markup.Renderer,
	links *rewrite.Rewriter,
	logger logging.Logger,
) ([]renderedPage, error) {
	jobs := b.jobs(site, md)
	pages := make([]renderedPage, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			pg, err := job(gctx)
			if err != nil {
				return err
			}
			doc, err := site.Document(gctx, pg)
			if err != nil {
				return err
			}
			html, err := dom.Render(gctx, doc)
			if err != nil {
				return siteerrors.NewRenderError(siteerrors.ErrCodeTemplateFailed, pg.Path, "failed to render page", err)
			}
			data, err := links.Rewrite(pg.Path, []byte(html))
			if err != nil {
				return err
			}

			pages[i] = renderedPage{path: pg.Path, meta: pg.Meta, data: data}
			logger.Debug(gctx, "Rendered page", "page", pg.Path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Pages rendered", "pages", len(pages), "workers", b.opts.Workers)
	return pages, nil
}

func (b *Builder) write(name string, data []byte) error {
	if dir := path.Dir(name); dir != "." {
		if err := b.out.MkdirAll(dir, 0o755); err != nil {
			return siteerrors.WrapIO(err, siteerrors.ErrCodeFileWrite, dir, "failed to create output directory")
		}
	}
	if err := afero.WriteFile(b.out, name, data, 0o644); err != nil {
		return siteerrors.WrapIO(err, siteerrors.ErrCodeFileWrite, name, "failed to write output file")
	}
	return nil
}

// clean removes everything below the output root but keeps the root
// itself, so a preview server holding it keeps working.
func (b *Builder) clean() error {
	entries, err := afero.ReadDir(b.out, ".")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return siteerrors.WrapIO(err, siteerrors.ErrCodeFileRead, ".", "failed to list output directory")
	}
	for _, e := range entries {
		if err := b.out.RemoveAll(e.Name()); err != nil {
			return siteerrors.WrapIO(err, siteerrors.ErrCodeFileWrite, e.Name(), "failed to clean output directory")
		}
	}
	return nil
}

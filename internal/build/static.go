package build

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"strings"

	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
	"github.com/toudaivocadou/vocadou/internal/rewrite"
	"github.com/toudaivocadou/vocadou/internal/view"
)

// WorkEntry is one element of works_list.json, read by the featured-work
// widget on the index page.
type WorkEntry struct {
	ID                int      `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	OnSiteLink        string   `json:"on_site_link"`
	AuthorDisplayName string   `json:"author_displayname"`
	AuthorLink        string   `json:"author_link"`
	Collaborators     []string `json:"collaborators"`
	RemixOriginalWork string   `json:"remix_original_work,omitempty"`
	EmbedHTML         string   `json:"embed_html"`
}

// WorksList builds works_list.json with every work in index order.
func WorksList(ctx context.Context, site *view.Site, links *rewrite.Rewriter) ([]byte, error) {
	entries := make([]WorkEntry, 0, len(site.Index.Works))

	for id, w := range site.Index.Works {
		display, err := site.WorkDisplayHTML(ctx, w)
		if err != nil {
			return nil, err
		}
		display, err = links.RewriteFragment(w.Path, display)
		if err != nil {
			return nil, err
		}

		collaborators := make([]string, 0, len(w.Collaborators)+len(w.ExtraCollaborators))
		for _, h := range w.Collaborators {
			collaborators = append(collaborators, site.Names.MustName(h))
		}
		collaborators = append(collaborators, w.ExtraCollaborators...)

		entries = append(entries, WorkEntry{
			ID:                id,
			Title:             w.Title,
			Description:       w.Short,
			OnSiteLink:        links.URL(view.WorkPath(w)),
			AuthorDisplayName: site.Names.MustName(w.Author),
			AuthorLink:        links.URL(view.MemberPath(w.Author)),
			Collaborators:     collaborators,
			RemixOriginalWork: w.RemixOriginalWork,
			EmbedHTML:         display,
		})
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, siteerrors.NewRenderError(siteerrors.ErrCodeTemplateFailed, "works_list.json", "failed to encode works list", err)
	}
	return data, nil
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap lists every rendered page except the 404 page.
func Sitemap(links *rewrite.Rewriter, pages []renderedPage) ([]byte, error) {
	set := sitemapURLSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}

	for _, pg := range pages {
		if pg.path == "404.html" {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        links.URL(pg.path),
			LastMod:    pg.meta.Date,
			ChangeFreq: changeFreq(pg.meta.Section),
			Priority:   priority(pg.path),
		})
	}

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, siteerrors.NewRenderError(siteerrors.ErrCodeTemplateFailed, "sitemap.xml", "failed to encode sitemap", err)
	}
	return append([]byte(xml.Header), data...), nil
}

func changeFreq(s view.Section) string {
	switch s {
	case view.SectionHome, view.SectionNews, view.SectionWorks:
		return "weekly"
	default:
		return "monthly"
	}
}

func priority(p string) float64 {
	switch {
	case p == "index.html":
		return 1.0
	case strings.Contains(p, "/"):
		return 0.6
	default:
		return 0.8
	}
}

// Robots allows every crawler and points at the sitemap.
func Robots(links *rewrite.Rewriter) []byte {
	return []byte("User-agent: *\nAllow: /\nSitemap: " + links.URL("sitemap.xml") + "\n")
}

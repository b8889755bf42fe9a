// Package view renders the site's pages.
//
// Every page function returns a Page whose body is a templ component built
// with the dom package. Asset references are resolved while the page is
// built, so a page that refers to a missing asset fails before it is
// rendered.
package view

import (
	"context"
	"strings"

	"github.com/toudaivocadou/vocadou/internal/content"
	"github.com/toudaivocadou/vocadou/internal/dom"
	"github.com/toudaivocadou/vocadou/internal/markup"
	"github.com/toudaivocadou/vocadou/internal/names"
	"github.com/toudaivocadou/vocadou/internal/siteindex"
	"github.com/toudaivocadou/vocadou/internal/slug"
)

const (
	SiteName  = "東京大学ボカロP同好会"
	SiteTitle = "東京大学ボカロP同好会 - University of Tokyo Vocaloid Producer Club"

	Stylesheet   = "styles/main.css"
	MainScript   = "js/script.js"
	ScrollScript = "js/scroll.js"
	Placeholder  = "images/gray.jpg"
	CirclePhoto  = "images/circle-photo.jpg"

	ClubAccount = "https://x.com/toudaivocadou"
)

// Resolver maps an asset reference to its published URL.
type Resolver interface {
	Resolve(ref string) (string, error)
}

// Embedder renders a link as embedded media. Only a missing local asset
// is reported as an error.
type Embedder interface {
	Embed(ctx context.Context, link string) (dom.Node, error)
}

// Linker turns a site-relative path into an absolute URL.
type Linker interface {
	URL(ref string) string
}

// Site holds everything the pages are rendered from. It is only read.
type Site struct {
	Names  *names.Table
	Index  *siteindex.Index
	Assets Resolver
	Embeds Embedder
	Links  Linker
}

// Section is the navigation entry a page belongs to.
type Section int

const (
	SectionHome Section = iota
	SectionMembers
	SectionMemberProfile
	SectionActivities
	SectionJoin
	SectionNews
	SectionNewsPost
	SectionWorks
	SectionWorksPost
)

// Meta describes a page for its head.
type Meta struct {
	Title       string
	Image       string
	Canonical   string
	Section     Section
	Description string
	Author      string
	Date        string
}

// OGType is the OpenGraph type of the page.
func (m Meta) OGType() string {
	switch m.Section {
	case SectionMemberProfile:
		return "profile"
	case SectionNewsPost, SectionWorksPost:
		return "article"
	default:
		return "website"
	}
}

// Page is a rendered-to-be page and the path it is written to.
type Page struct {
	Path    string
	Meta    Meta
	Scripts []string
	Body    dom.Node
}

// Paths of generated pages.

func MemberPath(h content.Handle) string { return markup.MemberPath(h) }

func WorkPath(w *content.Work) string {
	return "works/releases/" + slug.Work(w.Title, w.Author) + ".html"
}

func AlbumPath(a *content.Album) string {
	return "works/albums/" + slug.Album(a.Title, a.FrontCover) + ".html"
}

func PostPath(p *content.Post) string {
	return "news/" + slug.Post(p.Title, p.Author, p.Date) + ".html"
}

// builder resolves assets for one page and keeps the first failure.
type builder struct {
	*Site
	ctx context.Context
	err error
}

func (s *Site) begin(ctx context.Context) *builder {
	return &builder{Site: s, ctx: ctx}
}

func (b *builder) asset(ref string) string {
	u, err := b.Assets.Resolve(ref)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return ""
	}
	return u
}

func (b *builder) page(p *Page) (*Page, error) {
	if b.err != nil {
		return nil, b.err
	}
	return p, nil
}

func (b *builder) embed(link string) dom.Node {
	n, err := b.Embeds.Embed(b.ctx, link)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return nil
	}
	return n
}

func (b *builder) name(h content.Handle) string {
	return b.Names.Name(h)
}

func (b *builder) memberLink(h content.Handle) dom.Node {
	return dom.El("a", []dom.Attr{dom.Href(MemberPath(h))}, dom.Text(b.name(h)))
}

func (b *builder) icon(h content.Handle) string {
	return b.asset("images/icon/" + string(h) + ".jpg")
}

func (b *builder) displayNames(hs []content.Handle) string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = b.name(h)
	}
	return strings.Join(out, ", ")
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func div(class string, children ...dom.Node) dom.Node {
	return dom.El("div", []dom.Attr{dom.Class(class)}, children...)
}

func para(class string, text string) dom.Node {
	if class == "" {
		return dom.El("p", nil, dom.Text(text))
	}
	return dom.El("p", []dom.Attr{dom.Class(class)}, dom.Text(text))
}

func section(id string, children ...dom.Node) dom.Node {
	return dom.El("section", []dom.Attr{dom.ID(id)}, children...)
}

func container(children ...dom.Node) dom.Node {
	return div("container", children...)
}

func backButton(href, label string) dom.Node {
	return div("back-button", dom.El("a", []dom.Attr{dom.Href(href)}, dom.Text(label)))
}

func empty(text string) dom.Node {
	return dom.El("p", []dom.Attr{dom.Class("work-description"), dom.A("style", "text-align: center;")},
		dom.El("em", nil, dom.Text(text)))
}

package view

import (
	"context"

	"github.com/toudaivocadou/vocadou/internal/dom"
	"github.com/toudaivocadou/vocadou/internal/embed"
)

type navItem struct {
	href     string
	label    string
	sections []Section
}

var navigation = []navItem{
	{"index.html", "ホーム", []Section{SectionHome}},
	{"members.html", "メンバー紹介", []Section{SectionMembers, SectionMemberProfile}},
	{"index.html#activities", "活動内容", []Section{SectionActivities}},
	{"join.html", "入会案内", []Section{SectionJoin}},
	{"news.html", "ニュース・ブログ", []Section{SectionNews, SectionNewsPost}},
	{"works.html", "作品", []Section{SectionWorks, SectionWorksPost}},
}

// Document wraps a page body in the shared layout.
func (s *Site) Document(ctx context.Context, pg *Page) (dom.Node, error) {
	b := s.begin(ctx)

	doc := dom.Group(
		dom.Doctype(),
		dom.El("html", []dom.Attr{dom.A("lang", "ja")},
			b.head(pg),
			dom.El("body", nil,
				navbar(pg.Meta.Section),
				div("main-content-container", pg.Body),
				b.footer(),
			),
		),
	)
	if b.err != nil {
		return nil, b.err
	}
	return doc, nil
}

func (b *builder) head(pg *Page) dom.Node {
	m := pg.Meta
	meta := func(property, value string) dom.Node {
		return dom.El("meta", []dom.Attr{dom.A("property", property), dom.A("content", value)})
	}

	var image dom.Node
	if m.Image != "" {
		image = meta("og:image", b.Links.URL(m.Image))
	}
	var description dom.Node
	if m.Description != "" {
		description = dom.Group(
			dom.El("meta", []dom.Attr{dom.A("name", "description"), dom.A("content", m.Description)}),
			meta("og:description", m.Description),
		)
	}

	var extra dom.Node
	switch m.OGType() {
	case "article":
		extra = dom.Group(
			dom.If(m.Author != "", meta("og:article:author", m.Author)),
			dom.If(m.Date != "", meta("og:article:published_time", m.Date)),
		)
	case "profile":
		extra = dom.If(m.Author != "", meta("og:profile:username", m.Author))
	}

	scripts := make([]dom.Node, 0, len(pg.Scripts))
	for _, s := range pg.Scripts {
		scripts = append(scripts, dom.El("script", []dom.Attr{dom.Src(b.asset(s))}))
	}

	return dom.El("head", nil,
		dom.El("meta", []dom.Attr{dom.A("charset", "UTF-8")}),
		dom.El("meta", []dom.Attr{dom.A("name", "viewport"), dom.A("content", "width=device-width, initial-scale=1.0")}),
		dom.El("title", nil, dom.Text(m.Title)),
		meta("og:title", m.Title),
		meta("og:url", b.Links.URL(m.Canonical)),
		meta("og:type", m.OGType()),
		meta("og:site_name", SiteTitle),
		meta("og:locale", "ja_JP"),
		image,
		description,
		extra,
		dom.El("link", []dom.Attr{dom.A("rel", "canonical"), dom.Href(m.Canonical)}),
		dom.El("link", []dom.Attr{dom.A("rel", "stylesheet"), dom.Href(b.asset(Stylesheet))}),
		dom.El("link", []dom.Attr{dom.A("rel", "icon"), dom.A("type", "image/x-icon"), dom.Href("favicon.ico")}),
		dom.Group(scripts...),
	)
}

func navbar(current Section) dom.Node {
	items := make([]dom.Node, len(navigation))
	for i, item := range navigation {
		attrs := []dom.Attr{dom.Href(item.href)}
		for _, s := range item.sections {
			if s == current {
				attrs = append(attrs, dom.Class("active"))
				break
			}
		}
		items[i] = dom.El("li", nil, dom.El("a", attrs, dom.Text(item.label)))
	}

	return dom.El("header", nil,
		container(
			dom.El("h1", nil, dom.Text(SiteName)),
			dom.El("nav", nil, dom.El("ul", nil, items...)),
		),
	)
}

func (b *builder) footer() dom.Node {
	return dom.El("footer", nil,
		container(
			para("", "© 2025 "+SiteName),
			div("social-links sns-footer", b.socialIcon(ClubAccount)),
		),
	)
}

// socialIcon links to an account with the platform's icon.
func (b *builder) socialIcon(link string) dom.Node {
	attrs := []dom.Attr{dom.A("alt", link), dom.Src(b.asset(embed.IconPath(link)))}
	if t, _ := embed.Classify(link); t == embed.Bluesky {
		attrs = append(attrs, dom.A("style", "width: 100%;"))
	}
	return dom.El("a", []dom.Attr{dom.Class("social-icon social-icon-size"), dom.Href(link)},
		dom.El("img", attrs))
}

func (b *builder) socialIcons(links []string) dom.Node {
	return dom.Map(links, b.socialIcon)
}

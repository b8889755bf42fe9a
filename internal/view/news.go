package view

import (
	"context"

	"github.com/toudaivocadou/vocadou/internal/content"
	"github.com/toudaivocadou/vocadou/internal/dom"
	"github.com/toudaivocadou/vocadou/internal/markup"
)

// NewsPage lists official news and member posts.
func (s *Site) NewsPage(ctx context.Context) (*Page, error) {
	b := s.begin(ctx)

	list := func(id, heading string, posts []*content.Post) dom.Node {
		var items dom.Node
		if len(posts) == 0 {
			items = empty("ポストがありません。")
		} else {
			items = dom.Map(posts, b.postCard)
		}
		return dom.El("section", []dom.Attr{dom.ID(id), dom.Class("list")},
			dom.El("h3", nil, dom.Text(heading)),
			div("listcontainer", items),
		)
	}

	body := dom.Group(
		section("hero", container(
			dom.El("h2", nil, dom.Text("ニュース")),
			para("", "東京大学ボカロP同好会のニュース目録です。"),
		)),
		list("official", "お知らせ", b.Index.OfficialPosts()),
		list("blog", "メンバーブログ", b.Index.MemberPosts()),
	)

	return b.page(&Page{
		Path: "news.html",
		Meta: Meta{
			Title:       "ニュース - " + SiteName,
			Canonical:   "news.html",
			Section:     SectionNews,
			Description: SiteName + "のニュース",
		},
		Body: body,
	})
}

func (b *builder) postImage(p *content.Post) string {
	return b.asset(or(p.HeaderImage, Placeholder))
}

func (b *builder) postCard(p *content.Post) dom.Node {
	return div("item-card",
		div("item-image",
			dom.El("img", []dom.Attr{dom.Class("img-placeholder"), dom.Src(b.postImage(p)), dom.A("alt", p.Title)}),
		),
		div("item-title",
			dom.El("h3", nil, dom.El("a", []dom.Attr{dom.Href(PostPath(p))}, dom.Text(p.Title))),
			para("member-role", p.Date.String()),
			para("member-department", b.name(p.Author)),
			para("", p.Short),
		),
	)
}

// PostPage renders a news post or blog entry.
func (s *Site) PostPage(ctx context.Context, p *content.Post, body string) (*Page, error) {
	b := s.begin(ctx)

	authors := []dom.Node{b.memberLink(p.Author)}
	for _, c := range p.Collaborators {
		authors = append(authors, dom.Text(" "), b.memberLink(c))
	}

	var header dom.Node
	if p.HeaderImage != "" {
		header = div("member-profile",
			div("member-profile-image",
				dom.El("img", []dom.Attr{dom.Src(b.asset(p.HeaderImage)), dom.A("alt", "header")}),
			),
		)
	}

	page := dom.Group(
		dom.El("section", []dom.Attr{dom.ID("post-detail")},
			div("member-detail-container",
				dom.El("h2", nil, dom.Text(p.Title)),
				para("member-role", p.Date.String()),
				dom.El("p", []dom.Attr{dom.Class("post-authors")}, authors...),
				header,
			),
		),
		dom.El("section", []dom.Attr{dom.Class("container")},
			div("about-content", dom.Raw(body)),
			dom.If(len(p.SocialLinks) > 0, div("social-links", b.socialIcons(p.SocialLinks))),
		),
		backButton("news.html", "ニュース目録一覧に戻る"),
	)

	return b.page(&Page{
		Path: PostPath(p),
		Meta: Meta{
			Title:       p.Title,
			Image:       b.postImage(p),
			Canonical:   PostPath(p),
			Section:     SectionNewsPost,
			Description: or(p.Short, markup.Excerpt(p.Body, 150)),
			Author:      string(p.Author),
			Date:        p.Date.String(),
		},
		Body: page,
	})
}

package view

import (
	"context"

	"github.com/toudaivocadou/vocadou/internal/content"
	"github.com/toudaivocadou/vocadou/internal/dom"
	"github.com/toudaivocadou/vocadou/internal/markup"
)

// recentPosts is how many posts a member page lists.
const recentPosts = 5

// MembersPage renders the member overview.
func (s *Site) MembersPage(ctx context.Context) (*Page, error) {
	b := s.begin(ctx)

	body := dom.Group(
		section("members-hero", container(
			dom.El("h2", nil, dom.Text("メンバー紹介")),
			para("", "東京大学ボカロP同好会で活動する個性豊かなメンバーたちをご紹介します。"),
		)),
		section("staff-members", container(
			div("member-grid", dom.Map(b.Index.Members, b.memberCard)),
		)),
	)

	return b.page(&Page{
		Path: "members.html",
		Meta: Meta{
			Title:       "メンバー紹介 - " + SiteName,
			Canonical:   "members.html",
			Section:     SectionMembers,
			Description: SiteName + "のメンバー紹介",
		},
		Scripts: []string{MainScript},
		Body:    body,
	})
}

func (b *builder) memberCard(m *content.Member) dom.Node {
	var links dom.Node
	if len(m.Links) == 0 {
		// keeps the card height when there are no icons
		links = dom.El("div", []dom.Attr{dom.Class("social-icon-size"), dom.A("style", "visibility: hidden")})
	} else {
		links = b.socialIcons(m.Links)
	}

	return div("member-item",
		dom.El("a", []dom.Attr{dom.Class("member-link"), dom.Href(MemberPath(m.Handle))},
			div("member-card",
				div("member-image img-placeholder",
					dom.El("img", []dom.Attr{dom.Class("member-image img-placeholder"), dom.Src(b.icon(m.Handle)), dom.A("alt", m.Name)}),
				),
				dom.El("div", []dom.Attr{dom.Class("member-info"), dom.ID(string(m.Handle))},
					dom.El("h3", nil, dom.Text(m.Name)),
					dom.If(m.Position != "", para("member-role", m.Position)),
					dom.If(m.Department != "", para("member-department", m.Department)),
					para("member-description", m.Short),
					div("member-links", links),
				),
			),
		),
	)
}

// MemberPage renders one member's profile. body is the rendered profile
// text.
func (s *Site) MemberPage(ctx context.Context, m *content.Member, body string) (*Page, error) {
	b := s.begin(ctx)

	featured := b.Index.FeaturedWorksBy(m.Handle)
	posts := b.Index.PostsBy(m.Handle)
	if len(posts) > recentPosts {
		posts = posts[:recentPosts]
	}
	albums := b.Index.AlbumsWith(m.Handle)

	var featuredList, postList dom.Node
	if len(featured) == 0 {
		featuredList = empty("代表作品がありません。")
	} else {
		featuredList = dom.Map(featured, b.featuredWork)
	}
	if len(posts) == 0 {
		postList = empty("ポストがありません。")
	} else {
		postList = dom.Map(posts, b.postItem)
	}

	var albumList dom.Node
	if len(albums) > 0 {
		albumList = div("member-featured-works",
			dom.El("h3", nil, dom.Text("参加アルバム")),
			container(dom.Map(albums, b.albumCard)),
		)
	}

	var pickups dom.Node
	if len(m.FeaturedWorks) > 0 {
		pickups = div("member-featured-works",
			dom.El("h3", nil, dom.Text("ピックアップ")),
			container(dom.Map(m.FeaturedWorks, func(f content.FeaturedLink) dom.Node {
				return b.bigDisplay(f.Title, f.Description, f.Link)
			})),
		)
	}

	page := dom.El("section", []dom.Attr{dom.ID("member-detail")},
		div("member-detail-container",
			div("member-profile",
				div("member-profile-image",
					dom.El("img", []dom.Attr{dom.Class("img-placeholder"), dom.Src(b.icon(m.Handle)), dom.A("alt", m.Name)}),
				),
				div("member-profile-info",
					dom.El("h2", nil, dom.Text(m.Name)),
					dom.If(m.Position != "", para("member-role", m.Position)),
					dom.If(m.Department != "", para("member-department", m.Department)),
					div("member-bio", dom.Raw(body)),
					div("member-links", b.socialIcons(m.Links)),
				),
			),
		),
		div("member-works-container",
			div("member-featured-works",
				dom.El("h3", nil, dom.Text("代表作品")),
				container(featuredList),
			),
			pickups,
			div("member-featured-works",
				dom.El("h3", nil, dom.Text("最近のポスト")),
				container(postList),
			),
			albumList,
			backButton("members.html", "メンバー一覧に戻る"),
		),
	)

	return b.page(&Page{
		Path: MemberPath(m.Handle),
		Meta: Meta{
			Title:       m.Name + " - " + SiteName,
			Image:       b.icon(m.Handle),
			Canonical:   MemberPath(m.Handle),
			Section:     SectionMemberProfile,
			Description: or(m.Short, markup.Excerpt(m.Body, 150)),
			Author:      string(m.Handle),
		},
		Scripts: []string{MainScript},
		Body:    page,
	})
}

func (b *builder) featuredWork(w *content.Work) dom.Node {
	return dom.El("div", []dom.Attr{dom.Class("work-item-detail"), dom.ID(workAnchor(w))},
		dom.El("h4", nil, dom.Text(w.Title)),
		div("work-youtube-container",
			dom.El("img", []dom.Attr{dom.Class("work-item-thumb"), dom.Src(b.thumbnail(w)), dom.A("alt", w.Title)}),
		),
		div("work-description", para("", w.Short)),
		backButton(WorkPath(w), "詳しく見る"),
	)
}

func (b *builder) postItem(p *content.Post) dom.Node {
	return dom.El("div", []dom.Attr{dom.Class("post-item-detail")},
		div("post-picture-container",
			dom.El("img", []dom.Attr{dom.Class("post-thumb"), dom.Src(b.postImage(p)), dom.A("alt", p.Title)}),
		),
		div("post-details",
			dom.El("h4", nil, dom.El("a", []dom.Attr{dom.Href(PostPath(p))}, dom.Text(p.Title))),
			para("", p.Short),
		),
	)
}

// bigDisplay is a titled embed with an optional description.
func (b *builder) bigDisplay(title, description, link string) dom.Node {
	return div("work-item-detail",
		dom.El("h4", nil, dom.Text(title)),
		div("work-youtube-container", b.embed(link)),
		dom.If(description != "", div("work-description", para("", description))),
	)
}

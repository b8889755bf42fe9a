package view

import (
	"context"
	"fmt"
	"sort"

	"github.com/toudaivocadou/vocadou/internal/content"
	"github.com/toudaivocadou/vocadou/internal/dom"
	"github.com/toudaivocadou/vocadou/internal/embed"
	"github.com/toudaivocadou/vocadou/internal/markup"
	"github.com/toudaivocadou/vocadou/internal/slug"
)

// WorksPage renders the catalogue of releases and albums.
func (s *Site) WorksPage(ctx context.Context) (*Page, error) {
	b := s.begin(ctx)

	body := dom.Group(
		section("hero", container(
			dom.El("h2", nil, dom.Text("リリース")),
			para("", "東京大学ボカロP同好会のメンバーの作品目録です。"),
		)),
		dom.El("section", []dom.Attr{dom.Class("filters")},
			dom.El("a", []dom.Attr{dom.Class("filter-link"), dom.Href("works.html#songs")}, dom.Text("リリース")),
			dom.El("a", []dom.Attr{dom.Class("filter-link"), dom.Href("works.html#albums")}, dom.Text("アルバム")),
		),
		dom.El("section", []dom.Attr{dom.ID("songs"), dom.Class("list")},
			dom.El("h3", nil, dom.Text("リリース")),
			div("listcontainer", dom.Map(b.Index.Works, b.workCard)),
		),
		dom.El("section", []dom.Attr{dom.ID("albums"), dom.Class("list")},
			dom.El("h3", nil, dom.Text("アルバム")),
			div("listcontainer", dom.Map(b.Index.Albums, b.albumCard)),
		),
	)

	return b.page(&Page{
		Path: "works.html",
		Meta: Meta{
			Title:       "リリース - " + SiteName,
			Canonical:   "works.html",
			Section:     SectionWorks,
			Description: SiteName + "のメンバーの作品展示館",
		},
		Body: body,
	})
}

func workAnchor(w *content.Work) string { return slug.Work(w.Title, w.Author) }

// thumbnail picks a preview image: the cover when there is one, the video
// thumbnail for links and the placeholder otherwise.
func (b *builder) thumbnail(w *content.Work) string {
	switch w.Display {
	case content.DisplayCover:
		return b.asset(w.CoverImage)
	case content.DisplayLink:
		t := embed.Thumbnail(w.Link)
		if t == embed.PlaceholderThumbnail {
			return b.asset(Placeholder)
		}
		return t
	default:
		return b.asset(Placeholder)
	}
}

func (b *builder) workCard(w *content.Work) dom.Node {
	kind := "リリース曲"
	if w.IsRemix() {
		kind = "リミックス"
	}

	return div("item-card",
		div("item-type", para("", kind)),
		div("item-image",
			dom.El("img", []dom.Attr{dom.Class("work-item-thumb"), dom.Src(b.thumbnail(w)), dom.A("alt", w.Title)}),
		),
		div("item-title",
			dom.El("h3", nil, dom.El("a", []dom.Attr{dom.Href(WorkPath(w))}, dom.Text(w.Title))),
			para("member-role", w.Date.String()),
			para("member-department", b.name(w.Author)),
			para("", w.Short),
		),
	)
}

func (b *builder) albumCard(a *content.Album) dom.Node {
	return div("item-card",
		div("item-type", para("", "アルバム")),
		div("item-image",
			dom.El("img", []dom.Attr{dom.Class("work-item-thumb"), dom.Src(b.asset(a.FrontCover)), dom.A("alt", a.Title)}),
		),
		div("item-title",
			dom.El("h3", nil, dom.El("a", []dom.Attr{dom.Href(AlbumPath(a))}, dom.Text(a.Title))),
			para("member-role", a.ReleaseDate.String()),
			para("member-department", b.displayNames(a.Contributors)),
			para("", a.Short),
		),
	)
}

// display renders what a work shows at the top of its page: the cover
// image, or the embedded link or audio file.
func (b *builder) display(w *content.Work) dom.Node {
	if w.Display == content.DisplayCover {
		return dom.El("img", []dom.Attr{dom.Src(b.asset(w.CoverImage)), dom.A("alt", or(w.Short, w.Title))})
	}
	return b.embed(w.DisplayTarget())
}

// WorkDisplayHTML renders the display of w on its own, for the works list.
func (s *Site) WorkDisplayHTML(ctx context.Context, w *content.Work) (string, error) {
	b := s.begin(ctx)
	n := b.display(w)
	if b.err != nil {
		return "", b.err
	}
	return dom.Render(ctx, n)
}

// WorkPage renders a release.
func (s *Site) WorkPage(ctx context.Context, w *content.Work, body string) (*Page, error) {
	b := s.begin(ctx)

	credits := []dom.Node{b.memberLink(w.Author)}
	for _, c := range w.Collaborators {
		credits = append(credits, dom.Text(" "), b.memberLink(c))
	}
	for _, c := range w.ExtraCollaborators {
		credits = append(credits, dom.Text(" "+c))
	}

	var streaming dom.Node
	if len(w.Streaming) > 0 {
		streaming = div("work-streaming",
			dom.El("h4", nil, dom.Text("配信")),
			div("social-links", b.socialIcons(w.Streaming)),
		)
	}

	page := dom.Group(
		section("work-section",
			div("work-detail-container",
				div("work-detail",
					div("work-image", b.display(w)),
					div("work-info",
						dom.El("h2", nil, dom.Text(w.Title)),
						div("work-featured-work",
							dom.If(w.Featured, dom.El("h4", nil, dom.Text("このリリースはメンバーページでフィーチャーされています。"))),
						),
						dom.El("p", []dom.Attr{dom.Class("work-credits")}, credits...),
						para("member-role", w.Date.String()),
						dom.If(w.IsRemix(), para("work-remix", "原曲: "+w.RemixOriginalWork)),
						dom.If(w.DurationSeconds > 0, para("work-duration", Duration(w.DurationSeconds))),
						dom.El("hr", nil),
						dom.If(w.Short != "", para("", w.Short)),
						streaming,
					),
				),
			),
			div("work-description", dom.Raw(body)),
		),
		backButton("works.html", "リリース集合一覧に戻る"),
	)

	return b.page(&Page{
		Path: WorkPath(w),
		Meta: Meta{
			Title:       w.Title,
			Image:       b.thumbnail(w),
			Canonical:   WorkPath(w),
			Section:     SectionWorksPost,
			Description: or(w.Short, markup.Excerpt(w.Body, 150)),
			Author:      string(w.Author),
			Date:        w.Date.String(),
		},
		Body: page,
	})
}

// AlbumPage renders an album.
func (s *Site) AlbumPage(ctx context.Context, a *content.Album, body string) (*Page, error) {
	b := s.begin(ctx)

	contributors := make([]dom.Node, 0, len(a.Contributors)+len(a.ExtraContributors))
	for _, c := range a.Contributors {
		contributors = append(contributors, b.memberLink(c), dom.Text(" "))
	}
	for _, c := range a.ExtraContributors {
		contributors = append(contributors, dom.Text(c+" "))
	}

	var crossfade dom.Node
	if a.CrossfadeDemonstration != "" {
		crossfade = b.bigDisplay("試聴動画", "", a.CrossfadeDemonstration)
	}

	var playlist dom.Node
	if a.PlaylistLink != "" {
		playlist = dom.El("p", []dom.Attr{dom.Class("album-playlist")},
			dom.El("a", []dom.Attr{dom.Href(a.PlaylistLink)}, dom.Text("プレイリスト")))
	}

	page := dom.Group(
		section("work-section",
			div("work-detail-container",
				div("work-detail",
					div("work-image",
						dom.El("img", []dom.Attr{dom.Src(b.asset(a.FrontCover)), dom.A("alt", a.Title)}),
						para("work-illustrator", "イラスト: "+b.illustrator(a.FrontCoverIllustrator, a.FrontCoverIllustratorNotOnSite)),
					),
					div("work-info",
						dom.El("h2", nil, dom.Text(a.Title)),
						dom.If(a.Subtitle != "", para("album-subtitle", a.Subtitle)),
						para("member-role", a.ReleaseDate.String()+" / "+string(a.AlbumType)),
						div("work-contributors",
							dom.El("h4", nil, dom.Text("投稿者")),
							dom.El("p", nil, contributors...),
						),
						dom.El("hr", nil),
						para("", a.Short),
						b.tracklist(a),
						b.otherCovers(a),
						crossfade,
						playlist,
						dom.If(len(a.SNSLinks) > 0, div("social-links", b.socialIcons(a.SNSLinks))),
					),
				),
			),
			div("work-description", dom.Raw(body)),
		),
		backButton("works.html", "リリース集合一覧に戻る"),
	)

	return b.page(&Page{
		Path: AlbumPath(a),
		Meta: Meta{
			Title:       a.Title,
			Image:       b.asset(a.FrontCover),
			Canonical:   AlbumPath(a),
			Section:     SectionWorksPost,
			Description: or(a.Short, markup.Excerpt(a.Body, 150)),
			Author:      b.displayNames(a.Contributors),
			Date:        a.ReleaseDate.String(),
		},
		Body: page,
	})
}

func (b *builder) illustrator(name string, notOnSite bool) string {
	if notOnSite {
		return name
	}
	return b.name(content.Handle(name))
}

func (b *builder) tracklist(a *content.Album) dom.Node {
	if len(a.Tracklist) == 0 {
		return nil
	}

	items := make([]dom.Node, len(a.Tracklist))
	for i, t := range a.Tracklist {
		var author dom.Node
		if t.ExternalAuthor {
			author = dom.Text(t.Author)
		} else {
			author = b.memberLink(content.Handle(t.Author))
		}

		var title dom.Node = dom.Text(t.Title)
		switch {
		case t.OnSite:
			title = dom.El("a", []dom.Attr{dom.Href(WorkPath(&content.Work{Title: t.Title, Author: content.Handle(t.Author)}))}, title)
		case t.Link != "":
			title = dom.El("a", []dom.Attr{dom.Href(t.Link)}, title)
		}

		items[i] = dom.El("li", []dom.Attr{dom.Class("album-track")},
			dom.El("span", []dom.Attr{dom.Class("track-title")}, title),
			dom.Text(" / "),
			dom.El("span", []dom.Attr{dom.Class("track-author")}, author),
			dom.If(t.DurationSeconds > 0, dom.El("span", []dom.Attr{dom.Class("track-duration")}, dom.Text(" "+Duration(t.DurationSeconds)))),
		)
	}

	return div("album-tracklist",
		dom.El("h4", nil, dom.Text("収録曲")),
		dom.El("ol", nil, items...),
	)
}

func (b *builder) otherCovers(a *content.Album) dom.Node {
	if len(a.OtherCovers) == 0 {
		return nil
	}

	keys := make([]string, 0, len(a.OtherCovers))
	for name := range a.OtherCovers {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	return div("album-images",
		dom.El("h4", nil, dom.Text("イラスト")),
		dom.Map(keys, func(name string) dom.Node {
			ill := a.OtherCovers[name]
			return div("work-item-detail",
				dom.El("img", []dom.Attr{dom.Src(b.asset(ill.Link)), dom.A("alt", name)}),
				para("work-illustrator", name+": "+b.illustrator(ill.Illustrator, ill.IllustratorIsNotOnSite)),
			)
		}),
	)
}

// Duration formats seconds as m:ss.
func Duration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

package view

import (
	"context"

	"github.com/toudaivocadou/vocadou/internal/dom"
)

const clubDescription = "東京大学ボカロP同好会は、ボーカロイド楽曲の制作を通じて交流するサークルです。"

// latestNews is how many official posts the front page lists.
const latestNews = 3

// IndexPage renders the front page.
func (s *Site) IndexPage(ctx context.Context) (*Page, error) {
	b := s.begin(ctx)

	body := dom.Group(
		section("hero", container(
			dom.El("h2", nil, dom.Text("ボカロ、作ろう。")),
			para("", "ボーカロイド楽曲の制作を通じて交流するサークルです。"),
			dom.El("a", []dom.Attr{dom.Href("join.html#join"), dom.Class("btn")}, dom.Text("入会案内")),
		)),
		section("about", container(
			dom.El("h2", nil, dom.Text("サークル紹介")),
			div("about-content",
				para("", clubDescription),
				para("", "週一の活動では、作曲のアイデアや課題を共有し、フィードバックし合うことで、一人では気づけなかった新しい発見があります。"),
				para("", "さらに、サークルとして活動が広がることで、楽曲がより多くの人に届くチャンスにも繋がります。"),
			),
			div("about-image",
				dom.El("img", []dom.Attr{
					dom.Class("img-placeholder"),
					dom.Src(b.asset(CirclePhoto)),
					dom.A("alt", "サークル活動の様子"),
					dom.A("style", "height: auto"),
				}),
			),
		)),
		section("activities", container(
			dom.El("h2", nil, dom.Text("活動内容")),
			div("activity-list",
				activity("ディスコード上でのオンライン会合", "毎週土曜日 21:00〜", "作品の進捗報告や技術共有、創作のヒントなどを話し合います。"),
				activity("楽曲発表会", "月1回ほど", "主にオフラインで、自分の作った楽曲を共有し、部員間で作曲のノウハウを共有したり、自分の曲にフィードバックを受け取ったりします。"),
				activity("各種レクリエーション", "不定期", "ピクニックやボカロに関するクイズ大会などで交流を深めます。"),
			),
		)),
		section("featured-work", container(
			dom.El("h2", nil, dom.Text("注目作品")),
			para("section-description", "メンバーの作品をランダムにピックアップしてご紹介します。リロードするたびに違う作品が表示されます。"),
			dom.El("div", []dom.Attr{dom.ID("featured-work-container")},
				dom.El("div", []dom.Attr{dom.Class("youtube-embed-container"), dom.ID("embed")}),
				div("featured-work-info",
					dom.El("a", []dom.Attr{dom.Href(""), dom.ID("featured-work-link")},
						dom.El("h3", []dom.Attr{dom.ID("featured-work-title")}, dom.Text("曲名"))),
					dom.El("p", nil,
						dom.Text("制作:"),
						dom.El("a", []dom.Attr{dom.ID("featured-work-creator"), dom.Href("")}, dom.Text("メンバー名"))),
					dom.El("p", []dom.Attr{dom.ID("featured-work-description")}),
					backButton("works.html", "全曲一覧になる"),
					div("back-button", dom.El("p", []dom.Attr{dom.ID("reload")}, dom.Text("曲をリロード"))),
				),
			),
		)),
		b.latestNews(),
	)

	return b.page(&Page{
		Path: "index.html",
		Meta: Meta{
			Title:       SiteTitle,
			Image:       b.asset(CirclePhoto),
			Canonical:   "index.html",
			Section:     SectionHome,
			Description: clubDescription,
		},
		Scripts: []string{MainScript},
		Body:    body,
	})
}

func (b *builder) latestNews() dom.Node {
	posts := b.Index.OfficialPosts()
	if len(posts) == 0 {
		return nil
	}
	if len(posts) > latestNews {
		posts = posts[:latestNews]
	}
	return section("news", container(
		dom.El("h2", nil, dom.Text("最新ニュース")),
		div("listcontainer", dom.Map(posts, b.postCard)),
		backButton("news.html", "ニュース一覧へ"),
	))
}

func activity(title, timeframe, description string) dom.Node {
	return div("activity-item",
		dom.El("h3", nil, dom.Text(title)),
		para("", timeframe),
		para("", description),
	)
}

// JoinPage renders the page for prospective members.
func (s *Site) JoinPage(ctx context.Context) (*Page, error) {
	b := s.begin(ctx)

	body := dom.Group(
		section("hero", container(
			dom.El("h2", nil, dom.Text("ボカロP同好会、入会しよう。")),
			para("", "ボーカロイド楽曲の制作を通じて交流するサークルです。"),
			dom.El("a", []dom.Attr{dom.Href("join.html#join"), dom.Class("btn")}, dom.Text("入会案内")),
		)),
		dom.El("section", []dom.Attr{dom.Class("flex-container")},
			dom.El("h2", nil, dom.Text("メンバー作品")),
			dom.El("div", []dom.Attr{dom.ID("infinite-slider"), dom.Class("carousel")},
				dom.El("div", []dom.Attr{dom.ID("visible-slider-group"), dom.Class("group")}),
				dom.El("div", []dom.Attr{dom.ID("hidden-slider-group"), dom.Flag("aria-hidden"), dom.Class("group")}),
			),
		),
		section("join", container(
			dom.El("h2", nil, dom.Text("入会案内")),
			div("join-info",
				para("", "東京大学の学生であれば、学部・学年を問わず入会できます。音楽制作の経験がなくても大歓迎です！"),
				para("", "入会を希望される方は、下記のXアカウントまでご連絡ください。"),
				dom.El("p", []dom.Attr{dom.Class("contact-email")},
					dom.El("a", []dom.Attr{dom.Href(ClubAccount)}, dom.Text("@toudaivocadou"))),
				para("", "または、新歓期間中の説明会にお越しください。"),
				div("join-details",
					dom.El("h3", nil, dom.Text("説明会情報")),
					para("", "説明会の参加方法や日時に関しましては、公式Xアカウントで随時お知らせいたします。"),
				),
			),
		)),
	)

	return b.page(&Page{
		Path: "join.html",
		Meta: Meta{
			Title:     "入会希望者へ - Joining Vocaloid Producer Club",
			Image:     b.asset(CirclePhoto),
			Canonical: "join.html",
			Section:   SectionJoin,
		},
		Scripts: []string{ScrollScript},
		Body:    body,
	})
}

// NotFoundPage renders the 404 page.
func (s *Site) NotFoundPage(ctx context.Context) (*Page, error) {
	b := s.begin(ctx)

	body := dom.Group(
		section("hero", dom.El("h2", nil, dom.Text("このページは見つかりませんでした。"))),
		section("content", container(
			dom.El("a", []dom.Attr{dom.Href("index.html"), dom.Class("back-button")}, dom.Text("メインページに戻る")),
		)),
	)

	return b.page(&Page{
		Path: "404.html",
		Meta: Meta{
			Title:     "404 - このページは見つかりませんでした。",
			Canonical: "404.html",
			Section:   SectionHome,
		},
		Body: body,
	})
}

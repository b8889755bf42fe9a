package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/toudaivocadou/vocadou/internal/dom"
	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
	"github.com/toudaivocadou/vocadou/internal/logging"
)

// DefaultOEmbedEndpoint is Bluesky's public oEmbed endpoint.
const DefaultOEmbedEndpoint = "https://embed.bsky.app/oembed"

const (
	DefaultTimeout = 5 * time.Second
	twitterWidgets = "https://platform.twitter.com/widgets.js"
	downloadLabel  = "ファイルをダウンロードする"
	maxOEmbedBytes = 1 << 20
)

var (
	imageExtensions = map[string]bool{".png": true, ".jpeg": true, ".jpg": true, ".gif": true, ".avif": true}
	audioExtensions = map[string]bool{".mp3": true, ".ogg": true, ".wav": true}
)

// Resolver maps a local asset reference to its published URL.
type Resolver interface {
	Resolve(ref string) (string, error)
}

// OEmbed is the response of an oEmbed endpoint.
type OEmbed struct {
	Version      string `json:"version"`
	Type         string `json:"type"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Title        string `json:"title,omitempty"`
	URL          string `json:"url,omitempty"`
	AuthorName   string `json:"author_name,omitempty"`
	AuthorURL    string `json:"author_url,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
	ProviderURL  string `json:"provider_url,omitempty"`
	HTML         string `json:"html,omitempty"`
}

// Options configures an Embedder.
type Options struct {
	// Enabled allows network fetches. When false, oEmbed links fall back to
	// plain links without a request.
	Enabled  bool
	Timeout  time.Duration
	Endpoint string
	Client   *http.Client
	Assets   Resolver
	Logger   logging.Logger
}

// Embedder renders links as embedded media.
type Embedder struct {
	enabled  bool
	endpoint string
	client   *http.Client
	assets   Resolver
	logger   logging.Logger

	mu    sync.Mutex
	cache map[string]string
}

// New creates an Embedder.
func New(opts Options) *Embedder {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultOEmbedEndpoint
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	var logger logging.Logger = logging.Nop()
	if opts.Logger != nil {
		logger = opts.Logger
	}

	return &Embedder{
		enabled:  opts.Enabled,
		endpoint: opts.Endpoint,
		client:   client,
		assets:   opts.Assets,
		logger:   logger.WithComponent("embed"),
		cache:    make(map[string]string),
	}
}

// Embed renders link as embedded media. A link that cannot be embedded
// becomes a plain link and a warning, except for a missing local asset,
// which is returned as an error.
func (e *Embedder) Embed(ctx context.Context, link string) (dom.Node, error) {
	n, err := e.Render(ctx, link)
	if err != nil {
		if siteerrors.IsMissingAsset(err) {
			return nil, err
		}
		e.logger.Warn(ctx, err, "Embedding failed, falling back to a plain link", "link", link)
		return PlainLink(link), nil
	}
	return n, nil
}

// HTML is Embed rendered to a string.
func (e *Embedder) HTML(ctx context.Context, link string) (string, error) {
	n, err := e.Embed(ctx, link)
	if err != nil {
		return "", err
	}
	s, err := dom.Render(ctx, n)
	if err != nil {
		return dom.MustRender(PlainLink(link)), nil
	}
	return s, nil
}

// PlainLink is the fallback for links that cannot be embedded.
func PlainLink(link string) dom.Node {
	return dom.El("a", []dom.Attr{dom.Href(link)}, dom.Text(link))
}

// Render is the strict form of Embed.
func (e *Embedder) Render(ctx context.Context, link string) (dom.Node, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, siteerrors.NewExternalError("empty embed link", nil)
	}

	u, err := url.Parse(link)
	if err != nil {
		return nil, siteerrors.NewExternalError("invalid embed link", err).WithField("link", link)
	}

	ext := strings.ToLower(path.Ext(u.Path))
	switch {
	case imageExtensions[ext]:
		src, err := e.media(link)
		if err != nil {
			return nil, err
		}
		return dom.El("img", []dom.Attr{dom.Src(src), dom.A("alt", path.Base(u.Path))}), nil
	case audioExtensions[ext]:
		src, err := e.media(link)
		if err != nil {
			return nil, err
		}
		return Audio(src), nil
	}

	t, err := Classify(link)
	if err != nil {
		return nil, siteerrors.NewExternalError("unsupported embed link", err).WithField("link", link)
	}

	switch t {
	case Twitter, X:
		return Tweet(link), nil
	case YouTube:
		id, ok := YouTubeID(u)
		if !ok {
			return nil, siteerrors.NewExternalError("YouTube link has no video id", nil).WithField("link", link)
		}
		return YouTubeFrame(id), nil
	case Niconico:
		id, ok := NiconicoID(u)
		if !ok {
			return nil, siteerrors.NewExternalError("Niconico link has no video id", nil).WithField("link", link)
		}
		return NiconicoFrame(id), nil
	case Bluesky:
		html, err := e.bluesky(ctx, link)
		if err != nil {
			return nil, err
		}
		return dom.Raw(html), nil
	default:
		return nil, siteerrors.NewExternalError(fmt.Sprintf("no embed for %s links", t), nil).WithField("link", link)
	}
}

func (e *Embedder) media(link string) (string, error) {
	if e.assets == nil || strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link, nil
	}
	return e.assets.Resolve(link)
}

// Audio is a player with a download link.
func Audio(src string) dom.Node {
	return dom.El("figure", nil,
		dom.El("audio", []dom.Attr{dom.Flag("controls"), dom.Src(src)}),
		dom.El("a", []dom.Attr{dom.Href(src)}, dom.Text(downloadLabel)),
	)
}

// Tweet is the blockquote picked up by the Twitter widgets script.
func Tweet(link string) dom.Node {
	return dom.El("blockquote", []dom.Attr{dom.Class("twitter-tweet")},
		dom.El("a", []dom.Attr{dom.Href(link)}, dom.Text(link)),
		dom.El("script", []dom.Attr{dom.Flag("async"), dom.Src(twitterWidgets), dom.A("charset", "utf-8")}),
	)
}

// YouTubeFrame embeds a YouTube video.
func YouTubeFrame(id string) dom.Node {
	return dom.El("div", []dom.Attr{dom.Class("youtube-embed-container")},
		dom.El("iframe", []dom.Attr{
			dom.A("width", "640"),
			dom.A("height", "360"),
			dom.Src("https://www.youtube.com/embed/" + url.PathEscape(id)),
			dom.A("title", "YouTube video player"),
			dom.A("frameborder", "0"),
			dom.A("allow", "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share"),
			dom.A("referrerpolicy", "strict-origin-when-cross-origin"),
			dom.Flag("allowfullscreen"),
		}),
	)
}

// NiconicoFrame embeds a Niconico video.
func NiconicoFrame(id string) dom.Node {
	return dom.El("div", []dom.Attr{dom.Class("niconico-embed-container")},
		dom.El("iframe", []dom.Attr{
			dom.A("width", "640"),
			dom.A("height", "360"),
			dom.Src("https://embed.nicovideo.jp/watch/" + url.PathEscape(id)),
			dom.A("frameborder", "0"),
			dom.A("allow", "autoplay; fullscreen"),
			dom.Flag("allowfullscreen"),
		}),
	)
}

func (e *Embedder) bluesky(ctx context.Context, link string) (string, error) {
	e.mu.Lock()
	cached, ok := e.cache[link]
	e.mu.Unlock()
	if ok {
		return cached, nil
	}

	if !e.enabled {
		return "", siteerrors.NewExternalError("network embeds are disabled", nil).WithField("link", link)
	}

	oe, err := e.FetchOEmbed(ctx, link)
	if err != nil {
		return "", err
	}

	html := oe.HTML
	if html == "" {
		if oe.URL == "" {
			return "", siteerrors.NewExternalError("oEmbed response has neither html nor url", nil).WithField("link", link)
		}
		html = dom.MustRender(dom.El("a", []dom.Attr{dom.Href(link)},
			dom.El("img", []dom.Attr{dom.Src(oe.URL), dom.A("alt", link)})))
	}

	e.mu.Lock()
	e.cache[link] = html
	e.mu.Unlock()
	return html, nil
}

// FetchOEmbed queries the oEmbed endpoint for link.
func (e *Embedder) FetchOEmbed(ctx context.Context, link string) (*OEmbed, error) {
	endpoint := e.endpoint + "?url=" + url.QueryEscape(link)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, siteerrors.NewExternalError("failed to build oEmbed request", err).WithField("link", link)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, siteerrors.NewExternalError("oEmbed request failed", err).WithField("link", link)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, siteerrors.NewExternalError(fmt.Sprintf("oEmbed endpoint returned %d", resp.StatusCode), nil).
			WithField("link", link)
	}

	var oe OEmbed
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxOEmbedBytes)).Decode(&oe); err != nil {
		return nil, siteerrors.NewExternalError("invalid oEmbed response", err).WithField("link", link)
	}
	return &oe, nil
}

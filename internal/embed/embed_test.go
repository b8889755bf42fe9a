package embed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toudaivocadou/vocadou/internal/dom"
	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		link string
		want LinkType
		icon string
	}{
		{"https://twitter.com/alice", Twitter, "twitter.svg"},
		{"https://x.com/alice/status/1", X, "twitter.svg"},
		{"https://bsky.app/profile/alice.bsky.social", Bluesky, "bluesky.svg"},
		{"https://www.youtube.com/watch?v=abc", YouTube, "youtube.svg"},
		{"https://m.youtube.com/watch?v=abc", YouTube, "youtube.svg"},
		{"https://youtu.be/abc", YouTube, "youtube.svg"},
		{"https://www.nicovideo.jp/watch/sm123", Niconico, "niconico.svg"},
		{"https://soundcloud.com/alice", SoundCloud, "soundcloud.svg"},
		{"https://github.com/alice", GitHub, "github.svg"},
		{"https://linktr.ee/alice", Linktree, "linktree.svg"},
		{"https://open.spotify.com/artist/1", Spotify, "spotify.svg"},
		{"https://www.tiktok.com/@alice", TikTok, "tiktok.svg"},
		{"https://instagram.com/alice", Instagram, "instagram.svg"},
		{"https://alice.example.org", Other, "link.svg"},
		{"HTTPS://WWW.YOUTUBE.COM/watch?v=abc", YouTube, "youtube.svg"},
	}

	for _, tc := range testCases {
		t.Run(tc.link, func(t *testing.T) {
			got, err := Classify(tc.link)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.icon, got.Icon())
		})
	}

	_, err := Classify("not a url")
	assert.Error(t, err)
	assert.Equal(t, "assets/social_icons/link.svg", IconPath("not a url"))
}

func TestThumbnail(t *testing.T) {
	assert.Equal(t, "https://img.youtube.com/vi/abc/maxresdefault.jpg", Thumbnail("https://www.youtube.com/watch?v=abc"))
	assert.Equal(t, "https://img.youtube.com/vi/xyz/maxresdefault.jpg", Thumbnail("https://youtu.be/xyz"))
	assert.Equal(t, PlaceholderThumbnail, Thumbnail("https://www.youtube.com/channel/UC1"))
	assert.Equal(t, PlaceholderThumbnail, Thumbnail("https://www.nicovideo.jp/watch/sm1"))
	assert.Equal(t, PlaceholderThumbnail, Thumbnail(""))
}

type stubResolver map[string]string

func (r stubResolver) Resolve(ref string) (string, error) {
	if u, ok := r[ref]; ok {
		return u, nil
	}
	return "", siteerrors.NewMissingAssetError(ref)
}

func render(t *testing.T, e *Embedder, link string) string {
	t.Helper()
	n, err := e.Render(context.Background(), link)
	require.NoError(t, err)
	return dom.MustRender(n)
}

func TestRenderStatic(t *testing.T) {
	e := New(Options{Assets: stubResolver{"images/cover.png": "/hash/00000000000000aa.png"}})

	assert.Equal(t, `<img src="/hash/00000000000000aa.png" alt="cover.png">`, render(t, e, "images/cover.png"))
	assert.Equal(t, `<img src="https://example.org/a.jpg" alt="a.jpg">`, render(t, e, "https://example.org/a.jpg"))

	assert.Equal(t,
		`<figure><audio controls src="https://miku.example.org/a.ogg"></audio><a href="https://miku.example.org/a.ogg">ファイルをダウンロードする</a></figure>`,
		render(t, e, "https://miku.example.org/a.ogg"))

	yt := render(t, e, "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10")
	assert.Contains(t, yt, `class="youtube-embed-container"`)
	assert.Contains(t, yt, `src="https://www.youtube.com/embed/dQw4w9WgXcQ"`)
	assert.Contains(t, yt, `referrerpolicy="strict-origin-when-cross-origin"`)
	assert.Contains(t, yt, "allowfullscreen")

	nico := render(t, e, "https://www.nicovideo.jp/watch/sm9")
	assert.Contains(t, nico, `src="https://embed.nicovideo.jp/watch/sm9"`)

	tweet := render(t, e, "https://x.com/alice/status/1")
	assert.Contains(t, tweet, `<blockquote class="twitter-tweet"><a href="https://x.com/alice/status/1">`)
	assert.Contains(t, tweet, "https://platform.twitter.com/widgets.js")
}

func TestRenderFailures(t *testing.T) {
	e := New(Options{Assets: stubResolver{}})
	for _, link := range []string{
		"",
		"https://github.com/alice",
		"https://www.youtube.com/channel/UC1",
		"https://www.nicovideo.jp/user/1",
		"images/missing.png",
		"/relative/page",
	} {
		_, err := e.Render(context.Background(), link)
		assert.Error(t, err, link)
	}
}

func TestEmbedFallsBackToPlainLink(t *testing.T) {
	e := New(Options{})
	assert.Equal(t,
		`<a href="https://github.com/alice">https://github.com/alice</a>`,
		mustHTML(t, e, "https://github.com/alice"))
}

func mustHTML(t *testing.T, e *Embedder, link string) string {
	t.Helper()
	s, err := e.HTML(context.Background(), link)
	require.NoError(t, err, link)
	return s
}

func TestEmbedMissingLocalAsset(t *testing.T) {
	e := New(Options{Assets: stubResolver{}})
	for _, link := range []string{"images/missing.png", "audio/missing.ogg"} {
		_, err := e.Embed(context.Background(), link)
		require.Error(t, err, link)
		assert.True(t, siteerrors.IsMissingAsset(err), link)

		_, err = e.HTML(context.Background(), link)
		assert.True(t, siteerrors.IsMissingAsset(err), link)
	}
}

func newOEmbedServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

const post = "https://bsky.app/profile/alice.bsky.social/post/3k"

func TestBlueskyOEmbed(t *testing.T) {
	srv, calls := newOEmbedServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, post, r.URL.Query().Get("url"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"1.0","type":"rich","html":"<blockquote class=\"bluesky-embed\">hi</blockquote>"}`))
	})

	e := New(Options{Enabled: true, Endpoint: srv.URL})
	assert.Equal(t, `<blockquote class="bluesky-embed">hi</blockquote>`, mustHTML(t, e, post))
	assert.Equal(t, `<blockquote class="bluesky-embed">hi</blockquote>`, mustHTML(t, e, post))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls), "responses are cached per link")
}

func TestBlueskyOEmbedURLFallback(t *testing.T) {
	srv, _ := newOEmbedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"version":"1.0","type":"photo","url":"https://cdn.bsky.app/img.jpg"}`))
	})

	e := New(Options{Enabled: true, Endpoint: srv.URL})
	assert.Equal(t,
		`<a href="`+post+`"><img src="https://cdn.bsky.app/img.jpg" alt="`+post+`"></a>`,
		mustHTML(t, e, post))
}

func TestBlueskyOEmbedFailures(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		enabled bool
		timeout time.Duration
	}{
		{
			name:    "non-200",
			enabled: true,
			handler: func(w http.ResponseWriter, _ *http.Request) { http.Error(w, "nope", http.StatusNotFound) },
		},
		{
			name:    "bad json",
			enabled: true,
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("{")) },
		},
		{
			name:    "empty response",
			enabled: true,
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"version":"1.0"}`)) },
		},
		{
			name:    "timeout",
			enabled: true,
			timeout: 20 * time.Millisecond,
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(time.Second):
				}
			},
		},
		{
			name:    "disabled",
			enabled: false,
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"html":"x"}`)) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, calls := newOEmbedServer(t, tc.handler)
			e := New(Options{Enabled: tc.enabled, Endpoint: srv.URL, Timeout: tc.timeout})

			_, err := e.Render(context.Background(), post)
			require.Error(t, err)
			assert.True(t, siteerrors.IsRecoverable(err))

			assert.Equal(t, `<a href="`+post+`">`+post+`</a>`, mustHTML(t, e, post))
			if !tc.enabled {
				assert.Zero(t, atomic.LoadInt32(calls))
			}
		})
	}
}

func TestFetchOEmbedHonoursContext(t *testing.T) {
	srv, _ := newOEmbedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"html":"x"}`))
	})
	e := New(Options{Enabled: true, Endpoint: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.FetchOEmbed(ctx, post)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

package assets

import (
	"context"
	"fmt"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
)

func fixture(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"styles/main.css":                 "body{}",
		"styles/nested/skip.css":          "not scanned",
		"js/script.js":                    "console.log(1)",
		"images/gray.jpg":                 "gray",
		"images/icon/alice.jpg":           "alice",
		"images/readme.txt":               "ignored",
		"assets/social_icons/twitter.svg": "<svg/>",
		"audio/demo song.ogg":             "ogg",
	}
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0o644))
	}
	return fs
}

func TestScan(t *testing.T) {
	c, err := Scan(context.Background(), fixture(t), Options{ExternalURLRoot: "https://cdn.example.org/"})
	require.NoError(t, err)

	var sources []string
	for _, a := range c.Assets() {
		sources = append(sources, a.Source)
	}
	assert.Equal(t, []string{
		"assets/social_icons/twitter.svg",
		"audio/demo song.ogg",
		"images/gray.jpg",
		"images/icon/alice.jpg",
		"js/script.js",
		"styles/main.css",
	}, sources)

	css, ok := c.Lookup("styles/main.css")
	require.True(t, ok)
	assert.Equal(t, KindStyle, css.Kind)
	assert.Equal(t, fmt.Sprintf("%016x", xxhash.Sum64String("body{}")), css.Hash)
	assert.Equal(t, "/hash/"+css.Hash+".css", css.URL)

	audio, ok := c.Lookup("audio/demo song.ogg")
	require.True(t, ok)
	assert.True(t, audio.External())
	assert.Equal(t, "https://cdn.example.org/audio/demo%20song.ogg", audio.URL)
	assert.Empty(t, audio.OutputPath())
}

func TestResolve(t *testing.T) {
	c, err := Scan(context.Background(), fixture(t), Options{ExternalURLRoot: "https://cdn.example.org"})
	require.NoError(t, err)

	testCases := []struct {
		ref     string
		wantErr bool
		want    string
	}{
		{ref: "images/gray.jpg"},
		{ref: "/images/gray.jpg"},
		{ref: "./images/gray.jpg"},
		{ref: "images/../images/gray.jpg"},
		{ref: "https://img.youtube.com/vi/x/maxresdefault.jpg", want: "https://img.youtube.com/vi/x/maxresdefault.jpg"},
		{ref: "images/missing.jpg", wantErr: true},
		{ref: "images/readme.txt", wantErr: true},
		{ref: "styles/nested/skip.css", wantErr: true},
	}

	gray, _ := c.Lookup("images/gray.jpg")
	for _, tc := range testCases {
		t.Run(tc.ref, func(t *testing.T) {
			got, err := c.Resolve(tc.ref)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, siteerrors.IsMissingAsset(err))
				assert.Contains(t, err.Error(), tc.ref)
				return
			}
			require.NoError(t, err)
			want := tc.want
			if want == "" {
				want = gray.URL
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestPublish(t *testing.T) {
	c, err := Scan(context.Background(), fixture(t), Options{})
	require.NoError(t, err)

	out := afero.NewMemMapFs()
	n, err := c.Publish(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, 5, n, "audio is not published")

	js, _ := c.Lookup("js/script.js")
	data, err := afero.ReadFile(out, js.OutputPath())
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)", string(data))

	n, err = c.Publish(context.Background(), out)
	require.NoError(t, err)
	assert.Zero(t, n, "unchanged assets are not rewritten")
}

func TestScanMissingDirectories(t *testing.T) {
	c, err := Scan(context.Background(), afero.NewMemMapFs(), Options{})
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}

func TestHashCacheReuse(t *testing.T) {
	fs := fixture(t)
	cache := NewHashCache()

	_, err := Scan(context.Background(), fs, Options{Hashes: cache})
	require.NoError(t, err)
	assert.Zero(t, cache.Hits())
	assert.Equal(t, int64(6), cache.Misses())

	_, err = Scan(context.Background(), fs, Options{Hashes: cache})
	require.NoError(t, err)
	assert.Equal(t, int64(6), cache.Hits())
	assert.Equal(t, 6, cache.Len())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "images/a.jpg", Normalize(" /images/a.jpg "))
	assert.Equal(t, "images/a.jpg", Normalize("./images/./a.jpg"))
	assert.True(t, IsAbsoluteURL("https://x.org/a.jpg"))
	assert.False(t, IsAbsoluteURL("//x.org/a.jpg"))
	assert.False(t, IsAbsoluteURL("images/a.jpg"))
}

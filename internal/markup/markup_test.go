package markup

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toudaivocadou/vocadou/internal/content"
	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
	"github.com/toudaivocadou/vocadou/internal/names"
)

type stubAssets map[string]string

func (s stubAssets) Resolve(ref string) (string, error) {
	if strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	if u, ok := s[ref]; ok {
		return u, nil
	}
	return "", siteerrors.NewMissingAssetError(ref)
}

type stubEmbedder struct{ links []string }

func (s *stubEmbedder) HTML(_ context.Context, link string) (string, error) {
	s.links = append(s.links, link)
	if strings.HasPrefix(link, "images/missing") {
		return "", siteerrors.NewMissingAssetError(link)
	}
	return `<div class="embed">` + link + `</div>`, nil
}

func newRenderer(t *testing.T) (*Renderer, *stubEmbedder) {
	t.Helper()
	table, err := names.Build([]*content.Member{
		{Source: content.Source{Path: "members/alice.md"}, Handle: "alice", Name: "Alice & Co"},
		{Source: content.Source{Path: "members/bob.md"}, Handle: "bob", Name: "ボブ"},
	})
	require.NoError(t, err)

	emb := &stubEmbedder{}
	return New(table, stubAssets{"images/a.jpg": "/hash/0000000000000001.jpg"}, emb), emb
}

func TestRenderMarkdown(t *testing.T) {
	r, _ := newRenderer(t)

	out, err := r.Render(context.Background(), "posts/p.md", "# Title\n\nHello *world*.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.Contains(t, out, "<em>world</em>")
	assert.Contains(t, out, "<table>")
}

func TestRenderRawHTML(t *testing.T) {
	r, _ := newRenderer(t)

	out, err := r.Render(context.Background(), "posts/p.md", "<div class=\"note\">raw</div>\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="note">raw</div>`)
}

func TestMemberFunction(t *testing.T) {
	r, _ := newRenderer(t)

	out, err := r.Expand(context.Background(), "posts/p.md", `with {{member "alice"}} and {{ member "bob" }}`)
	require.NoError(t, err)
	assert.Equal(t,
		`with <a href="members/alice.html">Alice &amp; Co</a> and <a href="members/bob.html">ボブ</a>`,
		out)
}

func TestMemberFunctionUnknownHandle(t *testing.T) {
	r, _ := newRenderer(t)

	_, err := r.Render(context.Background(), "posts/p.md", `{{member "Alice"}}`)
	require.Error(t, err)
	assert.True(t, siteerrors.IsUnresolvedReference(err))
	assert.Contains(t, err.Error(), "posts/p.md")
	assert.Contains(t, err.Error(), `did you mean "alice"?`)
}

func TestEmbedFunction(t *testing.T) {
	r, emb := newRenderer(t)

	out, err := r.Render(context.Background(), "works/w.md", "Listen:\n\n{{embed \"https://youtu.be/abc\"}}\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="embed">https://youtu.be/abc</div>`)
	assert.Equal(t, []string{"https://youtu.be/abc"}, emb.links)
}

func TestEmbedFunctionMissingAsset(t *testing.T) {
	r, _ := newRenderer(t)

	_, err := r.Render(context.Background(), "posts/p.md", "{{embed \"images/missing.png\"}}\n")
	require.Error(t, err)
	assert.True(t, siteerrors.IsMissingAsset(err))
	se, ok := siteerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "posts/p.md", se.File)
}

func TestTemplateErrors(t *testing.T) {
	r, _ := newRenderer(t)

	_, err := r.Render(context.Background(), "posts/p.md", "{{member")
	require.Error(t, err)
	se, ok := siteerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, siteerrors.ErrCodeTemplateFailed, se.Code)
	assert.Equal(t, "posts/p.md", se.File)

	_, err = r.Render(context.Background(), "posts/p.md", "{{nosuchfunc 1}}")
	assert.Error(t, err)
}

func TestImageDestinations(t *testing.T) {
	r, _ := newRenderer(t)

	out, err := r.Render(context.Background(), "posts/p.md", "![cover](images/a.jpg)\n\n![remote](https://example.org/x.png)\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<img src="/hash/0000000000000001.jpg" alt="cover">`)
	assert.Contains(t, out, `<img src="https://example.org/x.png" alt="remote">`)
}

func TestMissingImage(t *testing.T) {
	r, _ := newRenderer(t)

	_, err := r.Render(context.Background(), "posts/p.md", "text\n\n![gone](images/gone.jpg)\n")
	require.Error(t, err)
	assert.True(t, siteerrors.IsMissingAsset(err))
	se, _ := siteerrors.As(err)
	assert.Equal(t, "posts/p.md", se.File)
}

func TestExcerpt(t *testing.T) {
	src := "# Heading\n\n![img](a.jpg)\n\nFirst   paragraph\nwraps here.\n\nSecond."
	assert.Equal(t, "First paragraph wraps here.", Excerpt(src, 100))
	assert.Equal(t, "First…", Excerpt(src, 5))
	assert.Empty(t, Excerpt("# only a heading", 10))
}

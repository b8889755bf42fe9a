// Package markup turns content bodies into HTML.
//
// A body is first executed as a text/template, which lets authors link
// members and embed media, and the result is then rendered as Markdown.
package markup

import (
	"bytes"
	"context"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/toudaivocadou/vocadou/internal/content"
	"github.com/toudaivocadou/vocadou/internal/dom"
	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
	"github.com/toudaivocadou/vocadou/internal/names"
)

// Resolver maps an image reference to its published URL.
type Resolver interface {
	Resolve(ref string) (string, error)
}

// Embedder renders a link as embedded media. Only a missing local asset
// is reported as an error.
type Embedder interface {
	HTML(ctx context.Context, link string) (string, error)
}

// MemberPath is the site-relative page of a member.
func MemberPath(h content.Handle) string {
	return "members/" + string(h) + ".html"
}

// Renderer renders bodies. It is safe for concurrent use once built.
type Renderer struct {
	md       goldmark.Markdown
	table    *names.Table
	embedder Embedder
}

// New creates a Renderer. Images are resolved through assets, members
// through table and embeds through embedder.
func New(table *names.Table, assets Resolver, embedder Embedder) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(&imageTransformer{assets: assets}, 100)),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	return &Renderer{md: md, table: table, embedder: embedder}
}

// Render executes body as a template and renders the result as Markdown.
// file is used in error messages.
func (r *Renderer) Render(ctx context.Context, file, body string) (string, error) {
	expanded, err := r.Expand(ctx, file, body)
	if err != nil {
		return "", err
	}
	return r.Markdown(file, expanded)
}

// Expand executes body as a text/template with the member and embed
// functions.
func (r *Renderer) Expand(ctx context.Context, file, body string) (string, error) {
	if !strings.Contains(body, "{{") {
		return body, nil
	}

	funcs := template.FuncMap{
		"member": func(handle string) (string, error) {
			return r.memberLink(file, content.Handle(handle))
		},
		"embed": func(link string) (string, error) {
			return r.embed(ctx, file, link)
		},
	}

	tmpl, err := template.New(file).Funcs(funcs).Option("missingkey=error").Parse(body)
	if err != nil {
		return "", siteerrors.NewRenderError(siteerrors.ErrCodeTemplateFailed, file, "failed to parse body template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		// Unknown members surface as the unresolved reference itself.
		if se, ok := siteerrors.As(err); ok {
			return "", se
		}
		return "", siteerrors.NewRenderError(siteerrors.ErrCodeTemplateFailed, file, "failed to execute body template", err)
	}
	return buf.String(), nil
}

func (r *Renderer) memberLink(file string, h content.Handle) (string, error) {
	name, ok := r.table.Lookup(h)
	if !ok {
		return "", siteerrors.NewUnresolvedError(siteerrors.ErrCodeUnknownHandle, file, "body.member", string(h)).
			WithHint(siteerrors.UnresolvedHandleHint(string(h), r.table.Suggest(h), ""))
	}
	return dom.MustRender(dom.El("a", []dom.Attr{dom.Href(MemberPath(h))}, dom.Text(name))), nil
}

func (r *Renderer) embed(ctx context.Context, file, link string) (string, error) {
	if r.embedder == nil {
		return dom.MustRender(dom.El("a", []dom.Attr{dom.Href(link)}, dom.Text(link))), nil
	}
	s, err := r.embedder.HTML(ctx, link)
	if err != nil {
		if se, ok := siteerrors.As(err); ok && se.File == "" {
			se.File = file
			se.Field = "body.embed"
		}
		return "", err
	}
	return s, nil
}

// Markdown renders src without template expansion.
func (r *Renderer) Markdown(file, src string) (string, error) {
	source := []byte(src)
	pc := parser.NewContext()
	doc := r.md.Parser().Parse(text.NewReader(source), parser.WithContext(pc))

	if v := pc.Get(imageErrorKey); v != nil {
		err := v.(error)
		if se, ok := siteerrors.As(err); ok && se.File == "" {
			se.WithFile(file)
		}
		return "", err
	}

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, doc); err != nil {
		return "", siteerrors.NewRenderError(siteerrors.ErrCodeMarkdownFailed, file, "failed to render markdown", err)
	}
	return buf.String(), nil
}

var imageErrorKey = parser.NewContextKey()

// imageTransformer points every image at its published asset. The first
// unresolvable image is stored in the parser context.
type imageTransformer struct {
	assets Resolver
}

func (t *imageTransformer) Transform(doc *ast.Document, _ text.Reader, pc parser.Context) {
	if t.assets == nil {
		return
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}

		resolved, err := t.assets.Resolve(string(img.Destination))
		if err != nil {
			pc.Set(imageErrorKey, err)
			return ast.WalkStop, nil
		}
		img.Destination = []byte(resolved)
		return ast.WalkContinue, nil
	})
}

// Excerpt is the first paragraph of src as plain text, cut to limit runes.
func Excerpt(src string, limit int) string {
	for _, para := range strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" || strings.HasPrefix(para, "#") || strings.HasPrefix(para, "{{") || strings.HasPrefix(para, "![") {
			continue
		}
		para = strings.Join(strings.Fields(para), " ")
		runes := []rune(para)
		if len(runes) > limit {
			return string(runes[:limit]) + "…"
		}
		return para
	}
	return ""
}

// Package rewrite makes the links in rendered pages absolute.
package rewrite

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	siteerrors "github.com/toudaivocadou/vocadou/internal/errors"
)

var linkAttributes = map[string]bool{
	"href":   true,
	"src":    true,
	"poster": true,
}

var keptSchemes = []string{"mailto:", "tel:", "data:", "javascript:"}

// Rewriter resolves site-relative references against the site URL.
type Rewriter struct {
	base *url.URL
}

// New creates a Rewriter for siteURL, which must be an absolute http(s) URL.
func New(siteURL string) (*Rewriter, error) {
	u, err := url.Parse(strings.TrimSpace(siteURL))
	if err != nil {
		return nil, siteerrors.NewConfigError("site_url", "invalid site URL").WithField("site_url", siteURL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, siteerrors.NewConfigError("site_url", "site URL must be an absolute http(s) URL").WithField("site_url", siteURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery, u.Fragment = "", ""
	return &Rewriter{base: u}, nil
}

// Base returns the site URL with a trailing slash.
func (r *Rewriter) Base() string { return r.base.String() }

// URL returns ref as an absolute URL. References that are already absolute
// or that do not name a location on the site are returned unchanged.
func (r *Rewriter) URL(ref string) string {
	if skip(ref) {
		return ref
	}
	rel, err := url.Parse(strings.TrimPrefix(ref, "/"))
	if err != nil {
		return ref
	}
	return r.base.ResolveReference(rel).String()
}

func skip(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return true
	}
	lower := strings.ToLower(ref)
	for _, s := range keptSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	u, err := url.Parse(ref)
	return err == nil && u.Scheme != ""
}

// SrcSet rewrites the URL of every candidate in a srcset value and keeps
// the width and density descriptors.
func (r *Rewriter) SrcSet(set string) string {
	candidates := strings.Split(set, ",")
	for i, c := range candidates {
		fields := strings.Fields(c)
		if len(fields) == 0 {
			continue
		}
		fields[0] = r.URL(fields[0])
		candidates[i] = strings.Join(fields, " ")
	}
	return strings.Join(candidates, ", ")
}

// Rewrite parses page, rewrites every relative href, src, poster and srcset
// attribute and renders it back. file is used in error messages.
func (r *Rewriter) Rewrite(file string, page []byte) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, siteerrors.NewRenderError(siteerrors.ErrCodeLinkRewriteFailed, file, "failed to parse page", err)
	}

	r.walk(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, siteerrors.NewRenderError(siteerrors.ErrCodeLinkRewriteFailed, file, "failed to render page", err)
	}
	return buf.Bytes(), nil
}

// RewriteFragment is Rewrite for a fragment of body content.
func (r *Rewriter) RewriteFragment(file, fragment string) (string, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return "", siteerrors.NewRenderError(siteerrors.ErrCodeLinkRewriteFailed, file, "failed to parse fragment", err)
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		r.walk(n)
		if err := html.Render(&buf, n); err != nil {
			return "", siteerrors.NewRenderError(siteerrors.ErrCodeLinkRewriteFailed, file, "failed to render fragment", err)
		}
	}
	return buf.String(), nil
}

func (r *Rewriter) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		for i, a := range n.Attr {
			switch {
			case a.Namespace != "":
			case linkAttributes[a.Key]:
				n.Attr[i].Val = r.URL(a.Val)
			case a.Key == "srcset":
				n.Attr[i].Val = r.SrcSet(a.Val)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
}

// Links returns every href, src and poster value in page, for checks.
func Links(page []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	var out []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if linkAttributes[a.Key] {
					out = append(out, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return out, nil
}

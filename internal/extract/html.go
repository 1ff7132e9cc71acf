package extract

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mementolab/driftwatch/internal/dataset"
	"github.com/mementolab/driftwatch/pkg/errors"
)

// skipElements are subtrees that never contribute article text.
var skipElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Iframe:   true,
	atom.Nav:      true,
	atom.Footer:   true,
	atom.Aside:    true,
	atom.Form:     true,
}

// wayback replay chrome injected into archived pages.
var skipIDs = map[string]bool{
	"wm-ipp":      true,
	"wm-ipp-base": true,
	"donato":      true,
}

// FromHTML parses an archived page and extracts the article content.
// The title comes from og:title or <title>; authors from author meta
// tags; the body from <p> elements, preferring those inside <article>.
func FromHTML(body string) (dataset.Article, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return dataset.Article{}, errors.NewParseError("html", "", "parse archived page", err)
	}

	p := &pageParser{}
	p.walk(doc, false)

	article := dataset.Article{
		Title:   p.title(),
		Authors: p.authors,
	}
	if len(p.articleParagraphs) > 0 {
		article.Text = strings.Join(p.articleParagraphs, "\n\n")
	} else {
		article.Text = strings.Join(p.paragraphs, "\n\n")
	}
	return article, nil
}

type pageParser struct {
	docTitle          string
	ogTitle           string
	authors           []string
	paragraphs        []string
	articleParagraphs []string
}

func (p *pageParser) title() string {
	if p.ogTitle != "" {
		return p.ogTitle
	}
	return p.docTitle
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func (p *pageParser) walk(n *html.Node, inArticle bool) {
	if n.Type == html.ElementNode {
		if skipElements[n.DataAtom] || skipIDs[attr(n, "id")] {
			return
		}
		switch n.DataAtom {
		case atom.Title:
			p.docTitle = strings.TrimSpace(textContent(n))
		case atom.Meta:
			p.meta(n)
		case atom.Article:
			inArticle = true
		case atom.P:
			text := strings.TrimSpace(collapseSpace(textContent(n)))
			if text != "" {
				p.paragraphs = append(p.paragraphs, text)
				if inArticle {
					p.articleParagraphs = append(p.articleParagraphs, text)
				}
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, inArticle)
	}
}

func (p *pageParser) meta(n *html.Node) {
	name := attr(n, "name")
	property := attr(n, "property")
	content := strings.TrimSpace(attr(n, "content"))
	if content == "" {
		return
	}
	switch {
	case property == "og:title":
		p.ogTitle = content
	case name == "author" || property == "article:author" || name == "byl":
		p.addAuthors(content)
	}
}

func (p *pageParser) addAuthors(content string) {
	content = strings.TrimPrefix(content, "By ")
	parts := strings.FieldsFunc(content, func(r rune) bool {
		return r == ',' || r == ';'
	})
	var names []string
	for _, part := range parts {
		names = append(names, strings.Split(part, " and ")...)
	}
	for _, part := range names {
		name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "and "))
		if name == "" {
			continue
		}
		seen := false
		for _, a := range p.authors {
			if strings.EqualFold(a, name) {
				seen = true
				break
			}
		}
		if !seen {
			p.authors = append(p.authors, name)
		}
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && skipElements[n.DataAtom] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

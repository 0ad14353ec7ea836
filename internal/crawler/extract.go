package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// paragraph is the text of the i-th <p> element of a page.
type paragraph struct {
	Index int
	Text  string
}

// page is everything extracted from one HTML document.
type page struct {
	Paragraphs []paragraph // non-empty paragraphs only
	Files      []FileLink
	Tables     []Table
	Links      []string // every resolved href, in document order
}

// extract pulls paragraphs, file links, tables and outgoing links from doc.
// Relative hrefs are resolved against pageURL.
func extract(doc *goquery.Document, pageURL *url.URL, extensions []string) *page {
	p := &page{
		Files:  []FileLink{},
		Tables: []Table{},
	}

	doc.Find("p").Each(func(i int, s *goquery.Selection) {
		if text := nodeText(s); text != "" {
			p.Paragraphs = append(p.Paragraphs, paragraph{Index: i, Text: text})
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved, ok := resolve(pageURL, href)
		if !ok {
			return
		}
		if hasFileExtension(href, extensions) {
			p.Files = append(p.Files, FileLink{Name: lastSegment(resolved), URL: resolved})
		}
		p.Links = append(p.Links, resolved)
	})

	doc.Find("table").Each(func(_ int, s *goquery.Selection) {
		p.Tables = append(p.Tables, extractTable(s))
	})

	return p
}

// extractTable maps every row after the first to its cells, keyed by the
// <th> texts of the first row or by column_i when there is no header for i.
func extractTable(table *goquery.Selection) Table {
	rows := table.Find("tr")
	out := Table{}
	if rows.Length() == 0 {
		return out
	}

	var headers []string
	rows.First().Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, nodeText(th))
	})

	rows.Slice(1, rows.Length()).Each(func(_ int, tr *goquery.Selection) {
		row := NewRow()
		tr.Find("td, th").Each(func(i int, cell *goquery.Selection) {
			key := fmt.Sprintf("column_%d", i)
			if i < len(headers) {
				key = headers[i]
			}
			row.Set(key, nodeText(cell))
		})
		out = append(out, row)
	})
	return out
}

// nodeText concatenates the whitespace-trimmed text nodes under s with no
// separator, dropping empty ones.
func nodeText(s *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, "")
}

// resolve returns href as an absolute URL relative to base.
func resolve(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// hasFileExtension reports whether the raw href ends with one of extensions.
// The comparison is case-sensitive.
func hasFileExtension(href string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(href, ext) {
			return true
		}
	}
	return false
}

// lastSegment returns the part of u after its last slash.
func lastSegment(u string) string {
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

// topicAndPath derives the record topic and path of a page URL: path is
// the URL path without surrounding slashes, topic is its last segment.
func topicAndPath(u *url.URL) (topic, path string) {
	path = strings.Trim(u.Path, "/")
	topic = path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		topic = path[i+1:]
	}
	return topic, path
}

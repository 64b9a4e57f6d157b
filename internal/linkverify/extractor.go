// Package linkverify checks generated HTML for local links whose target file
// does not exist.
package linkverify

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/doxybuild/internal/foundation/errors"
)

// Link is a reference found in an HTML document.
type Link struct {
	URL       string
	Tag       string
	Attribute string
}

// linkAttrs lists the attribute carrying a reference, per element.
var linkAttrs = map[string]string{
	"a":      "href",
	"area":   "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"iframe": "src",
	"source": "src",
	"video":  "src",
	"audio":  "src",
}

// ExtractLinks parses r and returns every link-bearing attribute in document order.
func ExtractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				if v := getAttr(n, attr); v != "" {
					links = append(links, Link{URL: v, Tag: n.Data, Attribute: attr})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// LocalPath returns the file path component of a link that points inside
// the generated site, or false for external, scheme-only and fragment-only links.
func LocalPath(link string) (string, bool) {
	link = strings.TrimSpace(link)
	if link == "" || strings.HasPrefix(link, "#") {
		return "", false
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	if u.Scheme != "" || u.Host != "" {
		return "", false
	}
	if u.Path == "" {
		return "", false
	}
	return u.Path, true
}

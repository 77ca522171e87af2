package scrape

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/dashboard/internal/config"
)

// LinkedInExtractor reads a LinkedIn public profile page.
//
// LinkedIn blocks unauthenticated scraping of profile content, so the only
// reliable data is what the page exposes for link previews: the OpenGraph
// og:title and og:description meta tags. Anything beyond that reports
// unavailable.
type LinkedInExtractor struct{}

func (LinkedInExtractor) Source() config.Source { return config.SourceLinkedIn }

func (LinkedInExtractor) Extract(body []byte) (Metrics, error) {
	tags := metaProperties(body)

	title := tags["og:title"]
	desc := tags["og:description"]
	if title == "" && desc == "" {
		return Metrics{}, fmt.Errorf("linkedin page exposes no opengraph data")
	}

	m := Metrics{Name: title, Extra: map[string]string{}}
	if desc != "" {
		m.Extra["headline"] = desc
	}
	return m, nil
}

// metaProperties tokenizes the document head and collects
// <meta property=... content=...> pairs. Tokenizing avoids building a full
// DOM for a page we only need two tags from.
func metaProperties(body []byte) map[string]string {
	tags := map[string]string{}
	tz := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch tz.Next() {
		case html.ErrorToken:
			return tags
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tz.TagName()
			if string(name) != "meta" || !hasAttr {
				continue
			}
			var property, content string
			for {
				key, val, more := tz.TagAttr()
				switch string(key) {
				case "property", "name":
					property = string(val)
				case "content":
					content = string(val)
				}
				if !more {
					break
				}
			}
			if property != "" && content != "" {
				tags[strings.ToLower(property)] = strings.TrimSpace(content)
			}
		}
	}
}

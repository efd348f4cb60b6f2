package scraper

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// minTextBlock filters out nav items, button labels and similar noise.
	minTextBlock = 50
	// maxTextBlocks caps how many elements are examined per page.
	maxTextBlocks = 20
)

// extractTitle resolves the page title using the target's selector, falling
// back to the document <title> and finally a sentinel string.
func extractTitle(doc *goquery.Document, t Target) string {
	sel := t.Selectors["title"]
	if sel == "" {
		sel = "title"
	}
	if txt := strings.TrimSpace(doc.Find(sel).First().Text()); txt != "" {
		return txt
	}
	if txt := strings.TrimSpace(doc.Find("title").First().Text()); txt != "" {
		return txt
	}
	return "No title found"
}

// extractContent gathers substantial text blocks from the page. The target's
// content selector is tried first; pages that match nothing fall back to all
// paragraph elements.
func extractContent(doc *goquery.Document, t Target) string {
	sel := t.Selectors["content"]
	if sel == "" {
		sel = "main, .content, article, p"
	}
	nodes := doc.Find(sel)
	if nodes.Length() == 0 {
		nodes = doc.Find("p")
	}

	var blocks []string
	nodes.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxTextBlocks {
			return false
		}
		text := strings.TrimSpace(s.Text())
		if len(text) > minTextBlock {
			blocks = append(blocks, text)
		}
		return true
	})

	return strings.Join(blocks, "\n\n")
}

// extractMetadata collects meta tags, OpenGraph properties and structured
// data hints into a flat string map.
func extractMetadata(doc *goquery.Document, t Target, pageURL string) map[string]string {
	md := map[string]string{
		"target_type": t.Type,
		"domain":      hostOf(pageURL),
	}

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		if name == "" {
			if prop, ok := s.Attr("property"); ok {
				name = strings.TrimPrefix(prop, "og:")
			}
		}
		content, ok := s.Attr("content")
		if name != "" && ok && content != "" {
			md["meta_"+name] = content
		}
	})

	if n := doc.Find(`script[type="application/ld+json"]`).Length(); n > 0 {
		md["structured_data_found"] = strconv.Itoa(n)
	}

	return md
}

// extractLinks returns absolute same-host links from the page, fragment
// stripped and deduplicated, preserving document order.
func extractLinks(baseURL string, doc *goquery.Document) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if abs.Hostname() != base.Hostname() {
			return
		}
		abs.Fragment = ""
		link := abs.String()
		if link == baseURL {
			return
		}
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

package serp

import "net/url"

// GoogleNews searches news.google.com. Result pages are aggregated article
// listings, so extraction selectors stay generic.
type GoogleNews struct{}

func (GoogleNews) Name() string       { return "google_news" }
func (GoogleNews) TargetType() string { return "news_search" }

func (GoogleNews) SearchURL(query string) string {
	return "https://news.google.com/search?q=" + url.QueryEscape(query)
}

func (GoogleNews) Selectors() map[string]string {
	return map[string]string{
		"title":   "h3, .title",
		"content": ".content, p",
	}
}

// BusinessWire searches businesswire.com press releases. First-party
// announcements score higher than aggregated news.
type BusinessWire struct{}

func (BusinessWire) Name() string       { return "businesswire" }
func (BusinessWire) TargetType() string { return "press_release" }

func (BusinessWire) SearchURL(query string) string {
	return "https://www.businesswire.com/news/home/search?searchText=" + url.QueryEscape(query)
}

func (BusinessWire) Selectors() map[string]string {
	return map[string]string{
		"title":   ".bw-release-title",
		"content": ".bw-release-story",
	}
}

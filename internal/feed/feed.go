// Package feed generates the RSS 2.0 feed and the XML sitemap from post
// metadata. Output shapes follow the usual conventions: the feed carries the
// latest posts with permalink GUIDs, the sitemap lists the static sections
// plus every post.
package feed

import (
	"encoding/xml"
	"fmt"
	"time"
)

// feedLimit caps how many posts the RSS feed carries.
const feedLimit = 20

// Site identifies the blog in generated documents.
type Site struct {
	URL         string
	Title       string
	Description string
}

// Entry is the post view the generators need. Date is an ISO calendar date.
type Entry struct {
	Slug     string
	Title    string
	Excerpt  string
	Date     string
	Category string
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	AtomLink      atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	Description string  `xml:"description"`
	PubDate     string  `xml:"pubDate"`
	Category    string  `xml:"category"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// RSS renders the feed document for the newest posts (input order is kept, so
// callers pass posts already sorted date-descending).
func RSS(site Site, entries []Entry, now time.Time) ([]byte, error) {
	if len(entries) > feedLimit {
		entries = entries[:feedLimit]
	}

	items := make([]rssItem, 0, len(entries))
	for _, e := range entries {
		link := site.URL + "/posts/" + e.Slug
		items = append(items, rssItem{
			Title:       e.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			Description: e.Excerpt,
			PubDate:     pubDate(e.Date, now),
			Category:    e.Category,
		})
	}

	doc := rssDoc{
		Version: "2.0",
		AtomNS:  "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:         site.Title,
			Link:          site.URL,
			Description:   site.Description,
			Language:      "en",
			LastBuildDate: now.UTC().Format(time.RFC1123),
			AtomLink: atomLink{
				Href: site.URL + "/feed.xml",
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: items,
		},
	}
	return marshal(doc)
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap renders the sitemap: home and section pages first, then every post.
func Sitemap(site Site, entries []Entry, now time.Time) ([]byte, error) {
	today := now.UTC().Format("2006-01-02")

	urls := []sitemapURL{
		{Loc: site.URL, LastMod: today, ChangeFreq: "daily", Priority: "1.0"},
		{Loc: site.URL + "/tech", LastMod: today, ChangeFreq: "weekly", Priority: "0.9"},
		{Loc: site.URL + "/life", LastMod: today, ChangeFreq: "weekly", Priority: "0.9"},
		{Loc: site.URL + "/tools", LastMod: today, ChangeFreq: "weekly", Priority: "0.9"},
	}
	for _, e := range entries {
		urls = append(urls, sitemapURL{
			Loc:        site.URL + "/posts/" + e.Slug,
			LastMod:    e.Date,
			ChangeFreq: "monthly",
			Priority:   "0.8",
		})
	}

	return marshal(urlSet{
		NS:   "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: urls,
	})
}

// pubDate converts an ISO calendar date into RFC 1123 form, falling back to
// the build time for unparseable dates.
func pubDate(date string, now time.Time) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		t = now
	}
	return t.UTC().Format(time.RFC1123)
}

func marshal(doc any) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

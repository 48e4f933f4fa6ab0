package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"inkpress/internal/cache"
	"inkpress/internal/feed"
	"inkpress/internal/repo"
)

// Feeds serves the RSS feed and the sitemap.
type Feeds struct {
	repo  *repo.Repository
	site  feed.Site
	cache *cache.RenderCache
}

// NewFeeds creates the feeds handler group. cache may be nil.
func NewFeeds(repository *repo.Repository, site feed.Site, renderCache *cache.RenderCache) *Feeds {
	return &Feeds{repo: repository, site: site, cache: renderCache}
}

// RSS serves /feed.xml.
func (f *Feeds) RSS(w http.ResponseWriter, r *http.Request) {
	f.serve(w, r, cache.FeedKey(), "application/rss+xml; charset=utf-8", feed.RSS)
}

// Sitemap serves /sitemap.xml.
func (f *Feeds) Sitemap(w http.ResponseWriter, r *http.Request) {
	f.serve(w, r, cache.SitemapKey(), "application/xml; charset=utf-8", feed.Sitemap)
}

func (f *Feeds) serve(w http.ResponseWriter, r *http.Request, key, contentType string,
	build func(feed.Site, []feed.Entry, time.Time) ([]byte, error)) {

	doc, ok := f.cache.Get(r.Context(), key)
	if !ok {
		metas, err := f.repo.ListAll()
		if err != nil {
			slog.Error("list posts for feed failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		entries := make([]feed.Entry, 0, len(metas))
		for _, m := range metas {
			entries = append(entries, feed.Entry{
				Slug:     m.Slug,
				Title:    m.Title,
				Excerpt:  m.Excerpt,
				Date:     m.Date,
				Category: m.Category,
			})
		}

		doc, err = build(f.site, entries, time.Now())
		if err != nil {
			slog.Error("build feed failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		f.cache.Set(r.Context(), key, doc)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(doc)
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/cache"
	"inkpress/internal/markdown"
	"inkpress/internal/repo"
)

// Posts groups the post CRUD handlers.
type Posts struct {
	repo  *repo.Repository
	cache *cache.RenderCache
}

// NewPosts creates the posts handler group. cache may be nil.
func NewPosts(repository *repo.Repository, renderCache *cache.RenderCache) *Posts {
	return &Posts{repo: repository, cache: renderCache}
}

// List returns frontmatter metadata for every post, newest first.
func (p *Posts) List(w http.ResponseWriter, r *http.Request) {
	metas, err := p.repo.ListAll()
	if err != nil {
		slog.Error("list posts failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to list posts")
		return
	}
	respond(w, http.StatusOK, map[string]any{"posts": metas})
}

// postView is the single-post response payload: the stored post plus the
// rendered HTML and estimated reading time.
type postView struct {
	repo.Post
	ContentHTML string `json:"contentHtml"`
	ReadingTime int    `json:"readingTime"`
}

// Get returns one full post, rendering its Markdown body. Rendered HTML is
// served from the cache when available.
func (p *Posts) Get(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")

	post, err := p.repo.Get(s)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		slog.Error("get post failed", "slug", s, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load post")
		return
	}

	var html string
	if cached, ok := p.cache.Get(r.Context(), cache.PostKey(post.Slug)); ok {
		html = string(cached)
	} else {
		html, err = markdown.ToHTML(post.Content)
		if err != nil {
			slog.Error("render post failed", "slug", s, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to render post")
			return
		}
		p.cache.Set(r.Context(), cache.PostKey(post.Slug), []byte(html))
	}

	respond(w, http.StatusOK, map[string]any{"post": postView{
		Post:        *post,
		ContentHTML: html,
		ReadingTime: markdown.ReadingTime(post.Content),
	}})
}

type createPostRequest struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Excerpt     string   `json:"excerpt"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory"`
	Content     string   `json:"content"`
}

// Create writes a new post file.
func (p *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg := validatePost(req.Title, req.Excerpt, req.Content, req.Tags, req.Slug, req.Category, true); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	s, err := p.repo.Create(&repo.Post{
		Slug:        req.Slug,
		Title:       req.Title,
		Date:        req.Date,
		Excerpt:     req.Excerpt,
		Tags:        req.Tags,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Content:     req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrConflict):
			respondError(w, http.StatusConflict, "A post with this slug already exists")
		case errors.Is(err, repo.ErrInvalidCategory):
			respondError(w, http.StatusBadRequest, "Category must be one of: tech, life, tools.")
		default:
			slog.Error("create post failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to create post")
		}
		return
	}

	p.cache.InvalidateAll(r.Context())
	slog.Info("post created", "slug", s, "category", req.Category)
	respond(w, http.StatusCreated, map[string]any{"slug": s})
}

type updatePostRequest struct {
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory"`
	Content     string   `json:"content"`
}

// Update merges partial changes over a stored post. Empty fields keep their
// stored values; a category change moves the file.
func (p *Posts) Update(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")

	var req updatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg := validatePost(req.Title, req.Excerpt, req.Content, req.Tags, "", req.Category, false); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	err := p.repo.ApplyUpdate(s, repo.Update{
		Title:       req.Title,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Tags:        req.Tags,
		Category:    req.Category,
		SubCategory: req.SubCategory,
	})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			respondError(w, http.StatusNotFound, "Post not found")
		case errors.Is(err, repo.ErrInvalidCategory):
			respondError(w, http.StatusBadRequest, "Category must be one of: tech, life, tools.")
		default:
			slog.Error("update post failed", "slug", s, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to update post")
		}
		return
	}

	p.cache.InvalidateAll(r.Context())
	slog.Info("post updated", "slug", s)
	respond(w, http.StatusOK, map[string]any{"slug": s})
}

// Delete removes a post file permanently.
func (p *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	s := chi.URLParam(r, "slug")

	if err := p.repo.Delete(s); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		slog.Error("delete post failed", "slug", s, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete post")
		return
	}

	p.cache.InvalidateAll(r.Context())
	slog.Info("post deleted", "slug", s)
	respond(w, http.StatusOK, map[string]any{"slug": s})
}

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"inkpress/internal/cache"
	"inkpress/internal/frontmatter"
	"inkpress/internal/repo"
	"inkpress/internal/slug"
)

// maxUploadSize caps uploaded Markdown files at 5 MB.
const maxUploadSize = 5 << 20

// maxAutoTags caps how many tags keyword detection may produce.
const maxAutoTags = 5

// tagKeywords maps a tag to the lowercase keywords that trigger it.
var tagKeywords = map[string][]string{
	"React":      {"react", "jsx", "hooks", "usestate", "useeffect"},
	"Vue":        {"vue", "vuex", "pinia", "composition api"},
	"TypeScript": {"typescript", "interface", "type "},
	"JavaScript": {"javascript", "es6", "promise", "async"},
	"Node.js":    {"node.js", "nodejs", "express", "npm"},
	"Go":         {"golang", "goroutine", "go module"},
	"Python":     {"python", "django", "flask", "pip"},
	"CSS":        {"css", "tailwind", "sass", "scss"},
	"Git":        {"git", "github", "gitlab", "commit"},
	"Docker":     {"docker", "container", "dockerfile"},
	"Database":   {"mysql", "mongodb", "redis", "postgresql", "sql"},
	"API":        {"api", "rest", "graphql"},
	"AI":         {"ai", "gpt", "llm", "machine learning"},
	"Tutorial":   {"tutorial", "getting started", "how to"},
}

// Upload groups the Markdown upload handler.
type Upload struct {
	repo  *repo.Repository
	cache *cache.RenderCache
}

// NewUpload creates the upload handler group. cache may be nil.
func NewUpload(repository *repo.Repository, renderCache *cache.RenderCache) *Upload {
	return &Upload{repo: repository, cache: renderCache}
}

// Post accepts a multipart .md file, fills in missing frontmatter, and stores
// it as a new post. The slug comes from the uploaded filename. Tags resolve
// in order: form field, frontmatter, keyword detection.
func (u *Upload) Post(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+4096)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "File exceeds the 5 MB limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "A file is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".md") {
		respondError(w, http.StatusBadRequest, "Only .md files are supported")
		return
	}
	if header.Size > maxUploadSize {
		respondError(w, http.StatusBadRequest, "File exceeds the 5 MB limit")
		return
	}

	category := r.FormValue("category")
	if !repo.ValidCategory(category) {
		respondError(w, http.StatusBadRequest, "Category must be one of: tech, life, tools.")
		return
	}
	subCategory := r.FormValue("subCategory")

	raw, err := io.ReadAll(file)
	if err != nil {
		slog.Error("read upload failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	meta, body, err := frontmatter.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid frontmatter")
		return
	}

	baseName := strings.TrimSuffix(header.Filename, ".md")
	title := meta.Title
	if title == "" {
		title = baseName
	}

	tags := resolveTags(r.FormValue("tags"), meta.Tags, title, body)

	excerpt := meta.Excerpt
	if excerpt == "" {
		excerpt = fallbackExcerpt(body)
	}

	s, err := u.repo.Create(&repo.Post{
		Slug:        slug.Generate(baseName),
		Title:       title,
		Date:        meta.Date,
		Excerpt:     excerpt,
		Tags:        tags,
		Category:    category,
		SubCategory: subCategory,
		Content:     body,
	})
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			respondError(w, http.StatusConflict, "A post with this slug already exists")
			return
		}
		slog.Error("store upload failed", "file", header.Filename, "error", err)
		respondError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	u.cache.InvalidateAll(r.Context())
	slog.Info("post uploaded", "slug", s, "file", header.Filename, "category", category)
	respond(w, http.StatusCreated, map[string]any{
		"slug":             s,
		"originalFileName": baseName,
		"category":         category,
		"subCategory":      subCategory,
		"tags":             tags,
	})
}

// resolveTags picks tags from the form field first, then frontmatter, then
// keyword detection over the title and body.
func resolveTags(formTags string, metaTags []string, title, body string) []string {
	if formTags != "" {
		var tags []string
		for _, t := range strings.Split(formTags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		if len(tags) > 0 {
			return tags
		}
	}
	if len(metaTags) > 0 {
		return metaTags
	}
	return detectTags(title + " " + body)
}

// detectTags scans the text for known keywords, returning at most maxAutoTags
// tags in stable alphabetical order.
func detectTags(text string) []string {
	text = strings.ToLower(text)

	tags := []string{}
	for tag, keywords := range tagKeywords {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				tags = append(tags, tag)
				break
			}
		}
	}

	sort.Strings(tags)
	if len(tags) > maxAutoTags {
		tags = tags[:maxAutoTags]
	}
	return tags
}

// fallbackExcerpt derives an excerpt from the first 100 characters of the
// body, with headings and newlines flattened.
func fallbackExcerpt(body string) string {
	runes := []rune(body)
	if len(runes) > 100 {
		runes = runes[:100]
	}
	cleaned := strings.NewReplacer("#", " ", "\n", " ").Replace(string(runes))
	return strings.Join(strings.Fields(cleaned), " ")
}

// Package repo is the sole authority over post files on disk. Posts are
// Markdown files with YAML frontmatter laid out as:
//
//	<root>/tech/<subCategory>[/<child>]/<slug>.md
//	<root>/life/<slug>.md
//	<root>/tools/<slug>.md
//
// The slug doubles as the filename and must be unique across the whole
// repository. All mutations are serialized through a single write mutex so
// two admin requests cannot race a create/update/delete on the same slug.
package repo

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"inkpress/internal/frontmatter"
	"inkpress/internal/markdown"
	"inkpress/internal/slug"
)

// Top-level categories. "tech" is the only one with sub-categories.
const (
	CategoryTech  = "tech"
	CategoryLife  = "life"
	CategoryTools = "tools"
)

// DefaultSubCategory is where tech posts land when no sub-category is given.
const DefaultSubCategory = "other"

// Errors returned for expected conditions. Anything else is an I/O fault.
var (
	ErrNotFound        = errors.New("repo: post not found")
	ErrConflict        = errors.New("repo: slug already exists")
	ErrInvalidCategory = errors.New("repo: invalid category")
)

// Post is a full unit of content including its Markdown body.
type Post struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Excerpt     string   `json:"excerpt"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory,omitempty"`
	Content     string   `json:"content"`
}

// PostMeta is the frontmatter-only view used for listings.
type PostMeta struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Excerpt     string   `json:"excerpt"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory,omitempty"`
	ReadingTime int      `json:"readingTime"`
}

// Update carries partial post changes. Empty strings and nil slices mean
// "keep the stored value"; a category change relocates the file.
type Update struct {
	Title       string
	Content     string
	Excerpt     string
	Tags        []string
	Category    string
	SubCategory string
}

// Repository reads and mutates post files under a content root.
type Repository struct {
	root    string
	writeMu sync.Mutex
	now     func() time.Time
}

// New creates a repository rooted at dir.
func New(dir string) *Repository {
	return &Repository{root: dir, now: time.Now}
}

// ValidCategory reports whether c is one of the fixed top-level categories.
func ValidCategory(c string) bool {
	return c == CategoryTech || c == CategoryLife || c == CategoryTools
}

// ResolveDir maps a category/sub-category pair to its directory. Tech posts
// without a sub-category default to "other"; life and tools ignore it.
func (r *Repository) ResolveDir(category, subCategory string) string {
	if category == CategoryTech {
		if subCategory == "" {
			subCategory = DefaultSubCategory
		}
		return filepath.Join(r.root, CategoryTech, subCategory)
	}
	return filepath.Join(r.root, category)
}

// FindBySlug locates the file backing a slug, trying the raw slug and its
// URL-decoded form (encoded non-ASCII filenames). Directories are scanned in
// deterministic order — tech sub-categories sorted by name (one nested level
// included), then life, then tools — and the first match wins.
func (r *Repository) FindBySlug(s string) (string, error) {
	candidates := []string{s}
	if decoded, err := url.PathUnescape(s); err == nil && decoded != s {
		candidates = append(candidates, decoded)
	}

	dirs, err := r.scanDirs()
	if err != nil {
		return "", err
	}

	for _, d := range dirs {
		for _, c := range candidates {
			path := filepath.Join(d, c+".md")
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", ErrNotFound
}

// Get reads the full post for a slug. Category and sub-category missing from
// the frontmatter are derived from the file's location.
func (r *Repository) Get(s string) (*Post, error) {
	path, err := r.FindBySlug(s)
	if err != nil {
		return nil, err
	}
	return r.readPost(path, strings.TrimSuffix(filepath.Base(path), ".md"))
}

// ListAll scans every category directory and returns frontmatter metadata for
// each post, sorted by date descending with ties in encounter order.
// Duplicate slugs across directories keep the first occurrence only.
func (r *Repository) ListAll() ([]PostMeta, error) {
	dirs, err := r.scanDirs()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	metas := []PostMeta{}
	for _, d := range dirs {
		entries, err := os.ReadDir(d)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", d, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
				continue
			}
			s := strings.TrimSuffix(e.Name(), ".md")
			if seen[s] {
				continue
			}
			post, err := r.readPost(filepath.Join(d, e.Name()), s)
			if err != nil {
				return nil, err
			}
			seen[s] = true
			metas = append(metas, PostMeta{
				Slug:        post.Slug,
				Title:       post.Title,
				Date:        post.Date,
				Excerpt:     post.Excerpt,
				Tags:        post.Tags,
				Category:    post.Category,
				SubCategory: post.SubCategory,
				ReadingTime: markdown.ReadingTime(post.Content),
			})
		}
	}

	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].Date > metas[j].Date
	})
	return metas, nil
}

// Create writes a new post. The slug comes from the post itself or is
// generated from the title. Fails with ErrConflict if the slug exists
// anywhere in the repository.
func (r *Repository) Create(p *Post) (string, error) {
	if !ValidCategory(p.Category) {
		return "", ErrInvalidCategory
	}

	s := p.Slug
	if s == "" {
		s = slug.Generate(p.Title)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if _, err := r.FindBySlug(s); err == nil {
		return "", ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	dir := r.ResolveDir(p.Category, p.SubCategory)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create post directory: %w", err)
	}

	path := filepath.Join(dir, s+".md")
	if _, err := os.Stat(path); err == nil {
		return "", ErrConflict
	}

	meta := frontmatter.Meta{
		Title:       p.Title,
		Date:        p.Date,
		Excerpt:     p.Excerpt,
		Tags:        p.Tags,
		Category:    p.Category,
		SubCategory: p.SubCategory,
	}
	if meta.Date == "" {
		meta.Date = r.now().Format("2006-01-02")
	}
	if meta.Excerpt == "" {
		meta.Excerpt = p.Title
	}
	if p.Category == CategoryTech && meta.SubCategory == "" {
		meta.SubCategory = DefaultSubCategory
	}

	data, err := frontmatter.Render(meta, p.Content)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write post: %w", err)
	}
	return s, nil
}

// ApplyUpdate merges partial changes over the stored post and rewrites it.
// A category or sub-category change relocates the file: the new file is
// written and verified before the old one is removed, and a failed removal
// surfaces as an error even though the new file is already in place.
func (r *Repository) ApplyUpdate(s string, u Update) error {
	if u.Category != "" && !ValidCategory(u.Category) {
		return ErrInvalidCategory
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	oldPath, err := r.FindBySlug(s)
	if err != nil {
		return err
	}

	fileSlug := strings.TrimSuffix(filepath.Base(oldPath), ".md")
	post, err := r.readPost(oldPath, fileSlug)
	if err != nil {
		return err
	}

	meta := frontmatter.Meta{
		Title:       post.Title,
		Date:        post.Date,
		Excerpt:     post.Excerpt,
		Tags:        post.Tags,
		Category:    post.Category,
		SubCategory: post.SubCategory,
	}
	body := post.Content

	if u.Title != "" {
		meta.Title = u.Title
	}
	if u.Content != "" {
		body = u.Content
	}
	if u.Excerpt != "" {
		meta.Excerpt = u.Excerpt
	}
	if u.Tags != nil {
		meta.Tags = u.Tags
	}
	if u.Category != "" {
		meta.Category = u.Category
	}
	if u.SubCategory != "" {
		meta.SubCategory = u.SubCategory
	}
	if meta.Category != CategoryTech {
		meta.SubCategory = ""
	} else if meta.SubCategory == "" {
		meta.SubCategory = DefaultSubCategory
	}

	data, err := frontmatter.Render(meta, body)
	if err != nil {
		return err
	}

	newPath := filepath.Join(r.ResolveDir(meta.Category, meta.SubCategory), fileSlug+".md")
	if newPath == oldPath {
		if err := os.WriteFile(oldPath, data, 0o644); err != nil {
			return fmt.Errorf("write post: %w", err)
		}
		return nil
	}

	// Relocation: write new, verify, then delete old.
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("create post directory: %w", err)
	}
	if err := os.WriteFile(newPath, data, 0o644); err != nil {
		return fmt.Errorf("write relocated post: %w", err)
	}
	if _, err := os.Stat(newPath); err != nil {
		return fmt.Errorf("verify relocated post: %w", err)
	}
	if err := os.Remove(oldPath); err != nil {
		return fmt.Errorf("remove old post after relocation (new file is in place): %w", err)
	}
	return nil
}

// Delete removes the file backing a slug. No soft delete, no recovery.
func (r *Repository) Delete(s string) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	path, err := r.FindBySlug(s)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// scanDirs enumerates every directory that may hold posts: each tech
// sub-category plus one nested level of children (os.ReadDir order, which is
// sorted by name), then life and tools.
func (r *Repository) scanDirs() ([]string, error) {
	var dirs []string

	techDir := filepath.Join(r.root, CategoryTech)
	subs, err := os.ReadDir(techDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read tech directory: %w", err)
	}
	for _, sub := range subs {
		if !sub.IsDir() {
			continue
		}
		subPath := filepath.Join(techDir, sub.Name())
		dirs = append(dirs, subPath)

		children, err := os.ReadDir(subPath)
		if err != nil {
			return nil, fmt.Errorf("read sub-category directory: %w", err)
		}
		for _, child := range children {
			if child.IsDir() {
				dirs = append(dirs, filepath.Join(subPath, child.Name()))
			}
		}
	}

	return append(dirs,
		filepath.Join(r.root, CategoryLife),
		filepath.Join(r.root, CategoryTools),
	), nil
}

// readPost loads and parses one post file, deriving category information
// from the path when the frontmatter omits it.
func (r *Repository) readPost(path, s string) (*Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read post: %w", err)
	}

	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	pathCat, pathSub := r.categoryFromPath(path)
	if meta.Category == "" {
		meta.Category = pathCat
	}
	if meta.SubCategory == "" {
		meta.SubCategory = pathSub
	}
	if meta.Title == "" {
		meta.Title = s
	}
	if meta.Tags == nil {
		meta.Tags = []string{}
	}

	return &Post{
		Slug:        s,
		Title:       meta.Title,
		Date:        meta.Date,
		Excerpt:     meta.Excerpt,
		Tags:        meta.Tags,
		Category:    meta.Category,
		SubCategory: meta.SubCategory,
		Content:     body,
	}, nil
}

// categoryFromPath derives (category, subCategory) from a file's location
// relative to the content root. For nested sub-category children the most
// specific directory name wins.
func (r *Repository) categoryFromPath(path string) (string, string) {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return "", ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")

	switch parts[0] {
	case CategoryTech:
		if len(parts) >= 3 {
			// tech/<sub>/<file> or tech/<sub>/<child>/<file>
			return CategoryTech, parts[len(parts)-2]
		}
		return CategoryTech, ""
	case CategoryLife:
		return CategoryLife, ""
	case CategoryTools:
		return CategoryTools, ""
	}
	return "", ""
}

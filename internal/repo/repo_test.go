package repo

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	root := t.TempDir()
	for _, sub := range []string{"tech/frontend", "tech/backend", "tech/ai", "tech/other", "life", "tools"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", sub, err)
		}
	}
	return New(root)
}

func TestCreateGetRoundTrip(t *testing.T) {
	r := newTestRepo(t)

	s, err := r.Create(&Post{
		Title:       "Hello",
		Content:     "# Hi",
		Category:    CategoryTech,
		SubCategory: "frontend",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s != "hello" {
		t.Errorf("slug = %q, want %q", s, "hello")
	}

	got, err := r.Get(s)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Hello" {
		t.Errorf("Title = %q, want Hello", got.Title)
	}
	if got.Content != "# Hi\n" && got.Content != "# Hi" {
		t.Errorf("Content = %q, want the body back", got.Content)
	}
	if got.Category != CategoryTech || got.SubCategory != "frontend" {
		t.Errorf("category = %s/%s, want tech/frontend", got.Category, got.SubCategory)
	}
	if got.Date == "" {
		t.Error("Date should default to today")
	}
	if got.Excerpt != "Hello" {
		t.Errorf("Excerpt = %q, want title fallback", got.Excerpt)
	}
}

func TestCreateDefaultsSubCategory(t *testing.T) {
	r := newTestRepo(t)

	s, err := r.Create(&Post{Title: "No Sub", Content: "x", Category: CategoryTech})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := os.Stat(filepath.Join(r.root, "tech", "other", s+".md")); err != nil {
		t.Errorf("post should land in tech/other: %v", err)
	}
}

func TestCreateRejectsInvalidCategory(t *testing.T) {
	r := newTestRepo(t)

	if _, err := r.Create(&Post{Title: "x", Content: "x", Category: "movies"}); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("err = %v, want ErrInvalidCategory", err)
	}
}

// A slug collision is rejected repository-wide, even across categories, and
// the first post is left untouched.
func TestCreateConflict(t *testing.T) {
	r := newTestRepo(t)

	if _, err := r.Create(&Post{Title: "Hello", Content: "original", Category: CategoryLife}); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := r.Create(&Post{Title: "Hello", Content: "usurper", Category: CategoryTech, SubCategory: "backend"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second Create err = %v, want ErrConflict", err)
	}

	got, err := r.Get("hello")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.Contains(got.Content, "original") {
		t.Errorf("first post content altered: %q", got.Content)
	}
	if got.Category != CategoryLife {
		t.Errorf("first post moved to %s", got.Category)
	}
}

func TestCreateExplicitSlug(t *testing.T) {
	r := newTestRepo(t)

	s, err := r.Create(&Post{Slug: "custom-slug", Title: "Whatever", Content: "x", Category: CategoryTools})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s != "custom-slug" {
		t.Errorf("slug = %q, want custom-slug", s)
	}
}

func TestFindBySlugDecodesEncoded(t *testing.T) {
	r := newTestRepo(t)

	// A file with a non-ASCII name placed directly on disk.
	path := filepath.Join(r.root, "life", "随笔.md")
	if err := os.WriteFile(path, []byte("---\ntitle: t\ndate: \"2026-01-01\"\ncategory: life\n---\nbody\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := r.FindBySlug("%E9%9A%8F%E7%AC%94")
	if err != nil {
		t.Fatalf("FindBySlug(encoded): %v", err)
	}
	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
}

func TestFindBySlugNotFound(t *testing.T) {
	r := newTestRepo(t)

	if _, err := r.FindBySlug("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFindBySlugNestedSubCategory(t *testing.T) {
	r := newTestRepo(t)

	nested := filepath.Join(r.root, "tech", "frontend", "react")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(nested, "hooks-deep-dive.md")
	if err := os.WriteFile(path, []byte("---\ntitle: Hooks\ndate: \"2026-01-01\"\ncategory: tech\n---\nbody\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := r.FindBySlug("hooks-deep-dive")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}

	post, err := r.Get("hooks-deep-dive")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if post.SubCategory != "react" {
		t.Errorf("SubCategory = %q, want react (derived from path)", post.SubCategory)
	}
}

func TestListAll(t *testing.T) {
	r := newTestRepo(t)

	posts := []*Post{
		{Title: "Oldest", Content: "x", Category: CategoryLife, Date: "2026-01-01"},
		{Title: "Newest", Content: "x", Category: CategoryTech, SubCategory: "backend", Date: "2026-03-01"},
		{Title: "Middle", Content: "x", Category: CategoryTools, Date: "2026-02-01"},
	}
	for _, p := range posts {
		if _, err := r.Create(p); err != nil {
			t.Fatalf("Create(%s): %v", p.Title, err)
		}
	}

	metas, err := r.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("got %d posts, want 3", len(metas))
	}

	titles := []string{metas[0].Title, metas[1].Title, metas[2].Title}
	want := []string{"Newest", "Middle", "Oldest"}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("order = %v, want %v (date descending)", titles, want)
	}
	if metas[0].ReadingTime < 1 {
		t.Errorf("ReadingTime = %d, want >= 1", metas[0].ReadingTime)
	}
}

// Listing twice with no intervening writes yields identical results.
func TestListAllIdempotent(t *testing.T) {
	r := newTestRepo(t)

	for _, p := range []*Post{
		{Title: "A", Content: "x", Category: CategoryLife, Date: "2026-01-05"},
		{Title: "B", Content: "x", Category: CategoryLife, Date: "2026-01-05"},
		{Title: "C", Content: "x", Category: CategoryTools, Date: "2026-01-09"},
	} {
		if _, err := r.Create(p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	first, err := r.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	second, err := r.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two ListAll calls differ:\n%+v\n%+v", first, second)
	}
}

// Duplicate slugs across directories keep the first occurrence only.
func TestListAllDeduplicates(t *testing.T) {
	r := newTestRepo(t)

	content := "---\ntitle: Dup\ndate: \"2026-01-01\"\n---\nbody\n"
	for _, dir := range []string{"tech/ai", "life"} {
		if err := os.WriteFile(filepath.Join(r.root, dir, "dup.md"), []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	metas, err := r.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(metas) != 1 {
		t.Errorf("got %d posts, want 1 after dedupe", len(metas))
	}
}

func TestUpdateMergesFields(t *testing.T) {
	r := newTestRepo(t)

	s, err := r.Create(&Post{
		Title:    "Original",
		Content:  "original body",
		Excerpt:  "original excerpt",
		Tags:     []string{"keep"},
		Category: CategoryLife,
		Date:     "2026-01-15",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := r.ApplyUpdate(s, Update{Title: "Renamed"}); err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}

	got, err := r.Get(s)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("Title = %q, want Renamed", got.Title)
	}
	if got.Excerpt != "original excerpt" {
		t.Errorf("Excerpt = %q, unset field should keep stored value", got.Excerpt)
	}
	if !reflect.DeepEqual(got.Tags, []string{"keep"}) {
		t.Errorf("Tags = %v, unset field should keep stored value", got.Tags)
	}
	if got.Date != "2026-01-15" {
		t.Errorf("Date = %q, should never change on update", got.Date)
	}
	if !strings.Contains(got.Content, "original body") {
		t.Errorf("Content = %q, unset field should keep stored value", got.Content)
	}
}

// Changing category relocates the file: old path gone, new path holds the
// same content, FindBySlug resolves to the new location only.
func TestUpdateRelocates(t *testing.T) {
	r := newTestRepo(t)

	s, err := r.Create(&Post{Title: "Mover", Content: "the body", Category: CategoryLife})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	oldPath := filepath.Join(r.root, "life", s+".md")
	if _, err := os.Stat(oldPath); err != nil {
		t.Fatalf("precondition: %v", err)
	}

	if err := r.ApplyUpdate(s, Update{Category: CategoryTech, SubCategory: "backend"}); err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}

	if _, err := os.Stat(oldPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("old path should be gone, stat err = %v", err)
	}

	newPath := filepath.Join(r.root, "tech", "backend", s+".md")
	if _, err := os.Stat(newPath); err != nil {
		t.Errorf("new path should exist: %v", err)
	}

	found, err := r.FindBySlug(s)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found != newPath {
		t.Errorf("FindBySlug = %q, want %q", found, newPath)
	}

	got, err := r.Get(s)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.Contains(got.Content, "the body") {
		t.Errorf("content lost in relocation: %q", got.Content)
	}
	if got.Category != CategoryTech || got.SubCategory != "backend" {
		t.Errorf("category = %s/%s, want tech/backend", got.Category, got.SubCategory)
	}
}

func TestUpdateNotFound(t *testing.T) {
	r := newTestRepo(t)

	if err := r.ApplyUpdate("ghost", Update{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	r := newTestRepo(t)

	s, err := r.Create(&Post{Title: "Doomed", Content: "x", Category: CategoryTools})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := r.Delete(s); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.Get(s); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if err := r.Delete(s); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestResolveDir(t *testing.T) {
	r := New("/content")

	tests := []struct {
		category    string
		subCategory string
		want        string
	}{
		{CategoryTech, "frontend", "/content/tech/frontend"},
		{CategoryTech, "", "/content/tech/other"},
		{CategoryLife, "", "/content/life"},
		{CategoryLife, "ignored", "/content/life"},
		{CategoryTools, "", "/content/tools"},
	}

	for _, tt := range tests {
		if got := r.ResolveDir(tt.category, tt.subCategory); got != tt.want {
			t.Errorf("ResolveDir(%q, %q) = %q, want %q", tt.category, tt.subCategory, got, tt.want)
		}
	}
}

// handler_test.go provides shared test infrastructure for handler tests.
// Each test gets a fresh content root via t.TempDir, so tests never touch
// real content or external services.
package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/auth"
	"inkpress/internal/feed"
	"inkpress/internal/middleware"
	"inkpress/internal/repo"
	"inkpress/internal/taxonomy"
)

const testPassword = "correct-horse-battery"

type testEnv struct {
	repo   *repo.Repository
	tax    *taxonomy.Store
	tokens *auth.TokenService
	router http.Handler
}

// newTestEnv builds the full handler surface over a temp content root.
// No rate limiting, no cache, no TOTP: those have their own tests.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	tax := taxonomy.NewStore(root)
	if err := tax.EnsureDefaults(); err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}

	repository := repo.New(root)
	tokens := auth.NewTokenService("test-secret")

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	authHandlers := NewAuth(tokens, hash, "")
	posts := NewPosts(repository, nil)
	categories := NewCategories(tax, nil)
	upload := NewUpload(repository, nil)
	feeds := NewFeeds(repository, feed.Site{
		URL:         "https://blog.example.com",
		Title:       "Test Blog",
		Description: "A test blog",
	}, nil)

	r := chi.NewRouter()
	r.Use(middleware.Authenticate(tokens))
	r.Post("/api/auth", authHandlers.Login)
	r.Get("/api/auth", authHandlers.Check)
	r.Get("/api/posts", posts.List)
	r.Get("/api/posts/{slug}", posts.Get)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Post("/api/posts", posts.Create)
		r.Put("/api/posts/{slug}", posts.Update)
		r.Delete("/api/posts/{slug}", posts.Delete)
		r.Post("/api/categories", categories.Add)
		r.Delete("/api/categories", categories.Remove)
		r.Post("/api/upload", upload.Post)
	})
	r.Get("/api/categories", categories.Get)
	r.Get("/feed.xml", feeds.RSS)
	r.Get("/sitemap.xml", feeds.Sitemap)
	r.Get("/health", Health)

	return &testEnv{repo: repository, tax: tax, tokens: tokens, router: r}
}

// adminToken issues a valid admin token.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := e.tokens.Issue(auth.RoleAdmin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// doJSON performs a request with an optional JSON body and bearer token.
func (e *testEnv) doJSON(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a recorded JSON response.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

// createPost inserts a post through the API and returns its slug.
func (e *testEnv) createPost(t *testing.T, title, category, subCategory, content string) string {
	t.Helper()

	rec := e.doJSON(t, http.MethodPost, "/api/posts", map[string]any{
		"title":       title,
		"category":    category,
		"subCategory": subCategory,
		"content":     content,
	}, e.adminToken(t))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: status %d: %s", rec.Code, rec.Body.String())
	}

	slug, _ := decodeBody(t, rec)["slug"].(string)
	if slug == "" {
		t.Fatal("create post: empty slug in response")
	}
	return slug
}

// multipartUpload builds a multipart request body with a .md file and fields.
func multipartUpload(t *testing.T, filename, content string, fields map[string]string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

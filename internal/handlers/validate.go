package handlers

import (
	"strings"
	"unicode/utf8"

	"inkpress/internal/repo"
	"inkpress/internal/slug"
)

// Validation limits for post and taxonomy fields.
const (
	maxTitleLen   = 200
	maxExcerptLen = 500
	maxTags       = 10
	maxValueLen   = 50
	maxLabelLen   = 50
	maxIconLen    = 10
)

// validatePost checks post input fields and returns the first error found.
// Title, content, and category presence are only enforced when requireAll is
// set, so partial updates can leave them empty (empty means "unchanged").
func validatePost(title, excerpt, content string, tags []string, slugStr, category string, requireAll bool) string {
	title = strings.TrimSpace(title)
	if requireAll && title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 200 characters)."
	}
	if requireAll && strings.TrimSpace(content) == "" {
		return "Content is required."
	}
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 500 characters)."
	}
	if len(tags) > maxTags {
		return "Too many tags (max 10)."
	}
	if slugStr != "" && !slug.Valid(slugStr) {
		return "Slug may only contain lowercase letters, digits and hyphens."
	}
	if requireAll && !repo.ValidCategory(category) {
		return "Category must be one of: tech, life, tools."
	}
	if category != "" && !repo.ValidCategory(category) {
		return "Category must be one of: tech, life, tools."
	}
	return ""
}

// validateSubCategory checks taxonomy input and returns the first error found.
func validateSubCategory(value, label, icon string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Value is required."
	}
	if !slug.Valid(value) {
		return "Value may only contain lowercase letters, digits and hyphens."
	}
	if utf8.RuneCountInString(value) > maxValueLen {
		return "Value is too long (max 50 characters)."
	}
	if strings.TrimSpace(label) == "" {
		return "Label is required."
	}
	if utf8.RuneCountInString(label) > maxLabelLen {
		return "Label is too long (max 50 characters)."
	}
	if icon == "" {
		return "Icon is required."
	}
	if utf8.RuneCountInString(icon) > maxIconLen {
		return "Icon is too long (max 10 characters)."
	}
	return ""
}

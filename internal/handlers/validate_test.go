package handlers

import (
	"strings"
	"testing"
)

func TestValidatePost(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		excerpt    string
		content    string
		tags       []string
		slug       string
		category   string
		requireAll bool
		wantErr    bool
	}{
		{"valid full", "A Title", "short", "body", []string{"go"}, "a-title", "tech", true, false},
		{"valid partial update", "", "", "", nil, "", "", false, false},
		{"missing title on create", "", "", "body", nil, "", "tech", true, true},
		{"missing content on create", "T", "", "", nil, "", "life", true, true},
		{"whitespace content on create", "T", "", "  \n", nil, "", "life", true, true},
		{"empty content on update", "T", "", "", nil, "", "life", false, false},
		{"title at limit", strings.Repeat("a", 200), "", "body", nil, "", "life", true, false},
		{"title over limit", strings.Repeat("a", 201), "", "body", nil, "", "life", true, true},
		{"excerpt over limit", "T", strings.Repeat("x", 501), "body", nil, "", "life", true, true},
		{"tags at limit", "T", "", "body", make([]string, 10), "", "life", true, false},
		{"tags over limit", "T", "", "body", make([]string, 11), "", "life", true, true},
		{"bad slug", "T", "", "body", nil, "Bad Slug!", "life", true, true},
		{"bad category on create", "T", "", "body", nil, "", "recipes", true, true},
		{"bad category on update", "", "", "", nil, "", "recipes", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validatePost(tt.title, tt.excerpt, tt.content, tt.tags, tt.slug, tt.category, tt.requireAll)
			if (msg != "") != tt.wantErr {
				t.Errorf("validatePost() = %q, wantErr %v", msg, tt.wantErr)
			}
		})
	}
}

func TestValidateSubCategory(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		label   string
		icon    string
		wantErr bool
	}{
		{"valid", "devops", "DevOps", "🚀", false},
		{"missing value", "", "X", "📁", true},
		{"uppercase value", "DevOps", "X", "📁", true},
		{"missing label", "ok", "", "📁", true},
		{"missing icon", "ok", "X", "", true},
		{"value too long", strings.Repeat("a", 51), "X", "📁", true},
		{"label too long", "ok", strings.Repeat("a", 51), "📁", true},
		{"icon too long", "ok", "X", strings.Repeat("x", 11), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validateSubCategory(tt.value, tt.label, tt.icon)
			if (msg != "") != tt.wantErr {
				t.Errorf("validateSubCategory() = %q, wantErr %v", msg, tt.wantErr)
			}
		})
	}
}

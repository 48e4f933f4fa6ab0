// Package frontmatter encodes and decodes the YAML metadata block at the top
// of a Markdown post file. A post file looks like:
//
//	---
//	title: Hello
//	date: "2026-03-01"
//	tags: [go, blog]
//	category: tech
//	subCategory: backend
//	---
//	# Body starts here
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Meta is the structured metadata carried in a post's frontmatter block.
// Date is kept as an ISO calendar date string (YYYY-MM-DD) exactly as stored.
type Meta struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Excerpt     string   `yaml:"excerpt,omitempty"`
	Tags        []string `yaml:"tags"`
	Category    string   `yaml:"category"`
	SubCategory string   `yaml:"subCategory,omitempty"`
}

// Parse splits a post file into its metadata and Markdown body. Files without
// a frontmatter block yield zero-value metadata and the full input as body.
func Parse(src []byte) (Meta, string, error) {
	var meta Meta

	text := string(src)
	if !strings.HasPrefix(text, delimiter+"\n") && !strings.HasPrefix(text, delimiter+"\r\n") {
		return meta, text, nil
	}

	rest := text[strings.Index(text, "\n")+1:]
	blockEnd, bodyStart := closingDelimiter(rest)
	if blockEnd == -1 {
		// Unterminated block: treat the whole file as body.
		return meta, text, nil
	}

	if err := yaml.Unmarshal([]byte(rest[:blockEnd]), &meta); err != nil {
		return Meta{}, "", fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta, rest[bodyStart:], nil
}

// closingDelimiter finds the first line consisting of exactly "---" and
// returns the offset where that line starts and the offset just past it.
// A line that merely begins with "---" (a "----" YAML value, say) does not
// close the block. Returns (-1, -1) when no closing line exists.
func closingDelimiter(s string) (int, int) {
	offset := 0
	for {
		line := s[offset:]
		next := len(s)
		if i := strings.IndexByte(line, '\n'); i != -1 {
			line = line[:i]
			next = offset + i + 1
		}
		if strings.TrimSuffix(line, "\r") == delimiter {
			return offset, next
		}
		if next == len(s) {
			return -1, -1
		}
		offset = next
	}
}

// Render serializes metadata and body back into post file form.
func Render(meta Meta, body string) ([]byte, error) {
	if meta.Tags == nil {
		meta.Tags = []string{}
	}

	block, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("render frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	buf.Write(block)
	buf.WriteString(delimiter + "\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

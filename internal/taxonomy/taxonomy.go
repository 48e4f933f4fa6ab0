// Package taxonomy manages the dynamic sub-category tree under the fixed
// "tech" category. The tree persists as a single categories.json document in
// the content root; every mutation is a whole-file read-modify-write guarded
// by one mutex so concurrent admin edits cannot lose updates.
package taxonomy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Errors returned by taxonomy operations. Handlers map these onto HTTP statuses.
var (
	ErrExists         = errors.New("taxonomy: sub-category already exists")
	ErrNotFound       = errors.New("taxonomy: sub-category not found")
	ErrParentNotFound = errors.New("taxonomy: parent sub-category not found")
	ErrProtected      = errors.New("taxonomy: default sub-category cannot be deleted")
)

// NotEmptyError is returned when a sub-category still holds post files.
type NotEmptyError struct {
	Value string
	Count int
}

func (e *NotEmptyError) Error() string {
	return fmt.Sprintf("taxonomy: sub-category %q still contains %d post(s)", e.Value, e.Count)
}

// SubCategory is one node of the tree. Children nest exactly one level.
type SubCategory struct {
	Value    string        `json:"value"`
	Label    string        `json:"label"`
	Icon     string        `json:"icon"`
	Children []SubCategory `json:"children,omitempty"`
}

// Tree is the persisted document shape of categories.json.
type Tree struct {
	TechSubCategories []SubCategory `json:"techSubCategories"`
}

// protected lists the default sub-categories that can never be deleted and
// whose directories are guaranteed to exist.
var protected = map[string]bool{
	"frontend": true,
	"backend":  true,
	"ai":       true,
	"other":    true,
}

// defaultTree returns the out-of-the-box sub-category set.
func defaultTree() Tree {
	return Tree{TechSubCategories: []SubCategory{
		{Value: "frontend", Label: "Frontend", Icon: "🎨", Children: []SubCategory{}},
		{Value: "backend", Label: "Backend", Icon: "⚙️", Children: []SubCategory{}},
		{Value: "ai", Label: "AI / ML", Icon: "🤖", Children: []SubCategory{}},
		{Value: "other", Label: "Other", Icon: "📚", Children: []SubCategory{}},
	}}
}

// Store owns categories.json and the sub-category directories under tech/.
type Store struct {
	mu         sync.Mutex
	contentDir string
	configPath string
}

// NewStore creates a taxonomy store rooted at the given content directory.
func NewStore(contentDir string) *Store {
	return &Store{
		contentDir: contentDir,
		configPath: filepath.Join(contentDir, "categories.json"),
	}
}

// EnsureDefaults creates the protected sub-category directories and the
// top-level life/ and tools/ directories. Called at startup and before reads
// so a fresh content root is always usable.
func (s *Store) EnsureDefaults() error {
	dirs := []string{
		filepath.Join(s.contentDir, "tech", "frontend"),
		filepath.Join(s.contentDir, "tech", "backend"),
		filepath.Join(s.contentDir, "tech", "ai"),
		filepath.Join(s.contentDir, "tech", "other"),
		filepath.Join(s.contentDir, "life"),
		filepath.Join(s.contentDir, "tools"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}
	return nil
}

// Tree returns the current sub-category tree, falling back to the defaults
// when categories.json does not exist yet.
func (s *Store) Tree() (Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add inserts a new sub-category. With parent == "" it becomes a top-level
// tech sub-category; otherwise it is appended to that parent's children.
// The backing directory is created. Value must be unique among its siblings.
func (s *Store) Add(entry SubCategory, parent string) (Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.load()
	if err != nil {
		return Tree{}, err
	}

	if entry.Icon == "" {
		entry.Icon = "📁"
	}

	if parent == "" {
		for _, c := range tree.TechSubCategories {
			if c.Value == entry.Value {
				return Tree{}, ErrExists
			}
		}
		entry.Children = []SubCategory{}
		tree.TechSubCategories = append(tree.TechSubCategories, entry)
	} else {
		idx := indexOf(tree.TechSubCategories, parent)
		if idx == -1 {
			return Tree{}, ErrParentNotFound
		}
		p := &tree.TechSubCategories[idx]
		for _, c := range p.Children {
			if c.Value == entry.Value {
				return Tree{}, ErrExists
			}
		}
		entry.Children = nil // no further nesting
		p.Children = append(p.Children, entry)
	}

	if err := os.MkdirAll(s.dirFor(entry.Value, parent), 0o755); err != nil {
		return Tree{}, fmt.Errorf("create sub-category directory: %w", err)
	}
	if err := s.save(tree); err != nil {
		return Tree{}, err
	}
	return tree, nil
}

// Remove deletes a sub-category. Protected defaults are refused outright;
// a sub-category whose directory still contains .md files is refused with a
// NotEmptyError carrying the blocking count. The emptied directory is removed.
func (s *Store) Remove(value, parent string) (Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.load()
	if err != nil {
		return Tree{}, err
	}

	if parent == "" && protected[value] {
		return Tree{}, ErrProtected
	}

	dir := s.dirFor(value, parent)
	if count, err := countPosts(dir); err != nil {
		return Tree{}, err
	} else if count > 0 {
		return Tree{}, &NotEmptyError{Value: value, Count: count}
	}

	if parent == "" {
		idx := indexOf(tree.TechSubCategories, value)
		if idx == -1 {
			return Tree{}, ErrNotFound
		}
		tree.TechSubCategories = append(tree.TechSubCategories[:idx], tree.TechSubCategories[idx+1:]...)
	} else {
		pidx := indexOf(tree.TechSubCategories, parent)
		if pidx == -1 {
			return Tree{}, ErrParentNotFound
		}
		p := &tree.TechSubCategories[pidx]
		cidx := indexOf(p.Children, value)
		if cidx == -1 {
			return Tree{}, ErrNotFound
		}
		p.Children = append(p.Children[:cidx], p.Children[cidx+1:]...)
	}

	if err := os.RemoveAll(dir); err != nil {
		return Tree{}, fmt.Errorf("remove sub-category directory: %w", err)
	}
	if err := s.save(tree); err != nil {
		return Tree{}, err
	}
	return tree, nil
}

// dirFor resolves the backing directory of a sub-category.
func (s *Store) dirFor(value, parent string) string {
	if parent != "" {
		return filepath.Join(s.contentDir, "tech", parent, value)
	}
	return filepath.Join(s.contentDir, "tech", value)
}

// load reads categories.json; the caller must hold the mutex.
func (s *Store) load() (Tree, error) {
	data, err := os.ReadFile(s.configPath)
	if errors.Is(err, os.ErrNotExist) {
		return defaultTree(), nil
	}
	if err != nil {
		return Tree{}, fmt.Errorf("read categories config: %w", err)
	}

	var tree Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return Tree{}, fmt.Errorf("parse categories config: %w", err)
	}
	if tree.TechSubCategories == nil {
		tree = defaultTree()
	}
	return tree, nil
}

// save writes the whole document back; the caller must hold the mutex.
func (s *Store) save(tree Tree) error {
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("encode categories config: %w", err)
	}
	if err := os.WriteFile(s.configPath, data, 0o644); err != nil {
		return fmt.Errorf("write categories config: %w", err)
	}
	return nil
}

func indexOf(list []SubCategory, value string) int {
	for i, c := range list {
		if c.Value == value {
			return i
		}
	}
	return -1
}

// countPosts counts .md files directly inside dir. A missing directory
// counts as empty.
func countPosts(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read sub-category directory: %w", err)
	}

	count := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			count++
		}
	}
	return count, nil
}

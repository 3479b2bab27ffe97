package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is one row of a Table.
type Category struct {
	Key   string `json:"key" yaml:"key"`
	Title string `json:"title" yaml:"title"`
}

// Table is an ordered mapping from category key to display title. The zero
// value is an empty table. Lookups are exact and case sensitive.
type Table struct {
	order  []string
	titles map[string]string
}

// NewTable builds a table from categories in order. A repeated key keeps its
// first position and takes the last title.
func NewTable(categories ...Category) Table {
	var t Table
	for _, c := range categories {
		t.set(c.Key, c.Title)
	}
	return t
}

func (t *Table) set(key, title string) {
	if t.titles == nil {
		t.titles = make(map[string]string)
	}
	if _, ok := t.titles[key]; !ok {
		t.order = append(t.order, key)
	}
	t.titles[key] = title
}

// Lookup returns the title registered for key.
func (t Table) Lookup(key string) (string, bool) {
	title, ok := t.titles[key]
	return title, ok
}

// Title returns the registered title for key, or key itself.
func (t Table) Title(key string) string {
	if title, ok := t.titles[key]; ok {
		return title
	}
	return key
}

// Len reports the number of categories.
func (t Table) Len() int {
	return len(t.order)
}

// Categories returns the rows in table order.
func (t Table) Categories() []Category {
	out := make([]Category, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, Category{Key: key, Title: t.titles[key]})
	}
	return out
}

// Merge returns a new table with other's titles laid over t. Keys new to t
// are appended in other's order.
func (t Table) Merge(other Table) Table {
	out := NewTable(t.Categories()...)
	for _, c := range other.Categories() {
		out.set(c.Key, c.Title)
	}
	return out
}

// MarshalJSON encodes the table as an ordered list of categories.
func (t Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Categories())
}

type tableDocument struct {
	Categories []Category `yaml:"categories"`
}

// LoadTable parses a YAML (or JSON) document of the form
//
//	categories:
//	  - key: section-hero
//	    title: Hero
//
// Keys must be non-empty and unique.
func LoadTable(r io.Reader) (Table, error) {
	if r == nil {
		return Table{}, errors.New("classify: missing reader")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("classify: read table: %w", err)
	}

	var doc tableDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Table{}, fmt.Errorf("classify: parse table: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Categories))
	categories := make([]Category, 0, len(doc.Categories))
	for i, c := range doc.Categories {
		key := strings.TrimSpace(c.Key)
		if key == "" {
			return Table{}, fmt.Errorf("classify: category %d has an empty key", i)
		}
		if _, dup := seen[key]; dup {
			return Table{}, fmt.Errorf("classify: duplicate category %q", key)
		}
		seen[key] = struct{}{}
		title := strings.TrimSpace(c.Title)
		if title == "" {
			title = key
		}
		categories = append(categories, Category{Key: key, Title: title})
	}
	return NewTable(categories...), nil
}

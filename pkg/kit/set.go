package kit

import "encoding/json"

// TemplateSet is an insertion-ordered mapping from template id to Template.
// The zero value is an empty set ready to use. A TemplateSet copied by value
// shares storage with the original; call Clone before mutating a copy.
type TemplateSet struct {
	order []int
	items map[int]Template
}

// NewTemplateSet builds a set from templates in the given order. Later
// templates replace earlier ones that share an id.
func NewTemplateSet(templates ...Template) TemplateSet {
	var set TemplateSet
	for _, tpl := range templates {
		set.Set(tpl)
	}
	return set
}

// Set stores tpl under its id. Replacing an existing id keeps its position.
func (s *TemplateSet) Set(tpl Template) {
	if s.items == nil {
		s.items = make(map[int]Template)
	}
	if _, exists := s.items[tpl.ID]; !exists {
		s.order = append(s.order, tpl.ID)
	}
	s.items[tpl.ID] = tpl
}

// Get returns the template stored under id.
func (s TemplateSet) Get(id int) (Template, bool) {
	tpl, ok := s.items[id]
	return tpl, ok
}

// Len reports the number of templates.
func (s TemplateSet) Len() int {
	return len(s.order)
}

// IDs returns the template ids in iteration order.
func (s TemplateSet) IDs() []int {
	return append([]int(nil), s.order...)
}

// Values returns the templates in iteration order.
func (s TemplateSet) Values() []Template {
	out := make([]Template, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Range calls fn for each template in order until fn returns false.
func (s TemplateSet) Range(fn func(Template) bool) {
	for _, id := range s.order {
		if !fn(s.items[id]) {
			return
		}
	}
}

// Clone returns an independent copy of the set.
func (s TemplateSet) Clone() TemplateSet {
	out := TemplateSet{
		order: append([]int(nil), s.order...),
		items: make(map[int]Template, len(s.items)),
	}
	for id, tpl := range s.items {
		out.items[id] = tpl
	}
	return out
}

// MarshalJSON encodes the set as an array in iteration order.
func (s TemplateSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes an array of templates, keeping declaration order.
func (s *TemplateSet) UnmarshalJSON(data []byte) error {
	var templates []Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return err
	}
	*s = NewTemplateSet(templates...)
	return nil
}

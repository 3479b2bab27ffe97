package classify

import "github.com/goliatone/go-templatekit/pkg/kit"

// Group pairs a category title with the templates assigned to it.
type Group struct {
	Title     string         `json:"title"`
	Templates []kit.Template `json:"templates"`
}

// Result holds the classifiable templates both flat and grouped.
type Result struct {
	Templates []kit.Template `json:"templates"`
	Grouped   []Group        `json:"templatesGrouped"`
}

// Classify drops templates without a category key and buckets the rest by
// their template_type. Groups appear in the order their key is first seen;
// templates keep their relative order in both the flat list and each group.
// Inputs are read only; the returned slices are freshly allocated.
func Classify(templates kit.TemplateSet, table Table) Result {
	result := Result{
		Templates: make([]kit.Template, 0, templates.Len()),
		Grouped:   []Group{},
	}
	index := make(map[string]int)

	templates.Range(func(tpl kit.Template) bool {
		key := tpl.Metadata.TemplateType()
		if key == "" {
			return true
		}
		pos, ok := index[key]
		if !ok {
			pos = len(result.Grouped)
			index[key] = pos
			result.Grouped = append(result.Grouped, Group{
				Title:     table.Title(key),
				Templates: []kit.Template{},
			})
		}
		result.Grouped[pos].Templates = append(result.Grouped[pos].Templates, tpl)
		result.Templates = append(result.Templates, tpl)
		return true
	})

	return result
}

// MergeKits unions the templates of every kit in order. When two kits share a
// template id the later kit's template wins; the id keeps the position it
// was first seen at.
func MergeKits(kits ...kit.Kit) kit.TemplateSet {
	var merged kit.TemplateSet
	for _, k := range kits {
		k.Templates.Range(func(tpl kit.Template) bool {
			merged.Set(tpl)
			return true
		})
	}
	return merged
}

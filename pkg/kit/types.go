package kit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// TemplateTypeKey is the metadata field used to categorise templates.
const TemplateTypeKey = "template_type"

// Metadata carries free-form template metadata. Only template_type is
// interpreted by this module.
type Metadata map[string]any

// TemplateType returns the category key. Scalars are converted to strings
// the way WordPress would use them as array keys (42 becomes "42", true
// becomes "1"). Missing metadata and empty values (nil, false, 0, "", "0",
// empty lists and objects) yield "".
func (m Metadata) TemplateType() string {
	if len(m) == 0 {
		return ""
	}
	return categoryKey(m[TemplateTypeKey])
}

func categoryKey(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		if v == "0" {
			return ""
		}
		return v
	case bool:
		if v {
			return "1"
		}
		return ""
	case float64:
		if v == 0 {
			return ""
		}
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'G', 14, 64)
	case float32:
		return categoryKey(float64(v))
	case int:
		return categoryKey(int64(v))
	case int64:
		if v == 0 {
			return ""
		}
		return strconv.FormatInt(v, 10)
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return ""
		}
		return v.String()
	case []any:
		if len(v) == 0 {
			return ""
		}
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
	}
	// Non-empty lists and objects have no string form; their compact JSON
	// keeps them grouped instead of dropped.
	data, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(data)
}

// UnmarshalJSON accepts any JSON value. Anything other than an object decodes
// to nil metadata, which covers the [] that WordPress writes for empty metadata.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		*m = nil
		return nil
	}
	*m = Metadata(obj)
	return nil
}

// Template is one importable page or section design.
type Template struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Screenshot string   `json:"screenshot,omitempty"`
	Source     string   `json:"source,omitempty"`
	Metadata   Metadata `json:"metadata,omitempty"`

	// ImportedTemplateID is set once the template has been imported.
	ImportedTemplateID int `json:"imported_template_id,omitempty"`

	// Extra holds manifest fields not modelled above. They are written back
	// after the known fields, sorted by key.
	Extra map[string]any `json:"-"`
}

type templateFields Template

var templateKeys = map[string]bool{
	"id":                   true,
	"name":                 true,
	"screenshot":           true,
	"source":               true,
	"metadata":             true,
	"imported_template_id": true,
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (t *Template) UnmarshalJSON(data []byte) error {
	var fields templateFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		if templateKeys[key] {
			continue
		}
		if fields.Extra == nil {
			fields.Extra = make(map[string]any)
		}
		fields.Extra[key] = value
	}
	*t = Template(fields)
	return nil
}

// MarshalJSON writes the known fields followed by Extra.
func (t Template) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(templateFields(t))
	if err != nil || len(t.Extra) == 0 {
		return data, err
	}

	keys := make([]string, 0, len(t.Extra))
	for key := range t.Extra {
		if !templateKeys[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	for _, key := range keys {
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(t.Extra[key])
		if err != nil {
			return nil, fmt.Errorf("kit: template %d field %s: %w", t.ID, key, err)
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Setting describes a site setting a kit expects to be present.
type Setting map[string]any

// Plugin describes a plugin a kit depends on.
type Plugin struct {
	Name    string `json:"name"`
	File    string `json:"file,omitempty"`
	Author  string `json:"author,omitempty"`
	Version string `json:"version,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Requirements lists what a kit needs from the site.
type Requirements struct {
	Settings []Setting `json:"settings"`
	Plugins  []Plugin  `json:"plugins,omitempty"`
}

// Normalized returns a copy with Settings defaulted to an empty list.
func (r Requirements) Normalized() Requirements {
	out := Requirements{
		Settings: append([]Setting{}, r.Settings...),
	}
	if len(r.Plugins) > 0 {
		out.Plugins = append([]Plugin(nil), r.Plugins...)
	}
	return out
}

// Kit is an installed template kit.
type Kit struct {
	ID           int          `json:"id"`
	Title        string       `json:"title"`
	Version      string       `json:"version,omitempty"`
	Screenshot   string       `json:"screenshot,omitempty"`
	Requirements Requirements `json:"requirements"`
	Templates    TemplateSet  `json:"templates"`
}

// Summary is the list view of an installed kit.
type Summary struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Version       string `json:"version,omitempty"`
	Screenshot    string `json:"screenshot,omitempty"`
	TemplateCount int    `json:"template_count"`
}

// Summarize builds the list view for k.
func (k Kit) Summarize() Summary {
	return Summary{
		ID:            k.ID,
		Title:         k.Title,
		Version:       k.Version,
		Screenshot:    k.Screenshot,
		TemplateCount: k.Templates.Len(),
	}
}

// TemplateData is the raw builder export of a template, ready for the
// builder's own importer.
type TemplateData struct {
	TemplateJSON any `json:"template_json"`
}

// ImportResult reports the library entry created for an imported template.
type ImportResult struct {
	ImportedTemplateID int    `json:"imported_template_id"`
	Title              string `json:"title,omitempty"`
	// Reused is true when an earlier import was returned instead of a new one.
	Reused bool `json:"reused,omitempty"`
}

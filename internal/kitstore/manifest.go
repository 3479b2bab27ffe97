package kitstore

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-templatekit/pkg/kit"
)

var manifestNames = []string{
	"manifest.json",
	"manifest.jsonc",
	"manifest.yaml",
	"manifest.yml",
}

func isYAML(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// parseManifest decodes a kit manifest. JSON manifests may carry comments
// and trailing commas; YAML manifests are normalised through JSON so both
// formats share the kit package's decoding rules.
func parseManifest(data []byte, source string) (kit.Kit, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return kit.Kit{}, fmt.Errorf("kitstore: manifest %s is empty", source)
	}

	var raw []byte
	if isYAML(source) {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return kit.Kit{}, fmt.Errorf("kitstore: parse %s: %w", source, err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return kit.Kit{}, fmt.Errorf("kitstore: normalise %s: %w", source, err)
		}
		raw = converted
	} else {
		raw = jsonc.ToJSON(data)
	}

	var out kit.Kit
	if err := json.Unmarshal(raw, &out); err != nil {
		return kit.Kit{}, fmt.Errorf("kitstore: parse %s: %w", source, err)
	}
	if out.ID <= 0 {
		return kit.Kit{}, fmt.Errorf("kitstore: manifest %s has no positive id", source)
	}
	return out, nil
}

// parseExport decodes a builder export file. The result is whatever JSON
// value the file holds; callers check for an object where they need one.
func parseExport(data []byte, source string) (any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("kitstore: export %s is empty", source)
	}
	var out any
	if err := json.Unmarshal(jsonc.ToJSON(data), &out); err != nil {
		return nil, fmt.Errorf("kitstore: parse %s: %w", source, err)
	}
	return out, nil
}

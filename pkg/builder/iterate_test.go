package builder

import (
	"encoding/json"
	"regexp"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleContent = `[
  {"id": "a1", "elType": "section", "elements": [
    {"id": "b1", "elType": "column", "elements": [
      {"id": "c1", "elType": "widget", "widgetType": "heading", "settings": {"title": "Hi"}, "elements": []}
    ]}
  ]},
  {"id": "a2", "elType": "container", "elements": []}
]`

func decodeContent(t *testing.T, raw string) []Element {
	t.Helper()
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("decode content: %v", err)
	}
	return FromAny(decoded)
}

func sequentialIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return "n" + strconv.Itoa(n)
	}
}

func collectIDs(content []Element) []string {
	var ids []string
	for _, element := range content {
		ids = append(ids, element.ID())
		ids = append(ids, collectIDs(element.Children())...)
	}
	return ids
}

func TestReassign_AssignsFreshIDsDepthFirst(t *testing.T) {
	content := decodeContent(t, sampleContent)

	got := Reassign(content, sequentialIDs())

	if diff := cmp.Diff([]string{"n1", "n2", "n3", "n4"}, collectIDs(got)); diff != "" {
		t.Fatalf("unexpected ids (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a1", "b1", "c1", "a2"}, collectIDs(content)); diff != "" {
		t.Fatalf("input tree was mutated (-want +got):\n%s", diff)
	}
}

func TestReassign_PreservesOtherFields(t *testing.T) {
	content := decodeContent(t, sampleContent)

	got := Reassign(content, sequentialIDs())

	widget := got[0].Children()[0].Children()[0]
	if widget.Type() != "widget" {
		t.Fatalf("expected widget, got %q", widget.Type())
	}
	if widget["widgetType"] != "heading" {
		t.Fatalf("expected widgetType to survive, got %#v", widget["widgetType"])
	}
	settings, ok := widget["settings"].(map[string]any)
	if !ok || settings["title"] != "Hi" {
		t.Fatalf("expected settings to survive, got %#v", widget["settings"])
	}
}

func TestIterate_NilDropsElement(t *testing.T) {
	content := decodeContent(t, sampleContent)

	got := Iterate(content, func(element Element) Element {
		if element.Type() == "column" {
			return nil
		}
		return element
	})

	if diff := cmp.Diff([]string{"a1", "a2"}, collectIDs(got)); diff != "" {
		t.Fatalf("unexpected ids (-want +got):\n%s", diff)
	}
}

func TestIterate_NilContent(t *testing.T) {
	if got := Iterate(nil, nil); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
}

func TestCount(t *testing.T) {
	if got := Count(decodeContent(t, sampleContent)); got != 4 {
		t.Fatalf("expected 4 elements, got %d", got)
	}
}

func TestRandomID_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{1,7}$`)
	for i := 0; i < 100; i++ {
		id := RandomID()
		if !pattern.MatchString(id) {
			t.Fatalf("unexpected id format: %q", id)
		}
	}
}

func TestFromAny_NonArray(t *testing.T) {
	if got := FromAny(map[string]any{"id": "x"}); got != nil {
		t.Fatalf("expected nil for non-array input, got %#v", got)
	}
}

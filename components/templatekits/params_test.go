package templatekits

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCastInt(t *testing.T) {
	cases := map[string]int{
		"":                     0,
		"abc":                  0,
		"12":                   12,
		"  7":                  7,
		"42abc":                42,
		"3.9":                  3,
		"-5":                   -5,
		"+8":                   8,
		"-":                    0,
		"99999999999999999999": maxInt,
	}
	for in, want := range cases {
		if got := castInt(in); got != want {
			t.Fatalf("castInt(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestReadParams_BodyOverridesQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x?id=1&url=query", strings.NewReader(`{"id":2,"flag":"true","nested":{"a":1}}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	p, err := readParams(httptest.NewRecorder(), req, 1024)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.integer("id") != 2 || p.get("url") != "query" || !p.flag("flag") {
		t.Fatalf("unexpected params: %#v", p)
	}
	if p.get("nested") != "" {
		t.Fatalf("expected nested values to be ignored")
	}
}

func TestReadParams_JSONBooleansCastLikeStrings(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x?importAgain=true&count=5", strings.NewReader(`{"importAgain":true,"insertToPage":false,"count":true}`))
	req.Header.Set("Content-Type", "application/json")
	p, err := readParams(httptest.NewRecorder(), req, 1024)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.flag("importAgain") || p.flag("insertToPage") {
		t.Fatalf("expected boolean body values not to enable flags")
	}
	if p.get("importAgain") != "1" || p.get("insertToPage") != "" {
		t.Fatalf("unexpected cast values %q %q", p.get("importAgain"), p.get("insertToPage"))
	}
	if p.integer("count") != 1 {
		t.Fatalf("expected true to cast to 1, got %d", p.integer("count"))
	}
}

func TestReadParams_BodyTooLarge(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"id":"`+strings.Repeat("9", 64)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	_, err := readParams(httptest.NewRecorder(), req, 16)
	var statusErr StatusError
	if err == nil || !asStatus(err, &statusErr) || statusErr.StatusCode() != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 status error, got %v", err)
	}
}

func TestReadParams_GetIgnoresBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?id=3", strings.NewReader(`{"id":4}`))
	req.Header.Set("Content-Type", "application/json")
	p, err := readParams(httptest.NewRecorder(), req, 1024)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.integer("id") != 3 {
		t.Fatalf("expected query id, got %d", p.integer("id"))
	}
}

func asStatus(err error, target *StatusError) bool {
	se, ok := err.(StatusError)
	if ok {
		*target = se
	}
	return ok
}

package templatekits

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// params holds request parameters. Body values take precedence over the
// query string.
type params struct {
	body  map[string]string
	query url.Values
}

func readParams(w http.ResponseWriter, r *http.Request, maxBytes int64) (params, error) {
	p := params{query: r.URL.Query(), body: map[string]string{}}
	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
		return p, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		data, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
		if err != nil {
			return p, fmt.Errorf("templatekits: read body: %w", err)
		}
		if int64(len(data)) > maxBytes {
			return p, StatusError{Code: http.StatusRequestEntityTooLarge, Err: errors.New("request body too large")}
		}
		if len(strings.TrimSpace(string(data))) == 0 {
			return p, nil
		}
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return p, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("invalid JSON body: %w", err)}
		}
		for key, value := range raw {
			if s, ok := stringify(value); ok {
				p.body[key] = s
			}
		}
	case "application/x-www-form-urlencoded", "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseForm(); err != nil {
			return p, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("invalid form body: %w", err)}
		}
		for key, values := range r.PostForm {
			if len(values) > 0 {
				p.body[key] = values[0]
			}
		}
	}
	return p, nil
}

// stringify converts a JSON scalar the way PHP casts it to a string, so a
// boolean true reads as "1" and never satisfies flag.
func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		if v {
			return "1", true
		}
		return "", true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case nil:
		return "", false
	default:
		return "", false
	}
}

func (p params) get(name string) string {
	if v, ok := p.body[name]; ok {
		return v
	}
	return p.query.Get(name)
}

func (p params) integer(name string) int {
	return castInt(p.get(name))
}

func (p params) flag(name string) bool {
	return p.get(name) == "true"
}

// castInt parses the leading integer of raw: surrounding whitespace and a
// sign are allowed, anything after the digits is ignored and a value with no
// leading digits is 0.
func castInt(raw string) int {
	s := strings.TrimLeft(raw, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		if s[0] == '-' {
			return minInt
		}
		return maxInt
	}
	return n
}

const (
	maxInt = int(^uint(0) >> 1)
	minInt = -maxInt - 1
)

package media

import (
	"net/url"
	"strings"
)

// EncodePath percent-encodes every segment of the URL's path, keeping the
// slashes between segments. Segments are encoded the way form values are, so
// spaces become "+"; segments that are already encoded are decoded first so
// they are not encoded twice. The rest of the URL is left untouched.
func EncodePath(raw string) string {
	prefix, path, suffix := splitPath(raw)
	if path == "" {
		return raw
	}
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if decoded, err := url.PathUnescape(segment); err == nil {
			segment = decoded
		}
		segments[i] = url.QueryEscape(segment)
	}
	return prefix + strings.Join(segments, "/") + suffix
}

func splitPath(raw string) (prefix, path, suffix string) {
	start := 0
	if i := strings.Index(raw, "://"); i >= 0 {
		start = i + len("://")
		slash := strings.IndexByte(raw[start:], '/')
		if slash < 0 {
			return raw, "", ""
		}
		if stop := strings.IndexAny(raw[start:], "?#"); stop >= 0 && stop < slash {
			return raw, "", ""
		}
		start += slash
	}
	end := len(raw)
	if stop := strings.IndexAny(raw[start:], "?#"); stop >= 0 {
		end = start + stop
	}
	return raw[:start], raw[start:end], raw[end:]
}

// ValidURL reports whether raw is an absolute http or https URL with a host.
func ValidURL(raw string) bool {
	if strings.TrimSpace(raw) == "" || strings.ContainsAny(raw, " \t\r\n") {
		return false
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

// beaconURL appends the kit and image query used to report broken images.
func beaconURL(base, kitName, image string) string {
	return base + "?kit=" + url.QueryEscape(kitName) + "&image=" + url.QueryEscape(image)
}

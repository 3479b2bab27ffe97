package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// maxImageBytes caps a single download.
const maxImageBytes = 20 << 20

// DirLibrary is a Library that downloads images into a directory. Images are
// de-duplicated by their source id: importing the same id twice returns the
// first attachment.
type DirLibrary struct {
	dir     string
	baseURL string
	client  *http.Client

	mu     sync.Mutex
	nextID int
	bySrc  map[int]Attachment
}

var _ Library = (*DirLibrary)(nil)

// NewDirLibrary stores files under dir and builds attachment URLs by joining
// baseURL with the stored file name. A nil client uses http.DefaultClient.
func NewDirLibrary(dir, baseURL string, client *http.Client) (*DirLibrary, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("media: library directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create library directory: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &DirLibrary{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		nextID:  1,
		bySrc:   make(map[int]Attachment),
	}, nil
}

// Import downloads img and stores it. Responses that are not images are
// rejected so error pages never end up in the library.
func (l *DirLibrary) Import(ctx context.Context, img Image) (Attachment, error) {
	l.mu.Lock()
	if existing, ok := l.bySrc[img.ID]; ok {
		l.mu.Unlock()
		return existing, nil
	}
	l.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, img.URL, nil)
	if err != nil {
		return Attachment{}, fmt.Errorf("media: build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return Attachment{}, fmt.Errorf("media: download %s: %w", img.URL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Attachment{}, fmt.Errorf("media: download %s: unexpected status %s", img.URL, resp.Status)
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return Attachment{}, fmt.Errorf("media: %s is not an image (%q)", img.URL, resp.Header.Get("Content-Type"))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return Attachment{}, fmt.Errorf("media: read %s: %w", img.URL, err)
	}
	if len(data) > maxImageBytes {
		return Attachment{}, fmt.Errorf("media: %s exceeds %d bytes", img.URL, maxImageBytes)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.bySrc[img.ID]; ok {
		return existing, nil
	}

	id := l.nextID
	name := strconv.Itoa(id) + "-" + fileName(img.URL, mediaType)
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o644); err != nil {
		return Attachment{}, fmt.Errorf("media: write %s: %w", name, err)
	}
	l.nextID++

	attachment := Attachment{ID: id, URL: l.baseURL + "/" + url.PathEscape(name)}
	l.bySrc[img.ID] = attachment
	return attachment, nil
}

func fileName(rawURL, mediaType string) string {
	base := "image"
	if parsed, err := url.Parse(rawURL); err == nil {
		if b := path.Base(parsed.Path); b != "" && b != "/" && b != "." {
			base = b
		}
	}

	var sb strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	name := strings.Trim(sb.String(), ".-")
	if name == "" {
		name = "image"
	}
	if path.Ext(name) == "" {
		if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
			name += exts[0]
		}
	}
	return name
}

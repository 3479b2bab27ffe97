package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-templatekit/pkg/testsupport"
)

func TestEncodePath(t *testing.T) {
	cases := map[string]string{
		"https://example.com/uploads/my image.png":     "https://example.com/uploads/my+image.png",
		"https://example.com/a%20b/c.png?x=1 2#frag":   "https://example.com/a+b/c.png?x=1 2#frag",
		"https://example.com/café.png":                 "https://example.com/caf%C3%A9.png",
		"https://example.com":                          "https://example.com",
		"https://example.com?q=/a b":                   "https://example.com?q=/a b",
		"https://example.com/2024/01/hero(1)&more.jpg": "https://example.com/2024/01/hero%281%29%26more.jpg",
	}
	for in, want := range cases {
		if got := EncodePath(in); got != want {
			t.Fatalf("EncodePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidURL(t *testing.T) {
	valid := []string{"https://example.com/a.png", "http://127.0.0.1:8080/x"}
	invalid := []string{"", "example.com/a.png", "ftp://example.com/a.png", "https:///a.png", "https://example.com/a b.png", "/relative"}
	for _, raw := range valid {
		if !ValidURL(raw) {
			t.Fatalf("expected %q to be valid", raw)
		}
	}
	for _, raw := range invalid {
		if ValidURL(raw) {
			t.Fatalf("expected %q to be invalid", raw)
		}
	}
}

type fakeLibrary struct {
	mu       sync.Mutex
	imported []Image
	err      error
}

func (f *fakeLibrary) Import(_ context.Context, img Image) (Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Attachment{}, f.err
	}
	f.imported = append(f.imported, img)
	return Attachment{ID: 100 + len(f.imported), URL: "https://site.test/uploads/" + filepath.Base(img.URL)}, nil
}

func TestImporter_ImportsExistingImage(t *testing.T) {
	srv, heads := testsupport.ImageServer(t)
	library := &fakeLibrary{}
	importer := NewImporter(WithLibrary(library), WithClient(srv.Client()))

	res, err := importer.Import(context.Background(), Request{ID: 9, URL: srv.URL + "/images/hero shot.png", KitName: "Starter"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Attachment == nil || res.Attachment.ID != 101 {
		t.Fatalf("unexpected result: %#v", res)
	}
	want := []Image{{ID: 9, URL: srv.URL + "/images/hero+shot.png"}}
	if diff := cmp.Diff(want, library.imported); diff != "" {
		t.Fatalf("unexpected library calls (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/images/hero+shot.png"}, heads.Paths()); diff != "" {
		t.Fatalf("unexpected HEAD requests (-want +got):\n%s", diff)
	}
}

func TestImporter_MissingImageUsesPlaceholder(t *testing.T) {
	srv, heads := testsupport.ImageServer(t)
	library := &fakeLibrary{}
	placeholder := srv.URL + "/images/placeholder.png"
	importer := NewImporter(
		WithLibrary(library),
		WithClient(srv.Client()),
		WithPlaceholderURL(placeholder),
	)

	original := srv.URL + "/gone/hero.png"
	res, err := importer.Import(context.Background(), Request{ID: 3, URL: original, KitName: "Starter Kit"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Attachment == nil {
		t.Fatalf("expected attachment, got %#v", res)
	}
	if len(library.imported) != 1 || library.imported[0].URL != placeholder {
		t.Fatalf("expected placeholder import, got %#v", library.imported)
	}

	beacon := strings.TrimPrefix(beaconURL(placeholder, "Starter Kit", original), srv.URL)
	if diff := cmp.Diff([]string{"/gone/hero.png", beacon}, heads.Paths()); diff != "" {
		t.Fatalf("unexpected HEAD requests (-want +got):\n%s", diff)
	}
}

func TestImporter_BeaconCarriesEncodedURL(t *testing.T) {
	srv, heads := testsupport.ImageServer(t)
	placeholder := srv.URL + "/images/placeholder.png"
	importer := NewImporter(
		WithLibrary(&fakeLibrary{}),
		WithClient(srv.Client()),
		WithPlaceholderURL(placeholder),
	)

	raw := srv.URL + "/gone/my hero.png"
	if _, err := importer.Import(context.Background(), Request{ID: 5, URL: raw, KitName: "Starter Kit"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	encoded := srv.URL + "/gone/my+hero.png"
	beacon := strings.TrimPrefix(beaconURL(placeholder, "Starter Kit", encoded), srv.URL)
	if diff := cmp.Diff([]string{"/gone/my+hero.png", beacon}, heads.Paths()); diff != "" {
		t.Fatalf("unexpected HEAD requests (-want +got):\n%s", diff)
	}
}

func TestImporter_LibraryFailureReportsMessage(t *testing.T) {
	srv, heads := testsupport.ImageServer(t)
	errorURL := srv.URL + "/images/error.png"
	importer := NewImporter(
		WithLibrary(&fakeLibrary{err: errors.New("disk full")}),
		WithClient(srv.Client()),
		WithErrorURL(errorURL),
	)

	imageURL := srv.URL + "/images/a.png"
	res, err := importer.Import(context.Background(), Request{ID: 4, URL: imageURL, KitName: "K"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := &Failure{ID: 1, Message: "Failed to import the image: " + imageURL}
	if diff := cmp.Diff(want, res.Failure); diff != "" {
		t.Fatalf("unexpected failure (-want +got):\n%s", diff)
	}
	if res.Payload() != res.Failure {
		t.Fatalf("expected failure payload")
	}
	paths := heads.Paths()
	if len(paths) != 2 || !strings.HasPrefix(paths[1], "/images/error.png?kit=K&image=") {
		t.Fatalf("expected error beacon, got %#v", paths)
	}
}

func TestImporter_WithoutBeacons(t *testing.T) {
	srv, heads := testsupport.ImageServer(t)
	importer := NewImporter(
		WithLibrary(&fakeLibrary{}),
		WithClient(srv.Client()),
		WithPlaceholderURL(srv.URL+"/images/placeholder.png"),
		WithoutBeacons(),
	)

	if _, err := importer.Import(context.Background(), Request{ID: 1, URL: srv.URL + "/missing.png"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if diff := cmp.Diff([]string{"/missing.png"}, heads.Paths()); diff != "" {
		t.Fatalf("unexpected HEAD requests (-want +got):\n%s", diff)
	}
}

func TestImporter_RejectsBadInput(t *testing.T) {
	withLibrary := NewImporter(WithLibrary(&fakeLibrary{}))

	if _, err := withLibrary.Import(context.Background(), Request{ID: 0, URL: "https://example.com/a.png"}); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage for zero id, got %v", err)
	}
	if _, err := withLibrary.Import(context.Background(), Request{ID: 1, URL: "not a url"}); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage for bad url, got %v", err)
	}

	noLibrary := NewImporter()
	if _, err := noLibrary.Import(context.Background(), Request{ID: 1, URL: "https://example.com/a.png"}); !errors.Is(err, ErrLibraryUnavailable) {
		t.Fatalf("expected ErrLibraryUnavailable, got %v", err)
	}
}

func TestDirLibrary_DownloadsAndDedupes(t *testing.T) {
	srv, _ := testsupport.ImageServer(t)
	dir := t.TempDir()
	library, err := NewDirLibrary(dir, "https://site.test/uploads/", srv.Client())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	att, err := library.Import(context.Background(), Image{ID: 77, URL: srv.URL + "/images/Hero%20Shot.png"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if diff := cmp.Diff(Attachment{ID: 1, URL: "https://site.test/uploads/1-Hero-Shot.png"}, att); diff != "" {
		t.Fatalf("unexpected attachment (-want +got):\n%s", diff)
	}
	data, err := os.ReadFile(filepath.Join(dir, "1-Hero-Shot.png"))
	if err != nil {
		t.Fatalf("expected stored file: %v", err)
	}
	if len(data) != len(testsupport.PNG()) {
		t.Fatalf("unexpected stored size %d", len(data))
	}

	again, err := library.Import(context.Background(), Image{ID: 77, URL: srv.URL + "/images/other.png"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if again != att {
		t.Fatalf("expected dedupe by source id, got %#v", again)
	}
}

func TestDirLibrary_RejectsNonImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>not found</html>"))
	}))
	t.Cleanup(srv.Close)

	library, err := NewDirLibrary(t.TempDir(), "https://site.test/uploads", srv.Client())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := library.Import(context.Background(), Image{ID: 1, URL: srv.URL + "/a.png"}); err == nil {
		t.Fatalf("expected error for html response")
	}
}

func TestDirLibrary_RequiresDir(t *testing.T) {
	if _, err := NewDirLibrary("  ", "", nil); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

func TestFileName(t *testing.T) {
	cases := []struct {
		url, mediaType, want string
	}{
		{url: "https://x.test/a/b/photo.jpg", mediaType: "image/jpeg", want: "photo.jpg"},
		{url: "https://x.test/", mediaType: "image/png", want: "image.png"},
		{url: "https://x.test/we%20ird$name", mediaType: "image/png", want: "we-ird-name.png"},
	}
	for _, tc := range cases {
		if got := fileName(tc.url, tc.mediaType); got != tc.want {
			t.Fatalf("fileName(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

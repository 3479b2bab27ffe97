package kitstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/goliatone/go-templatekit/pkg/builder"
	"github.com/goliatone/go-templatekit/pkg/kit"
)

// Store serves installed kits from a file system laid out as one directory
// per kit, each holding a manifest and the template exports it references.
// Installed kits are read once at construction (and on Reload); imports are
// kept in memory. Store is safe for concurrent use.
type Store struct {
	files fs.FS
	opts  Options

	mu      sync.RWMutex
	kits    map[int]installedKit
	order   []int
	imports map[importKey]int
	library map[int]importedTemplate
	nextID  int
}

type installedKit struct {
	kit kit.Kit
	dir string
}

type importKey struct {
	kitID      int
	templateID int
}

type importedTemplate struct {
	id         int
	kitID      int
	templateID int
	title      string
	content    []builder.Element
}

var (
	_ kit.Store    = (*Store)(nil)
	_ kit.Importer = (*Store)(nil)
)

// New builds a store over files and loads every installed kit.
func New(files fs.FS, fns ...OptionFn) (*Store, error) {
	if files == nil {
		return nil, errors.New("kitstore: file system is nil")
	}
	opts := NewOptions(fns...)
	s := &Store{
		files:   files,
		opts:    opts,
		imports: make(map[importKey]int),
		library: make(map[int]importedTemplate),
		nextID:  opts.FirstImportID,
	}
	if err := s.Reload(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rescans the file system. Imports recorded so far are kept.
func (s *Store) Reload(ctx context.Context) error {
	kits, err := s.scan(ctx)
	if err != nil {
		return err
	}

	order := make([]int, 0, len(kits))
	for id := range kits {
		order = append(order, id)
	}
	sort.Ints(order)

	s.mu.Lock()
	s.kits = kits
	s.order = order
	s.mu.Unlock()
	return nil
}

func (s *Store) scan(ctx context.Context) (map[int]installedKit, error) {
	entries, err := fs.ReadDir(s.files, ".")
	if err != nil {
		return nil, fmt.Errorf("kitstore: read kits root: %w", err)
	}

	kits := make(map[int]installedKit)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}
		dir := entry.Name()
		data, source, ok, err := s.readManifest(dir)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		parsed, err := parseManifest(data, source)
		if err != nil {
			return nil, err
		}
		if existing, dup := kits[parsed.ID]; dup {
			return nil, fmt.Errorf("kitstore: kit id %d declared by both %s and %s", parsed.ID, existing.dir, dir)
		}
		kits[parsed.ID] = installedKit{kit: s.normalise(parsed), dir: dir}
	}
	return kits, nil
}

func (s *Store) readManifest(dir string) ([]byte, string, bool, error) {
	for _, name := range manifestNames {
		source := path.Join(dir, name)
		data, err := fs.ReadFile(s.files, source)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", false, fmt.Errorf("kitstore: read %s: %w", source, err)
		}
		return data, source, true, nil
	}
	return nil, "", false, nil
}

func (s *Store) normalise(k kit.Kit) kit.Kit {
	sanitize := s.opts.Sanitize
	k.Title = sanitize(k.Title)
	k.Requirements = k.Requirements.Normalized()

	templates := kit.TemplateSet{}
	k.Templates.Range(func(tpl kit.Template) bool {
		tpl.Name = sanitize(tpl.Name)
		tpl.ImportedTemplateID = 0
		templates.Set(tpl)
		return true
	})
	k.Templates = templates
	return k
}

// InstalledKits lists installed kits ordered by id.
func (s *Store) InstalledKits(ctx context.Context) ([]kit.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]kit.Summary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.kits[id].kit.Summarize())
	}
	return out, nil
}

// InstalledKit returns a copy of the kit with import state applied to its
// templates.
func (s *Store) InstalledKit(ctx context.Context, id int) (kit.Kit, error) {
	if err := ctx.Err(); err != nil {
		return kit.Kit{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	installed, ok := s.kits[id]
	if !ok {
		return kit.Kit{}, fmt.Errorf("kitstore: kit %d: %w", id, kit.ErrKitNotFound)
	}

	out := installed.kit
	out.Requirements = out.Requirements.Normalized()
	out.Templates = kit.TemplateSet{}
	installed.kit.Templates.Range(func(tpl kit.Template) bool {
		if importedID, done := s.imports[importKey{kitID: id, templateID: tpl.ID}]; done {
			tpl.ImportedTemplateID = importedID
		}
		out.Templates.Set(tpl)
		return true
	})
	return out, nil
}

// TemplateData reads the builder export of a template.
func (s *Store) TemplateData(ctx context.Context, kitID, templateID int) (kit.TemplateData, error) {
	if err := ctx.Err(); err != nil {
		return kit.TemplateData{}, err
	}
	s.mu.RLock()
	installed, tpl, err := s.lookup(kitID, templateID)
	s.mu.RUnlock()
	if err != nil {
		return kit.TemplateData{}, err
	}

	export, err := s.readExport(installed.dir, tpl)
	if err != nil {
		return kit.TemplateData{}, err
	}
	return kit.TemplateData{TemplateJSON: export}, nil
}

func (s *Store) lookup(kitID, templateID int) (installedKit, kit.Template, error) {
	installed, ok := s.kits[kitID]
	if !ok {
		return installedKit{}, kit.Template{}, fmt.Errorf("kitstore: kit %d: %w", kitID, kit.ErrKitNotFound)
	}
	tpl, ok := installed.kit.Templates.Get(templateID)
	if !ok {
		return installedKit{}, kit.Template{}, fmt.Errorf("kitstore: kit %d template %d: %w", kitID, templateID, kit.ErrTemplateNotFound)
	}
	return installed, tpl, nil
}

func (s *Store) readExport(dir string, tpl kit.Template) (any, error) {
	if tpl.Source == "" {
		return nil, fmt.Errorf("kitstore: template %d has no source: %w", tpl.ID, kit.ErrTemplateNotFound)
	}
	source := path.Join(dir, path.Clean("/" + tpl.Source)[1:])
	data, err := fs.ReadFile(s.files, source)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("kitstore: %s: %w", source, kit.ErrTemplateNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("kitstore: read %s: %w", source, err)
	}
	return parseExport(data, source)
}

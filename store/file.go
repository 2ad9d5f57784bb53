package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/phanxgames/twin"
)

const sceneExt = ".json"

// FileStore keeps each scene as <dir>/<id>.json. Writes go through a
// temporary file and a rename so readers never see a partial document.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the scene files.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(id string) string { return filepath.Join(s.dir, id+sceneExt) }

// Save writes m, replacing any previous version.
func (s *FileStore) Save(ctx context.Context, m *twin.SceneModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m == nil || !ValidID(m.ID) {
		return ErrInvalidID
	}
	var buf bytes.Buffer
	if err := twin.EncodeScene(&buf, m); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(s.dir, "."+m.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("store: save %s: %w", m.ID, err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: save %s: %w", m.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: save %s: %w", m.ID, err)
	}
	if err := os.Rename(tmp.Name(), s.path(m.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: save %s: %w", m.ID, err)
	}
	slog.Debug("scene saved", "store", "file", "id", m.ID, "nodes", countNodes(m))
	return nil
}

// Load reads and sanitizes the scene with the given id.
func (s *FileStore) Load(ctx context.Context, id string) (*twin.SceneModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	f, err := os.Open(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", id, err)
	}
	defer f.Close()
	m, err := twin.DecodeScene(f)
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", id, err)
	}
	// the file name wins over a stale or missing id inside the document
	m.ID = id
	return m, nil
}

// List returns every readable scene sorted by id. Files that fail to decode
// are skipped with a warning.
func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	out := []Info{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, ok := sceneIDFromFile(e.Name())
		if e.IsDir() || !ok {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		m, err := s.Load(ctx, id)
		if err != nil {
			slog.Warn("skipping unreadable scene", "store", "file", "id", id, "err", err)
			continue
		}
		out = append(out, Info{ID: id, SceneMode: m.SceneMode, Nodes: countNodes(m), UpdatedAt: fi.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes the scene file.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ValidID(id) {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	return nil
}

// sceneIDFromFile maps "<id>.json" to id. Hidden and temporary files are
// ignored.
func sceneIDFromFile(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, sceneExt) {
		return "", false
	}
	id := strings.TrimSuffix(name, sceneExt)
	return id, ValidID(id)
}

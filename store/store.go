// Package store persists twin scene models.
//
// Two backends are provided: [FileStore] keeps one JSON document per scene
// in a directory and [SQLiteStore] keeps every scene in a single SQLite
// database. Both are safe for concurrent use.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/phanxgames/twin"
)

var (
	// ErrNotFound is returned when no scene has the requested id.
	ErrNotFound = errors.New("store: scene not found")
	// ErrInvalidID is returned for empty ids or ids that are not file-name
	// safe.
	ErrInvalidID = errors.New("store: invalid scene id")
)

// Store saves and loads scene models by id.
type Store interface {
	Save(ctx context.Context, m *twin.SceneModel) error
	Load(ctx context.Context, id string) (*twin.SceneModel, error)
	List(ctx context.Context) ([]Info, error)
	Delete(ctx context.Context, id string) error
}

// Info describes a stored scene without loading its nodes.
type Info struct {
	ID        string         `json:"id"`
	SceneMode twin.SceneMode `json:"sceneMode"`
	Nodes     int            `json:"nodes"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ValidID reports whether id can be used as a scene key.
func ValidID(id string) bool {
	if id == "" || id == "." || id == ".." || len(id) > 128 {
		return false
	}
	return !strings.ContainsAny(id, `/\:*?"<>|`) && !strings.ContainsRune(id, 0)
}

// countNodes returns the number of nodes in m at every depth.
func countNodes(m *twin.SceneModel) int {
	n := 0
	m.Walk(func(*twin.SceneNode) bool {
		n++
		return true
	})
	return n
}

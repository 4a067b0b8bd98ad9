package callgraph

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jward/callgraph/internal/store"
	"github.com/jward/callgraph/syntax"
)

// Metadata keys describing the stored snapshot.
const (
	metaSnapshotID = "snapshot_id"
	metaProgram    = "program"
	metaBuiltAt    = "built_at"
)

// SnapshotInfo identifies the snapshot currently stored. ID changes on every
// build, so consumers can tell whether stored cycles belong to the graph
// they loaded.
type SnapshotInfo struct {
	ID      string
	Program string
	BuiltAt time.Time
}

// Engine ties the dependency graph to its SQLite snapshot: build a program
// into the store, then query the stored graph.
type Engine struct {
	store  *store.Store
	opts   []Option
	logger *slog.Logger

	// graph caches the stored snapshot; nil until first loaded or built.
	graph *DependencyGraph
}

// New creates an Engine backed by a SQLite database at dbPath, creating and
// migrating it if needed.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("callgraph: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("callgraph: migrate: %w", err)
	}
	return &Engine{store: s, opts: opts, logger: newConfig(opts).logger}, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Build walks prog and replaces the stored snapshot with the result. label
// names the program in the snapshot metadata and may be empty.
func (e *Engine) Build(prog *syntax.Program, label string) (*DependencyGraph, error) {
	g := Build(prog, e.opts...)
	info := SnapshotInfo{ID: uuid.NewString(), Program: label, BuiltAt: time.Now().UTC()}
	meta := map[string]string{
		metaSnapshotID: info.ID,
		metaProgram:    info.Program,
		metaBuiltAt:    info.BuiltAt.Format(time.RFC3339Nano),
	}
	if err := saveGraph(e.store, g, meta); err != nil {
		return nil, fmt.Errorf("callgraph: %w", err)
	}
	e.graph = g
	e.logger.Info("snapshot saved", "snapshot", info.ID, "nodes", g.Len(), "edges", g.EdgeCount())
	return g, nil
}

// BuildFile decodes the program document at path and builds it.
func (e *Engine) BuildFile(path string) (*DependencyGraph, error) {
	prog, err := syntax.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("callgraph: %w", err)
	}
	return e.Build(prog, path)
}

// Snapshot describes the stored snapshot. The zero value means nothing has
// been built into this database yet.
func (e *Engine) Snapshot() (SnapshotInfo, error) {
	var info SnapshotInfo
	var err error
	if info.ID, err = e.store.GetMetadata(metaSnapshotID); err != nil {
		return SnapshotInfo{}, fmt.Errorf("callgraph: %w", err)
	}
	if info.Program, err = e.store.GetMetadata(metaProgram); err != nil {
		return SnapshotInfo{}, fmt.Errorf("callgraph: %w", err)
	}
	builtAt, err := e.store.GetMetadata(metaBuiltAt)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("callgraph: %w", err)
	}
	if builtAt != "" {
		if info.BuiltAt, err = time.Parse(time.RFC3339Nano, builtAt); err != nil {
			return SnapshotInfo{}, fmt.Errorf("callgraph: built_at: %w", err)
		}
	}
	return info, nil
}

// Graph returns the stored snapshot.
func (e *Engine) Graph() (*DependencyGraph, error) {
	if e.graph != nil {
		return e.graph, nil
	}
	g, err := LoadGraph(e.store)
	if err != nil {
		return nil, fmt.Errorf("callgraph: %w", err)
	}
	e.graph = g
	return g, nil
}

// Cycles enumerates the elementary cycles of the stored snapshot and saves
// them alongside it.
func (e *Engine) Cycles() ([][]CallGraphNode, error) {
	g, err := e.Graph()
	if err != nil {
		return nil, err
	}
	cycles := g.Cycles()
	if err := SaveCycles(e.store, cycles); err != nil {
		return nil, fmt.Errorf("callgraph: %w", err)
	}
	e.logger.Debug("cycles saved", "count", len(cycles))
	return cycles, nil
}

// StoredCycles returns the cycles saved by the last call to Cycles.
func (e *Engine) StoredCycles() ([][]CallGraphNode, error) {
	cycles, err := LoadCycles(e.store)
	if err != nil {
		return nil, fmt.Errorf("callgraph: %w", err)
	}
	return cycles, nil
}

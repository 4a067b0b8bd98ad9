// Package policy evaluates recursion-policy scripts against the cycles of a
// call graph. Scripts are written in Risor and run once per cycle; a script
// rejects a cycle by calling report(message).
package policy

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
	"golang.org/x/sync/errgroup"

	"github.com/jward/callgraph"
)

// DefaultScript is the path of the built-in policy inside the scripts FS.
const DefaultScript = "policy/functor_recursion.risor"

// Diagnostic is one report raised by a policy script.
type Diagnostic struct {
	// Index is the position of Cycle in the evaluated list.
	Index   int
	Cycle   []callgraph.CallGraphNode
	Message string
}

// Evaluator runs policy scripts.
type Evaluator struct {
	scriptsDir string
	fsys       fs.FS
	logger     *slog.Logger
	workers    int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithFS loads scripts from fsys instead of from disk. Risor import
// statements resolve against the same FS.
func WithFS(fsys fs.FS) Option {
	return func(e *Evaluator) {
		e.fsys = fsys
	}
}

// WithLogger routes the scripts' log object to l.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// WithWorkers bounds how many cycles are evaluated concurrently. Values
// below 1 mean one worker.
func WithWorkers(n int) Option {
	return func(e *Evaluator) {
		e.workers = max(n, 1)
	}
}

// New creates an Evaluator. scriptsDir is the base for relative script
// paths and imports when no FS is configured; it may be empty.
func New(scriptsDir string, opts ...Option) *Evaluator {
	e := &Evaluator{
		scriptsDir: scriptsDir,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers:    runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunScript loads the script at path and evaluates it against cycles.
func (e *Evaluator) RunScript(ctx context.Context, path string, cycles [][]callgraph.CallGraphNode) ([]Diagnostic, error) {
	src, err := e.LoadScript(path)
	if err != nil {
		return nil, err
	}
	return e.eval(ctx, src, path, cycles)
}

// RunSource evaluates Risor source directly against cycles.
func (e *Evaluator) RunSource(ctx context.Context, source string, cycles [][]callgraph.CallGraphNode) ([]Diagnostic, error) {
	return e.eval(ctx, source, "<inline>", cycles)
}

// eval runs source once per cycle. Each run gets its own VM, so cycles are
// evaluated in parallel; diagnostics keep the order of cycles.
func (e *Evaluator) eval(ctx context.Context, source, label string, cycles [][]callgraph.CallGraphNode) ([]Diagnostic, error) {
	reports := make([][]string, len(cycles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, cycle := range cycles {
		g.Go(func() error {
			globals := e.buildGlobals(cycle, &reports[i])

			var opts []risor.Option
			for name, val := range globals {
				opts = append(opts, risor.WithGlobal(name, val))
			}
			if imp := e.buildImporter(globals); imp != nil {
				opts = append(opts, risor.WithImporter(imp))
			}

			if _, err := risor.Eval(gctx, source, opts...); err != nil {
				return fmt.Errorf("policy: script %s: cycle %s: %w", label, formatCycle(cycle), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var diags []Diagnostic
	for i, msgs := range reports {
		for _, msg := range msgs {
			diags = append(diags, Diagnostic{Index: i, Cycle: cycles[i], Message: msg})
		}
	}
	e.logger.Debug("policy evaluated", "script", label, "cycles", len(cycles), "diagnostics", len(diags))
	return diags, nil
}

// buildImporter returns a Risor importer for the configured script source,
// or nil if neither an FS nor a scripts directory is set.
func (e *Evaluator) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if e.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    e.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if e.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   e.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file. With an FS configured the path is relative
// to the FS root; otherwise relative paths are joined to scriptsDir.
func (e *Evaluator) LoadScript(path string) (string, error) {
	if e.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(e.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("policy: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) && e.scriptsDir != "" {
		fullPath = filepath.Join(e.scriptsDir, path)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("policy: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// buildGlobals constructs the globals exposed to one evaluation. Reports
// are appended to *reports.
func (e *Evaluator) buildGlobals(cycle []callgraph.CallGraphNode, reports *[]string) map[string]any {
	return map[string]any{
		"cycle":  cycleObject(cycle),
		"report": makeReportFn(reports),
		"log":    mustProxy(&logObject{logger: e.logger}),
	}
}

func formatCycle(cycle []callgraph.CallGraphNode) string {
	parts := make([]string, len(cycle))
	for i, n := range cycle {
		parts[i] = n.String()
	}
	return "[" + strings.Join(parts, " -> ") + "]"
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("policy: proxy error: %v", err))
	}
	return p
}

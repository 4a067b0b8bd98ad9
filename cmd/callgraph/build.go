package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/callgraph"
	"github.com/jward/callgraph/internal/watch"
)

var (
	flagForce    bool
	flagWatch    bool
	flagDebounce time.Duration
)

var buildCmd = &cobra.Command{
	Use:   "build <program.yaml>",
	Short: "Build the call graph of a compiled program",
	Long:  "Decodes a program document, walks every specialization body, and writes the dependency graph to the SQLite database, replacing any previous snapshot.",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&flagForce, "force", false, "delete the database file before building")
	buildCmd.Flags().BoolVar(&flagWatch, "watch", false, "rebuild whenever the program file changes")
	buildCmd.Flags().DurationVar(&flagDebounce, "debounce", watch.DefaultDebounce, "quiet period before a --watch rebuild")
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	dbPath, err := currentDBPath()
	if err != nil {
		return outputError(out, errOut, "build", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return outputError(out, errOut, "build", fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err))
	}
	if flagForce {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return outputError(out, errOut, "build", fmt.Errorf("removing database for --force: %w", err))
		}
		logger.Info("cleared database", "path", dbPath)
	}

	e, err := callgraph.New(dbPath, callgraph.WithLogger(logger))
	if err != nil {
		return outputError(out, errOut, "build", err)
	}
	defer e.Close()

	program := args[0]
	if err := buildOnce(out, e, dbPath, program, start); err != nil {
		return outputError(out, errOut, "build", err)
	}
	if !flagWatch {
		return nil
	}

	w, err := watch.New(program, watch.WithDebounce(flagDebounce), watch.WithLogger(logger))
	if err != nil {
		return outputError(out, errOut, "build", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.Run(ctx, func() error {
		return buildOnce(out, e, dbPath, program, time.Now())
	})
}

// buildOnce rebuilds the snapshot from program and writes the summary.
func buildOnce(out io.Writer, e *callgraph.Engine, dbPath, program string, start time.Time) error {
	g, err := e.BuildFile(program)
	if err != nil {
		return err
	}
	snap, err := e.Snapshot()
	if err != nil {
		return err
	}
	logger.Info("built call graph",
		"program", program,
		"snapshot", snap.ID,
		"nodes", g.Len(),
		"edges", g.EdgeCount(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return outputResult(out, CLIResult{
		Command: "build",
		Results: CLIBuildSummary{
			Program:  program,
			Database: dbPath,
			Snapshot: snap.ID,
			Nodes:    g.Len(),
			Edges:    g.EdgeCount(),
		},
	})
}

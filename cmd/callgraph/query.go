package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/callgraph"
	"github.com/jward/callgraph/internal/policy"
	"github.com/jward/callgraph/scripts"
	"github.com/jward/callgraph/syntax"
)

var (
	flagKind          string
	flagTypeArgs      string
	flagTransitive    bool
	flagCyclicOnly    bool
	flagPolicy        string
	flagDefaultPolicy bool
)

// errPolicyViolation is returned by cycles when a policy reported problems.
var errPolicyViolation = errors.New("recursion policy reported violations")

var depsCmd = &cobra.Command{
	Use:   "deps <Namespace.Name>",
	Short: "List the dependencies of one specialization",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeps,
}

var sccsCmd = &cobra.Command{
	Use:   "sccs",
	Short: "List strongly connected components in reverse topological order",
	Args:  cobra.NoArgs,
	RunE:  runSCCs,
}

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Enumerate elementary cycles and optionally check a recursion policy",
	Long:  "Enumerates every elementary cycle of the stored graph, stores them alongside the snapshot, and evaluates a Risor policy script once per cycle. Any reported violation makes the command exit non-zero.",
	Args:  cobra.NoArgs,
	RunE:  runCycles,
}

func init() {
	depsCmd.Flags().StringVar(&flagKind, "kind", "body", "specialization kind: body|adjoint|controlled|controlled-adjoint")
	depsCmd.Flags().StringVar(&flagTypeArgs, "type-args", "", "type arguments of the specialization, comma-separated")
	depsCmd.Flags().BoolVar(&flagTransitive, "transitive", false, "list every reachable routine with the kind it requires")

	sccsCmd.Flags().BoolVar(&flagCyclicOnly, "cyclic-only", false, "only list components that contain a cycle")

	cyclesCmd.Flags().StringVar(&flagPolicy, "policy", "", "Risor policy script to evaluate against each cycle")
	cyclesCmd.Flags().BoolVar(&flagDefaultPolicy, "default-policy", false, "evaluate the built-in functor recursion policy")
	cyclesCmd.MarkFlagsMutuallyExclusive("policy", "default-policy")
}

func loadGraph() (*callgraph.DependencyGraph, *callgraph.Engine, error) {
	e, err := openEngine()
	if err != nil {
		return nil, nil, err
	}
	g, err := e.Graph()
	if err != nil {
		e.Close()
		return nil, nil, err
	}
	return g, e, nil
}

func parseNodeArg(name string) (callgraph.CallGraphNode, error) {
	routine, err := syntax.ParseQualifiedName(name)
	if err != nil {
		return callgraph.CallGraphNode{}, err
	}
	kind, err := syntax.ParseSpecKind(flagKind)
	if err != nil {
		return callgraph.CallGraphNode{}, err
	}
	var args []string
	for _, a := range strings.Split(flagTypeArgs, ",") {
		if a = strings.TrimSpace(a); a != "" {
			args = append(args, a)
		}
	}
	return callgraph.CallGraphNode{Routine: routine, Kind: kind, TypeArgs: callgraph.NewTypeArgs(args)}, nil
}

// missingNodeError explains why node is absent, listing the specializations
// of its routine that the snapshot does hold.
func missingNodeError(e *callgraph.Engine, node callgraph.CallGraphNode) error {
	rows, err := e.Store().NodesByRoutine(node.Routine.String())
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("routine %s is not in the snapshot", node.Routine)
	}
	have := make([]string, len(rows))
	for i, r := range rows {
		have[i] = r.Kind
		if r.TypeArgs != "" {
			have[i] += "<" + r.TypeArgs + ">"
		}
	}
	return fmt.Errorf("%s is not in the snapshot (stored specializations: %s)", node, strings.Join(have, ", "))
}

func runDeps(cmd *cobra.Command, args []string) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	node, err := parseNodeArg(args[0])
	if err != nil {
		return outputError(out, errOut, "deps", err)
	}
	g, e, err := loadGraph()
	if err != nil {
		return outputError(out, errOut, "deps", err)
	}
	defer e.Close()

	if !g.Contains(node) {
		return outputError(out, errOut, "deps", missingNodeError(e, node))
	}

	if flagTransitive {
		all, err := g.AllDependencies(node)
		if err != nil {
			return outputError(out, errOut, "deps", err)
		}
		refs := make([]callgraph.RoutineRef, 0, len(all))
		for ref := range all {
			refs = append(refs, ref)
		}
		slices.SortFunc(refs, func(a, b callgraph.RoutineRef) int {
			if c := a.Routine.Compare(b.Routine); c != 0 {
				return c
			}
			return strings.Compare(string(a.TypeArgs), string(b.TypeArgs))
		})
		results := make([]CLIDependency, len(refs))
		for i, ref := range refs {
			results[i] = CLIDependency{
				Routine:  ref.Routine.String(),
				TypeArgs: string(ref.TypeArgs),
				Kind:     all[ref].String(),
			}
		}
		total := len(results)
		return outputResult(out, CLIResult{Command: "deps", Results: results, TotalCount: &total})
	}

	direct := g.DirectDependencies(node)
	callees := make([]callgraph.CallGraphNode, 0, len(direct))
	for callee := range direct {
		callees = append(callees, callee)
	}
	slices.SortFunc(callees, callgraph.CompareNodes)

	results := []CLIEdge{}
	for _, callee := range callees {
		for _, site := range direct[callee] {
			edge := CLIEdge{
				Callee: toCLINode(callee),
				File:   site.Site.File,
				Line:   site.Site.Line,
				Col:    site.Site.Col,
			}
			for _, r := range site.Resolutions {
				edge.Resolutions = append(edge.Resolutions, CLIResolution{Param: r.Param, Type: r.Type})
			}
			results = append(results, edge)
		}
	}
	total := len(results)
	return outputResult(out, CLIResult{Command: "deps", Results: results, TotalCount: &total})
}

func runSCCs(cmd *cobra.Command, args []string) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	g, e, err := loadGraph()
	if err != nil {
		return outputError(out, errOut, "sccs", err)
	}
	defer e.Close()

	results := []CLIComponent{}
	for _, c := range g.Components() {
		if flagCyclicOnly && !c.Cyclic {
			continue
		}
		results = append(results, CLIComponent{
			Min:    toCLINode(c.Min),
			Nodes:  toCLINodes(c.Nodes),
			Cyclic: c.Cyclic,
		})
	}
	total := len(results)
	return outputResult(out, CLIResult{Command: "sccs", Results: results, TotalCount: &total})
}

func runCycles(cmd *cobra.Command, args []string) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	e, err := openEngine()
	if err != nil {
		return outputError(out, errOut, "cycles", err)
	}
	defer e.Close()

	cycles, err := e.Cycles()
	if err != nil {
		return outputError(out, errOut, "cycles", err)
	}

	results := make([]CLICycle, len(cycles))
	for i, c := range cycles {
		results[i] = CLICycle{Nodes: toCLINodes(c)}
	}

	diags, err := evaluatePolicy(cmd, cycles)
	if err != nil {
		return outputError(out, errOut, "cycles", err)
	}
	for _, d := range diags {
		results[d.Index].Diagnostics = append(results[d.Index].Diagnostics, d.Message)
	}

	total := len(results)
	result := CLIResult{Command: "cycles", Results: results, TotalCount: &total}
	if len(diags) == 0 {
		return outputResult(out, result)
	}
	err = fmt.Errorf("%w: %d diagnostic(s)", errPolicyViolation, len(diags))
	result.Error = err.Error()
	errorHandled = true
	if outErr := outputResult(out, result); outErr != nil {
		return outErr
	}
	return err
}

func evaluatePolicy(cmd *cobra.Command, cycles [][]callgraph.CallGraphNode) ([]policy.Diagnostic, error) {
	switch {
	case flagDefaultPolicy:
		ev := policy.New("", policy.WithFS(scripts.FS), policy.WithLogger(logger))
		return ev.RunScript(cmd.Context(), policy.DefaultScript, cycles)
	case flagPolicy != "":
		abs, err := filepath.Abs(flagPolicy)
		if err != nil {
			return nil, fmt.Errorf("resolving policy path %q: %w", flagPolicy, err)
		}
		ev := policy.New(filepath.Dir(abs), policy.WithLogger(logger))
		return ev.RunScript(cmd.Context(), filepath.Base(abs), cycles)
	default:
		return nil, nil
	}
}

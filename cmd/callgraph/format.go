package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

func nodeText(n CLINode) string {
	s := n.Routine
	if n.TypeArgs != "" {
		s += "<" + n.TypeArgs + ">"
	}
	return s + " (" + n.Kind + ")"
}

func joinNodes(nodes []CLINode, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = nodeText(n)
	}
	return strings.Join(parts, sep)
}

// formatEdgesText formats CLIEdge results as aligned columns.
func formatEdgesText(w io.Writer, edges []CLIEdge) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CALLEE\tFILE\tLINE\tCOL\tRESOLUTIONS")
	for _, e := range edges {
		res := make([]string, len(e.Resolutions))
		for i, r := range e.Resolutions {
			res[i] = r.Param + "=" + r.Type
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			nodeText(e.Callee), e.File, e.Line, e.Col, strings.Join(res, ","))
	}
	tw.Flush()
}

// formatDependenciesText formats CLIDependency results as aligned columns.
func formatDependenciesText(w io.Writer, deps []CLIDependency) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUTINE\tTYPE ARGS\tKIND")
	for _, d := range deps {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Routine, d.TypeArgs, d.Kind)
	}
	tw.Flush()
}

// formatComponentsText prints one component per line.
func formatComponentsText(w io.Writer, comps []CLIComponent) {
	for _, c := range comps {
		marker := " "
		if c.Cyclic {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, joinNodes(c.Nodes, ", "))
	}
}

// formatCyclesText prints each cycle as a closed path followed by its
// diagnostics.
func formatCyclesText(w io.Writer, cycles []CLICycle) {
	for _, c := range cycles {
		fmt.Fprintf(w, "%s -> %s\n", joinNodes(c.Nodes, " -> "), nodeText(c.Nodes[0]))
		for _, d := range c.Diagnostics {
			fmt.Fprintf(w, "  ! %s\n", d)
		}
	}
}

func formatBuildSummaryText(w io.Writer, s CLIBuildSummary) {
	fmt.Fprintf(w, "Built %s: %d nodes, %d edges\n", s.Program, s.Nodes, s.Edges)
	fmt.Fprintf(w, "Database: %s\n", s.Database)
	fmt.Fprintf(w, "Snapshot: %s\n", s.Snapshot)
}

// outputResult writes result to w in the selected format.
func outputResult(w io.Writer, result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(w, result)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to w as a
// CLIResult envelope. In text mode it goes to errW.
func outputError(w, errW io.Writer, command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(errW, "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return err
}

// outputResultText dispatches to the appropriate text formatter based on
// the result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIEdge:
		formatEdgesText(w, v)
	case []CLIDependency:
		formatDependenciesText(w, v)
	case []CLIComponent:
		formatComponentsText(w, v)
	case []CLICycle:
		formatCyclesText(w, v)
	case CLIBuildSummary:
		formatBuildSummaryText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	if result.Error != "" {
		fmt.Fprintf(w, "\n%s\n", result.Error)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}

package main

import "github.com/jward/callgraph"

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLINode is a JSON-friendly specialization.
type CLINode struct {
	Routine  string `json:"routine"`
	Kind     string `json:"kind"`
	TypeArgs string `json:"type_args,omitempty"`
}

// CLIResolution is one type-parameter binding written at a call site.
type CLIResolution struct {
	Param string `json:"param"`
	Type  string `json:"type"`
}

// CLIEdge is a JSON-friendly dependency edge.
type CLIEdge struct {
	Callee      CLINode         `json:"callee"`
	File        string          `json:"file,omitempty"`
	Line        int             `json:"line"`
	Col         int             `json:"col"`
	Resolutions []CLIResolution `json:"resolutions,omitempty"`
}

// CLIDependency is one routine in a transitive closure.
type CLIDependency struct {
	Routine  string `json:"routine"`
	TypeArgs string `json:"type_args,omitempty"`
	Kind     string `json:"kind"`
}

// CLIComponent is a strongly connected component.
type CLIComponent struct {
	Min    CLINode   `json:"min"`
	Nodes  []CLINode `json:"nodes"`
	Cyclic bool      `json:"cyclic"`
}

// CLICycle is an elementary cycle and any policy diagnostics raised for it.
type CLICycle struct {
	Nodes       []CLINode `json:"nodes"`
	Diagnostics []string  `json:"diagnostics,omitempty"`
}

// CLIBuildSummary describes a freshly built snapshot.
type CLIBuildSummary struct {
	Program  string `json:"program"`
	Database string `json:"database"`
	Snapshot string `json:"snapshot"`
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
}

func toCLINode(n callgraph.CallGraphNode) CLINode {
	return CLINode{
		Routine:  n.Routine.String(),
		Kind:     n.Kind.String(),
		TypeArgs: string(n.TypeArgs),
	}
}

func toCLINodes(nodes []callgraph.CallGraphNode) []CLINode {
	out := make([]CLINode, len(nodes))
	for i, n := range nodes {
		out[i] = toCLINode(n)
	}
	return out
}

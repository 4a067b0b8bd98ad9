package store

// Node is a row of the nodes table. Kind is the specialization kind's
// string form; TypeArgs is empty when absent.
type Node struct {
	ID       int64
	Routine  string
	Kind     string
	TypeArgs string
}

// Resolution is one type parameter resolved at a call site.
type Resolution struct {
	Param string `json:"param"`
	Type  string `json:"type"`
}

// Edge is a row of the edges table.
type Edge struct {
	ID          int64
	CallerID    int64
	CalleeID    int64
	File        string
	Line        int
	Col         int
	Resolutions []Resolution
}

// Cycle is an ordered list of node IDs.
type Cycle []int64

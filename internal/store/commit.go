package store

import (
	"database/sql"
	"fmt"
)

// ReplaceGraph swaps the stored snapshot for nodes and edges within a single
// transaction. Node IDs are chosen by the caller and edges must reference
// them; edges are inserted in slice order so per-pair edge order survives a
// round trip. Stored cycles are discarded since they describe the old graph.
// meta is upserted into the metadata table in the same transaction, so a
// snapshot and its metadata are committed or rolled back together.
//
// Delete and insert order respects FK dependencies:
//  1. cycles, edges, nodes are cleared
//  2. nodes
//  3. edges
//  4. metadata
func (s *Store) ReplaceGraph(nodes []*Node, edges []*Edge, meta map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("replace graph: begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"cycles", "edges", "nodes"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("replace graph: clear %s: %w", table, err)
		}
	}

	for _, n := range nodes {
		if err := insertNodeTx(tx, n); err != nil {
			return fmt.Errorf("replace graph: node %s/%s: %w", n.Routine, n.Kind, err)
		}
	}
	for _, e := range edges {
		if err := insertEdgeTx(tx, e); err != nil {
			return fmt.Errorf("replace graph: edge %d -> %d: %w", e.CallerID, e.CalleeID, err)
		}
	}
	for key, value := range meta {
		if _, err := tx.Exec(upsertMetadataSQL, key, value); err != nil {
			return fmt.Errorf("replace graph: metadata %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace graph: commit: %w", err)
	}
	return nil
}

// ReplaceCycles stores cycles, replacing any previously stored set. Each
// cycle's members are kept in order.
func (s *Store) ReplaceCycles(cycles []Cycle) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("replace cycles: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cycles"); err != nil {
		return fmt.Errorf("replace cycles: clear: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO cycles (cycle_id, position, node_id) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("replace cycles: prepare: %w", err)
	}
	defer stmt.Close()

	for i, c := range cycles {
		for pos, nodeID := range c {
			if _, err := stmt.Exec(i+1, pos, nodeID); err != nil {
				return fmt.Errorf("replace cycles: cycle %d: %w", i+1, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace cycles: commit: %w", err)
	}
	return nil
}

func insertNodeTx(tx *sql.Tx, n *Node) error {
	_, err := tx.Exec(
		`INSERT INTO nodes (id, routine, kind, type_args) VALUES (?, ?, ?, ?)`,
		n.ID, n.Routine, n.Kind, n.TypeArgs,
	)
	return err
}

func insertEdgeTx(tx *sql.Tx, e *Edge) error {
	res, err := tx.Exec(
		`INSERT INTO edges (caller_id, callee_id, file, line, col, resolutions)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.CallerID, e.CalleeID, e.File, e.Line, e.Col, marshalResolutions(e.Resolutions),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id
	return nil
}

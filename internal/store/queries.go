package store

import "fmt"

const nodeCols = "id, routine, kind, type_args"

const edgeCols = "id, caller_id, callee_id, COALESCE(file, ''), COALESCE(line, 0), COALESCE(col, 0), resolutions"

func (s *Store) queryNodes(query string, args ...any) ([]*Node, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Node
	for rows.Next() {
		n := &Node{}
		if err := rows.Scan(&n.ID, &n.Routine, &n.Kind, &n.TypeArgs); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// AllNodes returns every stored node in ID order.
func (s *Store) AllNodes() ([]*Node, error) {
	nodes, err := s.queryNodes("SELECT " + nodeCols + " FROM nodes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("all nodes: %w", err)
	}
	return nodes, nil
}

// NodesByRoutine returns the stored specializations of a routine.
func (s *Store) NodesByRoutine(routine string) ([]*Node, error) {
	nodes, err := s.queryNodes("SELECT "+nodeCols+" FROM nodes WHERE routine = ? ORDER BY id", routine)
	if err != nil {
		return nil, fmt.Errorf("nodes by routine: %w", err)
	}
	return nodes, nil
}

func (s *Store) queryEdges(query string, args ...any) ([]*Edge, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Edge
	for rows.Next() {
		e := &Edge{}
		var res string
		if err := rows.Scan(&e.ID, &e.CallerID, &e.CalleeID, &e.File, &e.Line, &e.Col, &res); err != nil {
			return nil, err
		}
		if e.Resolutions, err = unmarshalResolutions(res); err != nil {
			return nil, fmt.Errorf("edge %d: %w", e.ID, err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// AllEdges returns every stored edge in insertion order.
func (s *Store) AllEdges() ([]*Edge, error) {
	edges, err := s.queryEdges("SELECT " + edgeCols + " FROM edges ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("all edges: %w", err)
	}
	return edges, nil
}

// AllCycles returns the stored cycles in the order they were saved.
func (s *Store) AllCycles() ([]Cycle, error) {
	rows, err := s.db.Query("SELECT cycle_id, node_id FROM cycles ORDER BY cycle_id, position")
	if err != nil {
		return nil, fmt.Errorf("all cycles: %w", err)
	}
	defer rows.Close()

	var (
		result []Cycle
		lastID int64 = -1
	)
	for rows.Next() {
		var cycleID, nodeID int64
		if err := rows.Scan(&cycleID, &nodeID); err != nil {
			return nil, fmt.Errorf("all cycles: scan: %w", err)
		}
		if cycleID != lastID {
			result = append(result, Cycle{})
			lastID = cycleID
		}
		result[len(result)-1] = append(result[len(result)-1], nodeID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("all cycles: rows: %w", err)
	}
	return result, nil
}

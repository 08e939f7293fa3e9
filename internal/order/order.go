// Package order sorts named steps that carry "runs before" constraints.
// It backs both the system-set scheduler and the render graph.
package order

import "fmt"

// Sort returns names ordered so that every edge a->b places a before b.
// Ties keep the order in which names were given, which keeps frame
// execution deterministic across runs. Edges that mention unknown names
// are reported as an error, as are cycles.
func Sort(names []string, edges map[string][]string) ([]string, error) {
	index := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := index[n]; dup {
			return nil, fmt.Errorf("duplicate name %q", n)
		}
		index[n] = i
	}

	indegree := make([]int, len(names))
	for from, tos := range edges {
		if _, ok := index[from]; !ok {
			return nil, fmt.Errorf("edge from unknown name %q", from)
		}
		for _, to := range tos {
			j, ok := index[to]
			if !ok {
				return nil, fmt.Errorf("edge to unknown name %q", to)
			}
			indegree[j]++
		}
	}

	// Kahn's algorithm; the ready list is scanned in declaration order so
	// unconstrained names come out exactly as declared.
	out := make([]string, 0, len(names))
	done := make([]bool, len(names))
	for len(out) < len(names) {
		picked := -1
		for i := range names {
			if !done[i] && indegree[i] == 0 {
				picked = i
				break
			}
		}
		if picked < 0 {
			return nil, fmt.Errorf("cycle among %v", remaining(names, done))
		}
		done[picked] = true
		out = append(out, names[picked])
		for _, to := range edges[names[picked]] {
			indegree[index[to]]--
		}
	}
	return out, nil
}

func remaining(names []string, done []bool) []string {
	var r []string
	for i, n := range names {
		if !done[i] {
			r = append(r, n)
		}
	}
	return r
}

package engine

import "github.com/jhalonen/flowgrid/pkg/api"

// hasCycle runs a depth-first traversal with an on-stack set. It only
// answers yes or no; ExecutionOrder names the offending steps.
func (g *graph) hasCycle() bool {
	visited := make(map[string]bool, len(g.steps))
	onStack := make(map[string]bool, len(g.steps))

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, next := range g.adjacency[id] {
			if !visited[next] {
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for _, id := range g.insertion {
		if !visited[id] && dfs(id) {
			return true
		}
	}
	return false
}

// ExecutionOrder computes a topological ordering with Kahn's algorithm.
// Steps that become eligible simultaneously are emitted in AddStep order.
// If any step cannot be ordered, the graph is cyclic and a CycleError
// naming every unordered step is returned.
func (g *graph) ExecutionOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.steps))
	for _, id := range g.insertion {
		inDegree[id] = 0
	}
	for _, id := range g.insertion {
		for _, next := range g.adjacency[id] {
			inDegree[next]++
		}
	}

	queue := make([]string, 0, len(g.steps))
	for _, id := range g.insertion {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(g.steps))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, next := range g.adjacency[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(g.steps) {
		ordered := make(map[string]bool, len(order))
		for _, id := range order {
			ordered[id] = true
		}
		var missing []string
		for _, id := range g.insertion {
			if !ordered[id] {
				missing = append(missing, id)
			}
		}
		return nil, &api.CycleError{Steps: missing}
	}

	return order, nil
}

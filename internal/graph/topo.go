package graph

// TopologicalOrder computes an execution order over the graph's nodes using
// Kahn's algorithm: repeatedly remove nodes with in-degree zero, decrementing
// each successor's in-degree and enqueuing nodes as they reach zero.
//
// Isolated nodes start at in-degree zero and sort first, in encounter order.
// Edges whose endpoints do not exist are ignored here; referential integrity
// is a separate validation pass. Node ids must be unique: the in-degree map
// is keyed by id, so a duplicated id makes the order meaningless. Callers
// gate on the id-uniqueness pass first.
//
// If the graph contains a cycle the returned order is shorter than
// len(g.Nodes): nodes on or downstream of the cycle never reach in-degree
// zero. Callers detect cycles by comparing lengths.
func TopologicalOrder(g *NodeGraph) []string {
	exists := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		exists[n.ID] = true
	}

	indegree := make(map[string]int, len(g.Nodes))
	successors := make(map[string][]string)
	for _, e := range g.Edges {
		if !exists[e.From] || !exists[e.To] {
			continue
		}
		indegree[e.To]++
		successors[e.From] = append(successors[e.From], e.To)
	}

	var queue []string
	for _, n := range g.Nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]string, 0, len(g.Nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, next := range successors[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return order
}

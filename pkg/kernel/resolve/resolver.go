package resolve

import (
	"sort"
)

// visit states for the depth-first traversal.
const (
	unvisited = iota
	visiting
	resolved
)

// Resolve computes a validated load order for the given node set.
//
// It runs a depth-first traversal from every unvisited node, tracking three
// states per id: unvisited, on the current path ("visiting"), and fully
// resolved. Meeting a visiting id again signals a cycle; meeting an id absent
// from the set signals a missing dependency. Either failure aborts the whole
// call with a typed error and no partial order.
//
// Each node's level is 1 + the maximum level of its direct dependencies, or 0
// if it has none. The result contains every node exactly once, sorted
// ascending by level; equal levels keep the order in which the traversal
// finished them.
func Resolve(nodes []Node) ([]ResolvedEntry, error) {
	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	state := make(map[string]int, len(nodes))
	levels := make(map[string]int, len(nodes))
	var order []ResolvedEntry // completion order of the traversal
	var stack []string        // current path, for cycle diagnostics

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case resolved:
			return nil
		case visiting:
			return &CycleError{Path: cyclePath(stack, id)}
		}

		node, ok := byID[id]
		if !ok {
			requiredBy := ""
			if len(stack) > 0 {
				requiredBy = stack[len(stack)-1]
			}
			return &MissingDependencyError{ID: id, RequiredBy: requiredBy}
		}

		state[id] = visiting
		stack = append(stack, id)

		level := 0
		for _, dep := range node.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
			if l := levels[dep] + 1; l > level {
				level = l
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = resolved
		levels[id] = level
		order = append(order, ResolvedEntry{ID: id, Level: level})
		return nil
	}

	for _, n := range nodes {
		if err := visit(n.ID); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Level < order[j].Level
	})
	return order, nil
}

// cyclePath extracts the chain from the cycle root back to the repeated id.
func cyclePath(stack []string, repeated string) []string {
	start := 0
	for i, id := range stack {
		if id == repeated {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	path = append(path, stack[start:]...)
	return append(path, repeated)
}

// HasCircularDependencies reports whether resolving the node set fails.
//
// Both a cycle and a missing dependency make this return true; the two are
// deliberately not distinguished here. Callers that need the distinction
// should call Resolve and inspect the typed error.
func HasCircularDependencies(nodes []Node) bool {
	_, err := Resolve(nodes)
	return err != nil
}

// TransitiveDependencies returns every id reachable from id through the
// declared dependency relation, excluding id itself. Ids that appear in a
// dependency list but have no node of their own are included; they simply
// contribute no further edges. The result is empty when id is unknown.
func TransitiveDependencies(id string, nodes []Node) []string {
	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	if _, ok := byID[id]; !ok {
		return nil
	}

	seen := map[string]bool{id: true}
	var closure []string

	var walk func(string)
	walk = func(cur string) {
		for _, dep := range byID[cur].DependsOn {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			closure = append(closure, dep)
			walk(dep)
		}
	}
	walk(id)

	return closure
}

// Dependents returns the ids of every node whose direct dependency list
// contains id. The relation is not transitive. Input order is preserved.
func Dependents(id string, nodes []Node) []string {
	var dependents []string
	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			if dep == id {
				dependents = append(dependents, n.ID)
				break
			}
		}
	}
	return dependents
}

// Validate checks every node's declared dependencies against the set.
// It never fails; the result maps each offending node id to the ids it
// references that do not exist.
func Validate(nodes []Node) Validation {
	byID := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = true
	}

	missing := make(map[string][]string)
	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			if !byID[dep] {
				missing[n.ID] = append(missing[n.ID], dep)
			}
		}
	}

	return Validation{Valid: len(missing) == 0, Missing: missing}
}

// LoadOrderFor resolves the union of existing and newNode, then returns the
// suffix of the full load order starting at newNode's id: the new node and
// everything ordered at or after it. A node in existing with the same id is
// replaced by newNode. The empty slice return for an absent id is a defensive
// guard; Resolve always includes every node on success.
func LoadOrderFor(newNode Node, existing []Node) ([]ResolvedEntry, error) {
	union := make([]Node, 0, len(existing)+1)
	for _, n := range existing {
		if n.ID != newNode.ID {
			union = append(union, n)
		}
	}
	union = append(union, newNode)

	order, err := Resolve(union)
	if err != nil {
		return nil, err
	}

	for i, entry := range order {
		if entry.ID == newNode.ID {
			return order[i:], nil
		}
	}
	return nil, nil
}

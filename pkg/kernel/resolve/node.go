package resolve

// Node is a named unit with declared dependencies.
// DependsOn holds references by id; a Node does not own its dependencies.
type Node struct {
	// ID is the unique identifier of the unit.
	ID string

	// DependsOn lists the ids this unit must be initialized after.
	// Order is preserved but has no semantic meaning.
	DependsOn []string
}

// ResolvedEntry pairs a node id with its computed load level.
type ResolvedEntry struct {
	// ID is the node identifier.
	ID string

	// Level is the length of the longest dependency chain from this node
	// to a dependency-free leaf. Leaves have level 0. A valid load order
	// is non-decreasing by level.
	Level int
}

// Validation reports which declared dependencies are absent from a node set.
type Validation struct {
	// Valid is true when every declared dependency id exists in the set.
	Valid bool

	// Missing maps a node id to the subset of its dependency ids that are
	// absent from the set. Nodes with no missing dependencies do not appear.
	Missing map[string][]string
}

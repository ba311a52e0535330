// Package resolve computes deterministic load orders for interdependent
// named units.
//
// Given a set of nodes, each declaring the ids it depends on, Resolve
// returns every node paired with its level: the length of the longest
// dependency chain from that node down to a dependency-free leaf. Sorting
// by level ascending yields an order in which every unit is initialized
// after all of its dependencies.
//
// All functions in this package are pure: they share no state between
// calls and never mutate their inputs. Failures are reported as typed
// errors (CycleError, MissingDependencyError) that abort the whole call;
// a partial order is never returned.
//
// Example:
//
//	order, err := resolve.Resolve([]resolve.Node{
//	    {ID: "store"},
//	    {ID: "vcs", DependsOn: []string{"store"}},
//	    {ID: "pages", DependsOn: []string{"store", "vcs"}},
//	})
//	// order: store (level 0), vcs (level 1), pages (level 2)
package resolve

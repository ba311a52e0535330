package resolve_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsedev/kernel/pkg/kernel/resolve"
)

func TestResolve_Levels(t *testing.T) {
	nodes := []resolve.Node{
		{ID: "pages", DependsOn: []string{"store", "vcs"}},
		{ID: "store"},
		{ID: "vcs", DependsOn: []string{"store"}},
		{ID: "offline", DependsOn: []string{"pages"}},
	}

	order, err := resolve.Resolve(nodes)
	require.NoError(t, err)
	require.Len(t, order, 4)

	levels := make(map[string]int)
	for _, entry := range order {
		levels[entry.ID] = entry.Level
	}

	assert.Equal(t, 0, levels["store"])
	assert.Equal(t, 1, levels["vcs"])
	assert.Equal(t, 2, levels["pages"])
	assert.Equal(t, 3, levels["offline"])

	// Order is ascending by level.
	for i := 1; i < len(order); i++ {
		assert.GreaterOrEqual(t, order[i].Level, order[i-1].Level)
	}
}

func TestResolve_EveryNodeOnceAboveItsDeps(t *testing.T) {
	nodes := []resolve.Node{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"a"}},
		{ID: "d", DependsOn: []string{"b", "c"}},
		{ID: "e"},
	}

	order, err := resolve.Resolve(nodes)
	require.NoError(t, err)
	require.Len(t, order, len(nodes))

	levels := make(map[string]int)
	for _, entry := range order {
		_, dup := levels[entry.ID]
		require.False(t, dup, "node %s appears twice", entry.ID)
		levels[entry.ID] = entry.Level
	}

	for _, n := range nodes {
		if len(n.DependsOn) == 0 {
			assert.Equal(t, 0, levels[n.ID])
		}
		for _, dep := range n.DependsOn {
			assert.Greater(t, levels[n.ID], levels[dep],
				"%s must load after %s", n.ID, dep)
		}
	}
}

func TestResolve_TiesKeepVisitationOrder(t *testing.T) {
	nodes := []resolve.Node{
		{ID: "first"},
		{ID: "second"},
		{ID: "third"},
	}

	order, err := resolve.Resolve(nodes)
	require.NoError(t, err)
	require.Len(t, order, 3)

	assert.Equal(t, "first", order[0].ID)
	assert.Equal(t, "second", order[1].ID)
	assert.Equal(t, "third", order[2].ID)
}

func TestResolve_Empty(t *testing.T) {
	order, err := resolve.Resolve(nil)
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestResolve_Cycle(t *testing.T) {
	nodes := []resolve.Node{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"c"}},
		{ID: "c", DependsOn: []string{"a"}},
	}

	order, err := resolve.Resolve(nodes)
	require.Error(t, err)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, resolve.ErrCycle)

	var cycleErr *resolve.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycleErr.Path)
}

func TestResolve_SelfCycle(t *testing.T) {
	nodes := []resolve.Node{
		{ID: "a", DependsOn: []string{"a"}},
	}

	_, err := resolve.Resolve(nodes)
	require.Error(t, err)

	var cycleErr *resolve.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"a", "a"}, cycleErr.Path)
}

func TestResolve_MissingDependency(t *testing.T) {
	nodes := []resolve.Node{
		{ID: "a", DependsOn: []string{"ghost"}},
	}

	order, err := resolve.Resolve(nodes)
	require.Error(t, err)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, resolve.ErrMissingDependency)

	var missErr *resolve.MissingDependencyError
	require.ErrorAs(t, err, &missErr)
	assert.Equal(t, "ghost", missErr.ID)
	assert.Equal(t, "a", missErr.RequiredBy)
	assert.Contains(t, err.Error(), "ghost")
}

func TestHasCircularDependencies(t *testing.T) {
	t.Run("acyclic", func(t *testing.T) {
		nodes := []resolve.Node{
			{ID: "a"},
			{ID: "b", DependsOn: []string{"a"}},
		}
		assert.False(t, resolve.HasCircularDependencies(nodes))
	})

	t.Run("cycle", func(t *testing.T) {
		nodes := []resolve.Node{
			{ID: "a", DependsOn: []string{"b"}},
			{ID: "b", DependsOn: []string{"c"}},
			{ID: "c", DependsOn: []string{"a"}},
		}
		assert.True(t, resolve.HasCircularDependencies(nodes))
	})

	t.Run("missing dependency also reports true", func(t *testing.T) {
		nodes := []resolve.Node{
			{ID: "a", DependsOn: []string{"ghost"}},
		}
		assert.True(t, resolve.HasCircularDependencies(nodes))
	})
}

func TestTransitiveDependencies(t *testing.T) {
	nodes := []resolve.Node{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"c", "d"}},
		{ID: "c", DependsOn: []string{"d"}},
		{ID: "d"},
		{ID: "unrelated"},
	}

	deps := resolve.TransitiveDependencies("a", nodes)
	assert.ElementsMatch(t, []string{"b", "c", "d"}, deps)
	assert.NotContains(t, deps, "a")

	assert.Empty(t, resolve.TransitiveDependencies("d", nodes))
	assert.Empty(t, resolve.TransitiveDependencies("ghost", nodes))
}

func TestDependents(t *testing.T) {
	nodes := []resolve.Node{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"a", "b"}},
		{ID: "d", DependsOn: []string{"b"}},
	}

	assert.Equal(t, []string{"b", "c"}, resolve.Dependents("a", nodes))
	assert.Equal(t, []string{"c", "d"}, resolve.Dependents("b", nodes))
	// Direct dependents only: d depends on b, not on a.
	assert.NotContains(t, resolve.Dependents("a", nodes), "d")
	assert.Empty(t, resolve.Dependents("d", nodes))
}

func TestValidate(t *testing.T) {
	t.Run("valid set", func(t *testing.T) {
		nodes := []resolve.Node{
			{ID: "a"},
			{ID: "b", DependsOn: []string{"a"}},
		}
		v := resolve.Validate(nodes)
		assert.True(t, v.Valid)
		assert.Empty(t, v.Missing)
	})

	t.Run("missing mapped to offender", func(t *testing.T) {
		nodes := []resolve.Node{
			{ID: "a", DependsOn: []string{"ghost", "phantom"}},
			{ID: "b", DependsOn: []string{"a"}},
			{ID: "c", DependsOn: []string{"ghost"}},
		}
		v := resolve.Validate(nodes)
		assert.False(t, v.Valid)
		assert.Equal(t, []string{"ghost", "phantom"}, v.Missing["a"])
		assert.Equal(t, []string{"ghost"}, v.Missing["c"])
		assert.NotContains(t, v.Missing, "b")
	})
}

func TestLoadOrderFor(t *testing.T) {
	existing := []resolve.Node{
		{ID: "store"},
		{ID: "vcs", DependsOn: []string{"store"}},
	}

	t.Run("suffix starts at the new node", func(t *testing.T) {
		order, err := resolve.LoadOrderFor(
			resolve.Node{ID: "pages", DependsOn: []string{"vcs"}}, existing)
		require.NoError(t, err)
		require.NotEmpty(t, order)
		assert.Equal(t, "pages", order[0].ID)
		assert.Equal(t, 2, order[0].Level)
	})

	t.Run("includes everything ordered at or after", func(t *testing.T) {
		order, err := resolve.LoadOrderFor(
			resolve.Node{ID: "auth"}, existing)
		require.NoError(t, err)
		require.NotEmpty(t, order)
		assert.Equal(t, "auth", order[0].ID)
		// vcs has level 1 and sorts after the level-0 new node.
		ids := make([]string, 0, len(order))
		for _, e := range order {
			ids = append(ids, e.ID)
		}
		assert.Contains(t, ids, "vcs")
	})

	t.Run("propagates resolution failure", func(t *testing.T) {
		_, err := resolve.LoadOrderFor(
			resolve.Node{ID: "bad", DependsOn: []string{"ghost"}}, existing)
		require.Error(t, err)
		assert.True(t, errors.Is(err, resolve.ErrMissingDependency))
	})

	t.Run("replaces an existing node with the same id", func(t *testing.T) {
		order, err := resolve.LoadOrderFor(
			resolve.Node{ID: "vcs", DependsOn: []string{"store"}}, existing)
		require.NoError(t, err)
		require.NotEmpty(t, order)
		assert.Equal(t, "vcs", order[0].ID)
	})
}

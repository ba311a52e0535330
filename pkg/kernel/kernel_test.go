package kernel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsedev/kernel/pkg/kernel"
	"github.com/pulsedev/kernel/pkg/kernel/config"
	"github.com/pulsedev/kernel/pkg/kernel/event"
	"github.com/pulsedev/kernel/pkg/kernel/resolve"
)

func TestNewDefaults(t *testing.T) {
	k := kernel.New()
	require.NotNil(t, k)
	require.NotNil(t, k.Router())

	// Default capacity and retries come from the router defaults; verify
	// indirectly by filling to the default capacity.
	for i := 0; i < event.DefaultRouterConfig.Capacity; i++ {
		require.True(t, k.Router().Emit(event.NewEvent("t", "src", "module", nil)))
	}
	assert.False(t, k.Router().Emit(event.NewEvent("t", "src", "module", nil)))
}

func TestNewWithOptions(t *testing.T) {
	dlq := event.NewMemoryDLQ(0)
	k := kernel.New(
		kernel.WithQueueCapacity(2),
		kernel.WithMaxRetries(1),
		kernel.WithDLQ(dlq),
	)

	r := k.Router()
	r.Register("t", func(ctx context.Context, evt *event.Event) error {
		return errors.New("always fails")
	}, 0)

	require.True(t, r.Emit(event.NewEvent("t", "src", "module", nil)))
	require.True(t, r.Emit(event.NewEvent("t", "src", "module", nil)))
	assert.False(t, r.Emit(event.NewEvent("t", "src", "module", nil)), "capacity 2 applies")

	processed := r.Drain(context.Background())
	assert.Equal(t, 0, processed)

	// MaxRetries 1 means a single attempt, then straight to the DLQ.
	count, err := dlq.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFromConfig(t *testing.T) {
	cfg, err := config.FromYAML([]byte("queue_capacity: 3\nmax_retries: 2\n"))
	require.NoError(t, err)

	k := kernel.FromConfig(cfg)
	r := k.Router()

	for i := 0; i < 3; i++ {
		require.True(t, r.Emit(event.NewEvent("t", "src", "module", nil)))
	}
	assert.False(t, r.Emit(event.NewEvent("t", "src", "module", nil)))
}

func TestFromConfigOptionsOverride(t *testing.T) {
	cfg := config.New(map[string]any{"queue_capacity": 3})

	k := kernel.FromConfig(cfg, kernel.WithQueueCapacity(1))
	r := k.Router()

	require.True(t, r.Emit(event.NewEvent("t", "src", "module", nil)))
	assert.False(t, r.Emit(event.NewEvent("t", "src", "module", nil)))
}

func TestKernelResolve(t *testing.T) {
	k := kernel.New()
	ctx := context.Background()

	nodes := []resolve.Node{
		{ID: "store"},
		{ID: "vcs", DependsOn: []string{"store"}},
		{ID: "pages", DependsOn: []string{"store", "vcs"}},
	}

	order, err := k.Resolve(ctx, nodes)
	require.NoError(t, err)
	require.Len(t, order, 3)
	assert.Equal(t, "store", order[0].ID)

	_, err = k.Resolve(ctx, []resolve.Node{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"a"}},
	})
	assert.ErrorIs(t, err, resolve.ErrCycle)
}

func TestKernelLoadOrderFor(t *testing.T) {
	k := kernel.New()
	ctx := context.Background()

	existing := []resolve.Node{{ID: "store"}}
	order, err := k.LoadOrderFor(ctx, resolve.Node{ID: "vcs", DependsOn: []string{"store"}}, existing)
	require.NoError(t, err)
	require.NotEmpty(t, order)
	assert.Equal(t, "vcs", order[0].ID)

	_, err = k.LoadOrderFor(ctx, resolve.Node{ID: "bad", DependsOn: []string{"ghost"}}, existing)
	assert.ErrorIs(t, err, resolve.ErrMissingDependency)
}

func TestResolveThenRoute(t *testing.T) {
	k := kernel.New()
	ctx := context.Background()

	nodes := []resolve.Node{
		{ID: "store"},
		{ID: "pages", DependsOn: []string{"store"}},
	}
	order, err := k.Resolve(ctx, nodes)
	require.NoError(t, err)

	var started []string
	for _, entry := range order {
		id := entry.ID
		k.Router().Register(id+".ready", func(ctx context.Context, evt *event.Event) error {
			started = append(started, id)
			return nil
		}, 0)
	}

	for _, entry := range order {
		k.Router().Emit(event.NewEvent(entry.ID+".ready", entry.ID, "module", nil))
	}
	processed := k.Router().Drain(ctx)

	assert.Equal(t, 2, processed)
	assert.Equal(t, []string{"store", "pages"}, started)
}

func TestDefaultAndReset(t *testing.T) {
	kernel.Reset()
	t.Cleanup(kernel.Reset)

	first := kernel.Default()
	require.NotNil(t, first)
	assert.Same(t, first, kernel.Default(), "Default must return the same instance")

	kernel.Reset()
	second := kernel.Default()
	assert.NotSame(t, first, second, "Reset must drop the previous instance")

	// State does not leak across Reset.
	first.Router().Emit(event.NewEvent("t", "src", "module", nil))
	assert.Equal(t, 0, second.Router().QueueLength())
}

package device

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedDriver_Deterministic(t *testing.T) {
	d := NewSimulatedDriver(0)
	require.NoError(t, d.Connect(context.Background()))

	a, err := d.Perform(context.Background(), Action{Kind: ActionOpenApp, App: "settings"})
	require.NoError(t, err)
	b, err := d.Perform(context.Background(), Action{Kind: ActionOpenApp, App: "settings"})
	require.NoError(t, err)

	assert.Equal(t, a.Detail, b.Detail)
	assert.Equal(t, "Simulated: opened settings app", a.Detail)
}

func TestSimulatedDriver_AllActionKindsSucceed(t *testing.T) {
	d := NewSimulatedDriver(0)
	ctx := context.Background()

	actions := []Action{
		{Kind: ActionOpenApp, App: "settings"},
		{Kind: ActionTap, Element: "button"},
		{Kind: ActionInputText, Text: "hello"},
		{Kind: ActionGeneric, Description: "check battery"},
	}

	for _, a := range actions {
		outcome, err := d.Perform(ctx, a)
		require.NoError(t, err, "action %s", a.Kind)
		assert.NotEmpty(t, outcome.Detail)
	}
	assert.Equal(t, len(actions), d.Performed())
}

func TestSimulatedDriver_UnknownKind(t *testing.T) {
	d := NewSimulatedDriver(0)
	_, err := d.Perform(context.Background(), Action{Kind: "fly"})
	assert.Error(t, err)
}

func TestSimulatedDriver_LatencyRespectsCancellation(t *testing.T) {
	d := NewSimulatedDriver(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Perform(ctx, Action{Kind: ActionTap})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulatedDriver_ConcurrentUse(t *testing.T) {
	d := NewSimulatedDriver(0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.Perform(context.Background(), Action{Kind: ActionGeneric, Description: "x"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, d.Performed())
}

func TestSimulatedDriver_Model(t *testing.T) {
	d := NewSimulatedDriver(0)
	model, err := d.Model(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Simulated Device", model)
}

package fingerprint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_Capture(t *testing.T) {
	a, err := NewSimulator("2020-0001").Capture(context.Background())
	require.NoError(t, err)
	assert.Len(t, a, templateSize)

	again, err := NewSimulator("2020-0001").Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a, again)

	b, err := NewSimulator("2020-0002").Capture(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewSimulator("x").Capture(ctx)
	assert.Error(t, err)
}

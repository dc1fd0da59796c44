package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "reconnect_scheduled", StateReconnectScheduled.String())
	assert.Equal(t, "exhausted", StateExhausted.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestCoarseProjection(t *testing.T) {
	assert.Equal(t, StatusConnecting, StateConnecting.Coarse())
	assert.Equal(t, StatusConnecting, StateReconnectScheduled.Coarse())
	assert.Equal(t, StatusConnected, StateOpen.Coarse())
	assert.Equal(t, StatusDisconnected, StateClosed.Coarse())
	assert.Equal(t, StatusDisconnected, StateExhausted.Coarse())
}

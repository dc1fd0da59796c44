package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/fusionstream/config"
)

func testConfig() config.AlertConfig {
	return config.AlertConfig{
		RaiseThreshold:    0.7,
		HighThreshold:     0.8,
		CriticalThreshold: 0.9,
		AutoDismiss:       time.Minute,
	}
}

func newTestMonitor(t *testing.T, cfg config.AlertConfig) *Monitor {
	t.Helper()
	return NewMonitor(cfg, nil, nil)
}

func TestRaiseThresholdIsStrict(t *testing.T) {
	m := newTestMonitor(t, testConfig())

	assert.False(t, m.Observe(0.7), "score equal to the threshold must not raise")
	assert.Nil(t, m.Current())

	assert.True(t, m.Observe(0.71))
	rec := m.Current()
	require.NotNil(t, rec)
	assert.Equal(t, SeverityModerate, rec.Severity)
	assert.Equal(t, 0.71, rec.Score)
}

func TestSeverityClassification(t *testing.T) {
	tests := []struct {
		score float64
		want  Severity
	}{
		{0.75, SeverityModerate},
		{0.8, SeverityHigh},
		{0.85, SeverityHigh},
		{0.9, SeverityCritical},
		{0.95, SeverityCritical},
	}

	for _, tt := range tests {
		m := newTestMonitor(t, testConfig())
		require.True(t, m.Observe(tt.score))
		rec := m.Current()
		require.NotNil(t, rec)
		assert.Equal(t, tt.want, rec.Severity, "score %v", tt.score)
	}
}

func TestCrossingWhileActiveIsAbsorbed(t *testing.T) {
	m := newTestMonitor(t, testConfig())

	require.True(t, m.Observe(0.75))
	assert.False(t, m.Observe(0.95), "second crossing must be absorbed")

	rec := m.Current()
	require.NotNil(t, rec)
	assert.Equal(t, SeverityModerate, rec.Severity, "absorbed crossing must not upgrade")
	assert.Equal(t, 0.75, rec.Score)
}

func TestDismissRetiresAndReopensSlot(t *testing.T) {
	m := newTestMonitor(t, testConfig())

	require.True(t, m.Observe(0.75))
	m.Dismiss()
	assert.Nil(t, m.Current())
	assert.False(t, m.Active())

	assert.True(t, m.Observe(0.85), "slot must reopen after dismissal")
	rec := m.Current()
	require.NotNil(t, rec)
	assert.Equal(t, SeverityHigh, rec.Severity)
}

func TestDismissWithoutAlertIsNoOp(t *testing.T) {
	m := newTestMonitor(t, testConfig())
	m.Dismiss()
	assert.Nil(t, m.Current())
}

func TestAutoDismissExpires(t *testing.T) {
	cfg := testConfig()
	cfg.AutoDismiss = 30 * time.Millisecond
	m := newTestMonitor(t, cfg)

	require.True(t, m.Observe(0.95))
	require.NotNil(t, m.Current())

	require.Eventually(t, func() bool {
		return m.Current() == nil
	}, time.Second, 5*time.Millisecond, "alert must expire without dismissal")
}

func TestExpiryAfterManualDismissLeavesNextAlertAlone(t *testing.T) {
	cfg := testConfig()
	cfg.AutoDismiss = 40 * time.Millisecond
	m := newTestMonitor(t, cfg)

	require.True(t, m.Observe(0.75))
	m.Dismiss()

	// Raise a second alert before the first one's expiry would have fired.
	require.True(t, m.Observe(0.95))
	time.Sleep(20 * time.Millisecond)

	rec := m.Current()
	require.NotNil(t, rec, "stale expiry must not retire the replacement alert")
	assert.Equal(t, SeverityCritical, rec.Severity)
}

func TestCurrentReturnsCopy(t *testing.T) {
	m := newTestMonitor(t, testConfig())

	require.True(t, m.Observe(0.85))
	rec := m.Current()
	require.NotNil(t, rec)
	rec.Severity = SeverityCritical

	again := m.Current()
	require.NotNil(t, again)
	assert.Equal(t, SeverityHigh, again.Severity)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "moderate", SeverityModerate.String())
	assert.Equal(t, "high", SeverityHigh.String())
	assert.Equal(t, "critical", SeverityCritical.String())
	assert.Equal(t, "unknown", Severity(9).String())
}

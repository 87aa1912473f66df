package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/canteen-app/store"
)

func TestCapabilityProbeMemoized(t *testing.T) {
	fs := newFakeStore()
	r := testResolver(fs)

	assert.True(t, r.ResponsesSupportPollID())
	probes := fs.selectCalls

	// subsequent calls answer from the memo
	assert.True(t, r.ResponsesSupportPollID())
	assert.True(t, r.ResponsesSupportPollID())
	assert.Equal(t, probes, fs.selectCalls)

	// reset forces one more probe
	r.Caps.Reset()
	assert.True(t, r.ResponsesSupportPollID())
	assert.Equal(t, probes+1, fs.selectCalls)
}

func TestCapabilityProbeMissingColumn(t *testing.T) {
	fs := newFakeStore()
	fs.responsesPollID = false
	r := testResolver(fs)

	assert.False(t, r.ResponsesSupportPollID())
	supported, known := r.Caps.Get()
	assert.True(t, known)
	assert.False(t, supported)
}

func TestCapabilityProbeOtherErrorMeansSupported(t *testing.T) {
	fs := newFakeStore()
	fs.failErr = &store.Error{Code: "XX000", Message: "connection reset"}
	r := testResolver(fs)

	// only a definite missing-column signal marks the capability absent
	assert.True(t, r.ResponsesSupportPollID())
}

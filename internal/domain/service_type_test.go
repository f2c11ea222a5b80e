package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultServiceTypes(t *testing.T) {
	types := DefaultServiceTypes()
	require.Len(t, types, 4)

	byID := make(map[string]*ServiceType, len(types))
	for _, st := range types {
		assert.True(t, st.Active, "service %s should start active", st.ID)
		assert.Greater(t, st.EstimatedDuration, 0, "service %s", st.ID)
		assert.Greater(t, st.MaxConcurrent, 0, "service %s", st.ID)
		byID[st.ID] = st
	}

	require.Contains(t, byID, "haircut")
	assert.Equal(t, 30, byID["haircut"].EstimatedDuration)
	assert.Equal(t, 3, byID["haircut"].MaxConcurrent)

	require.Contains(t, byID, "massage")
	require.Contains(t, byID, "consultation")
	require.Contains(t, byID, "manicure")
}

func TestDefaultServiceTypes_FreshCopies(t *testing.T) {
	a := DefaultServiceTypes()
	a[0].Active = false

	b := DefaultServiceTypes()
	assert.True(t, b[0].Active)
}

func TestDefaultQueueConfiguration(t *testing.T) {
	cfg := DefaultQueueConfiguration()

	assert.Equal(t, 50, cfg.MaxQueueLength)
	assert.True(t, cfg.PriorityEnabled)
	assert.True(t, cfg.AutoProgressEnabled)
	assert.Equal(t, EstimationSimple, cfg.EstimationAlgorithm)
}

func TestEstimationAlgorithm_Valid(t *testing.T) {
	assert.True(t, EstimationSimple.Valid())
	assert.True(t, EstimationHistorical.Valid())
	assert.True(t, EstimationMLBased.Valid())

	assert.False(t, EstimationAlgorithm("").Valid())
	assert.False(t, EstimationAlgorithm("guesswork").Valid())
}

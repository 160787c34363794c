package medication

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	rec := Record{Code: "M1234", Name: "Aspirin1", CoveragePercentage: 80, Deductible: 10, BasePrice: 100}

	event, err := NewEvent(EventMedicationCreated, rec)
	require.NoError(t, err)
	require.NotEmpty(t, event.ID)
	require.Equal(t, "M1234", event.Code)
	require.Equal(t, EventMedicationCreated, event.EventType)
	require.False(t, event.Timestamp.IsZero())

	var embedded Record
	require.NoError(t, json.Unmarshal(event.EventData, &embedded))
	require.Equal(t, rec.Code, embedded.Code)
	require.Equal(t, rec.CoveragePercentage, embedded.CoveragePercentage)
}

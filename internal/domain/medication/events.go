package medication

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a catalog change event.
type EventType string

const (
	EventMedicationCreated EventType = "MedicationCreated"
	EventMedicationUpdated EventType = "MedicationUpdated"
	EventMedicationDeleted EventType = "MedicationDeleted"
)

// Event is a catalog change published to downstream consumers via the
// transactional outbox.
type Event struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	EventType EventType       `json:"event_type"`
	EventData json.RawMessage `json:"event_data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent builds a catalog event for the given record.
func NewEvent(eventType EventType, rec Record) (*Event, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        uuid.New().String(),
		Code:      rec.Code,
		EventType: eventType,
		EventData: data,
		Timestamp: time.Now().UTC(),
	}, nil
}

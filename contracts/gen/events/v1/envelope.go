package v1

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// SchemaVersion is the envelope layout produced by New.
const SchemaVersion = 1

var ErrInvalidEnvelope = errors.New("invalid event envelope")

// Envelope wraps every escrow event that leaves the service through the
// outbox. Field names are part of the wire contract.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// New builds an envelope keyed by partitionKeyPath/partitionKey and encodes
// data as its payload. The event id doubles as the trace id.
func New(
	eventID string,
	eventType string,
	sourceService string,
	partitionKeyPath string,
	partitionKey string,
	occurredAt time.Time,
	data any,
) (Envelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	envelope := Envelope{
		EventID:          strings.TrimSpace(eventID),
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    sourceService,
		TraceID:          strings.TrimSpace(eventID),
		SchemaVersion:    SchemaVersion,
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		Data:             payload,
	}
	if err := envelope.Validate(); err != nil {
		return Envelope{}, err
	}
	return envelope, nil
}

func (e Envelope) Validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return errors.Join(ErrInvalidEnvelope, errors.New("event_id is required"))
	case strings.TrimSpace(e.EventType) == "":
		return errors.Join(ErrInvalidEnvelope, errors.New("event_type is required"))
	case strings.TrimSpace(e.PartitionKey) == "":
		return errors.Join(ErrInvalidEnvelope, errors.New("partition_key is required"))
	case e.SchemaVersion <= 0:
		return errors.Join(ErrInvalidEnvelope, errors.New("schema_version must be positive"))
	}
	return nil
}

// DecodeData unmarshals the payload into target.
func (e Envelope) DecodeData(target any) error {
	if len(e.Data) == 0 {
		return errors.Join(ErrInvalidEnvelope, errors.New("data is empty"))
	}
	return json.Unmarshal(e.Data, target)
}

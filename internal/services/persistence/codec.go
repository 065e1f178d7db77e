package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcoot/jukebox/internal/model"
	"github.com/mcoot/jukebox/internal/storage"
)

// Schema identifiers written into every snapshot envelope
const (
	SchemaAccounts = "jukebox.accounts/v1"
	SchemaCatalog  = "jukebox.catalog/v1"
	SchemaDay      = "jukebox.day/v1"
	SchemaQueue    = "jukebox.queue/v1"
)

// envelope wraps every snapshot payload
type envelope struct {
	Schema  string          `json:"schema"`
	TakenAt time.Time       `json:"taken_at"`
	Payload json.RawMessage `json:"payload"`
}

type accountsPayload struct {
	Accounts []model.AccountRecord `json:"accounts"`
}

type catalogPayload struct {
	Tracks []model.TrackRecord `json:"tracks"`
}

type queuePayload struct {
	Entries []model.QueueEntry `json:"entries"`
}

// schemaFor returns the schema a named snapshot is written with
func schemaFor(name storage.SnapshotName) (string, error) {
	switch name {
	case storage.SnapshotAccounts:
		return SchemaAccounts, nil
	case storage.SnapshotCatalog:
		return SchemaCatalog, nil
	case storage.SnapshotDay:
		return SchemaDay, nil
	case storage.SnapshotQueue:
		return SchemaQueue, nil
	default:
		return "", fmt.Errorf("unknown snapshot %q", name)
	}
}

func encodeEnvelope(schema string, takenAt time.Time, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", schema, err)
	}
	return json.Marshal(envelope{
		Schema:  schema,
		TakenAt: takenAt.UTC(),
		Payload: raw,
	})
}

// decodeEnvelope checks the schema and unmarshals the payload into v
func decodeEnvelope(data []byte, schema string, v any) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %w", model.ErrCorruptSnapshot, err)
	}
	if env.Schema != schema {
		return fmt.Errorf("%w: got %q, want %q", model.ErrSchemaMismatch, env.Schema, schema)
	}
	if len(env.Payload) == 0 {
		return fmt.Errorf("%w: missing payload", model.ErrCorruptSnapshot)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("%w: %w", model.ErrCorruptSnapshot, err)
	}
	return nil
}

func decodeAccounts(data []byte) ([]model.AccountRecord, error) {
	var p accountsPayload
	if err := decodeEnvelope(data, SchemaAccounts, &p); err != nil {
		return nil, err
	}
	for _, r := range p.Accounts {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrCorruptSnapshot, err)
		}
	}
	return p.Accounts, nil
}

func decodeCatalog(data []byte) ([]model.TrackRecord, error) {
	var p catalogPayload
	if err := decodeEnvelope(data, SchemaCatalog, &p); err != nil {
		return nil, err
	}
	for _, r := range p.Tracks {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrCorruptSnapshot, err)
		}
	}
	return p.Tracks, nil
}

func decodeDay(data []byte) (model.DayRecord, error) {
	var rec model.DayRecord
	if err := decodeEnvelope(data, SchemaDay, &rec); err != nil {
		return model.DayRecord{}, err
	}
	if err := rec.Validate(); err != nil {
		return model.DayRecord{}, fmt.Errorf("%w: %w", model.ErrCorruptSnapshot, err)
	}
	return rec, nil
}

func decodeQueue(data []byte) ([]model.QueueEntry, error) {
	var p queuePayload
	if err := decodeEnvelope(data, SchemaQueue, &p); err != nil {
		return nil, err
	}
	for _, e := range p.Entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrCorruptSnapshot, err)
		}
	}
	return p.Entries, nil
}

package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"aerocode/internal/domain"
)

// Payload is the free-form body of a journal event.
type Payload map[string]any

// Encode renders a payload as the JSON stored in the journal.
func Encode(p Payload) string {
	if p == nil {
		p = Payload{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(data)
}

type Writer struct{}

func (w Writer) Append(ctx context.Context, tx *sql.Tx, evt domain.Event) error {
	if evt.Payload == "" {
		evt.Payload = "{}"
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO events(ts,type,entity_kind,entity_id,actor_id,payload_json) VALUES (?,?,?,?,?,?)`,
		evt.TS, evt.Type, evt.EntityKind, nullable(evt.EntityID), evt.ActorID, evt.Payload)
	if err != nil {
		return fmt.Errorf("append event %s: %w", evt.Type, err)
	}
	return nil
}

func (w Writer) AppendAll(ctx context.Context, tx *sql.Tx, evts []domain.Event) error {
	for _, evt := range evts {
		if err := w.Append(ctx, tx, evt); err != nil {
			return err
		}
	}
	return nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

package obs

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Event writes a structured domain event line (login, logout, credential
// reissue, order placement, fulfillment failure). The actor is whatever
// account identifier the caller already resolved; empty means anonymous.
func Event(name, actorID string, fields map[string]any) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("event name is required")
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"type":  "event",
		"event": name,
	}
	if actorID != "" {
		entry["account_id"] = actorID
	}
	if len(fields) > 0 {
		copied := make(map[string]any, len(fields))
		for k, v := range fields {
			copied[k] = v
		}
		entry["fields"] = copied
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	Logger().Println(string(data))
	return nil
}

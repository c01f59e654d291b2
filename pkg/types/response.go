package types

import "encoding/json"

// SuccessEnvelope renders {"success":true,"<Key>":Data,...}. Key is the
// entity's singular or plural name; Fields carries extra top-level values
// such as bulk-mapping counters.
type SuccessEnvelope struct {
	Key        string
	Data       any
	Message    string
	NextCursor string
	Fields     map[string]any
}

func (e SuccessEnvelope) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Fields)+4)
	for k, v := range e.Fields {
		out[k] = v
	}
	out["success"] = true
	if e.Key != "" {
		out[e.Key] = e.Data
	}
	if e.Message != "" {
		out["message"] = e.Message
	}
	if e.NextCursor != "" {
		out["next_cursor"] = e.NextCursor
	}
	return json.Marshal(out)
}

type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

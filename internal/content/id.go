package content

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a row identity. Backends hand out uuids as strings and serial keys
// as numbers; both decode to the same string form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("ID.UnmarshalJSON: %w", err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("ID.UnmarshalJSON: %w", err)
	}
	*id = ID(n.String())

	return nil
}

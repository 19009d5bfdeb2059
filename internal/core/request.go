// AngelaMos | 2026
// request.go

package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// NumericString accepts either a JSON string or a JSON number. Clients
// send consumer and identity numbers both ways.
type NumericString string

func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*n = NumericString(num.String())
	return nil
}

func (n NumericString) Int64() (int64, error) {
	v, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", string(n), ErrInvalidInput)
	}
	return v, nil
}

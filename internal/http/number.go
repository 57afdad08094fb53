package http

import (
	"bytes"
	"encoding/json"
)

// Number is a request field that may arrive as a JSON number or as a
// numeric string. The text is kept verbatim for the services to parse;
// null and absent both leave it empty.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(s)
	default:
		// Booleans and objects fall through as text and fail parsing later.
		*n = Number(b)
	}
	return nil
}

func (n Number) String() string {
	return string(n)
}

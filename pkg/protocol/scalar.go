package protocol

import (
	"encoding/json"
	"fmt"
)

// Scalar is a string field that tolerates JSON numbers and booleans on the
// wire, normalizing them to their literal text ("2" for 2, "true" for
// true). Component custom_id values in particular arrive as either form
// depending on the client that produced them.
type Scalar string

func (s Scalar) String() string { return string(s) }

// MarshalJSON always emits the canonical string form.
func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *Scalar) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return fmt.Errorf("protocol: decode scalar: %w", err)
		}
		*s = Scalar(v)
		return nil
	}
	if b[0] == '{' || b[0] == '[' {
		return fmt.Errorf("protocol: scalar cannot hold %s", string(b[0]))
	}
	// Number or boolean: keep the literal token text.
	*s = Scalar(b)
	return nil
}

package modules

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// ToJSON marshals any value to a JSON string.
// Used by module handlers to serialize API responses.
func ToJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal response")
	}
	return string(b), nil
}

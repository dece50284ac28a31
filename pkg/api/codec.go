package api

import (
	"encoding/json"
	"fmt"
)

// JSONCodec is a connect.Codec for plain Go structs. Connect's built-in
// JSON codec only accepts protobuf messages.
type JSONCodec struct{}

// Name is "json" so the codec replaces the built-in one and serves
// application/json requests.
func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}

package event

import "encoding/json"

// DecodePayload extracts a typed payload from a delivered event. Payloads
// published through the in-process bus still carry their concrete type and
// assert directly; anything that crossed a serialization boundary, such as
// a replayed dead letter, is rebuilt through a JSON round trip.
func DecodePayload[T any](payload interface{}) (T, error) {
	if typed, ok := payload.(T); ok {
		return typed, nil
	}
	var decoded T
	raw, err := json.Marshal(payload)
	if err != nil {
		return decoded, err
	}
	return decoded, json.Unmarshal(raw, &decoded)
}

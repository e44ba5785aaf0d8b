package console

import "encoding/json"

// The backend has shipped collection responses in several envelopes over
// time: a bare top-level array, {"data": [...]}, {"items": [...]},
// {"articles": [...]}, and {"status": true, "clients": [...]}. Each
// candidate shape is attempted with a strict parse in priority order --
// a bare array always wins -- and the first that decodes to an actual
// JSON array is used. No candidate matching means an empty collection,
// not an error.

// decodeCollection resolves body to the elements of the collection,
// probing the given envelope keys after the top-level-array form.
func decodeCollection(body []byte, envelopeKeys ...string) []json.RawMessage {
	if elems, ok := asArray(body); ok {
		return elems
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}

	for _, key := range envelopeKeys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		if elems, ok := asArray(raw); ok {
			return elems
		}
	}
	return nil
}

// asArray is the parse-or-reject step: it succeeds only when raw is a
// JSON array, never when it is null, an object, or a scalar.
func asArray(raw []byte) ([]json.RawMessage, bool) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	if elems == nil {
		// "null" decodes without error but is not an array
		return nil, false
	}
	return elems, true
}

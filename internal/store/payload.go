package store

import (
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"

	verrors "github.com/vectorium/vectorium/internal/errors"
)

// encodePayload converts a Payload to the Qdrant wire map.
func encodePayload(p Payload) map[string]*qdrant.Value {
	return map[string]*qdrant.Value{
		fieldPath: {
			Kind: &qdrant.Value_StringValue{StringValue: p.Path},
		},
		fieldSize: {
			Kind: &qdrant.Value_IntegerValue{IntegerValue: p.Size},
		},
		fieldLastModified: {
			Kind: &qdrant.Value_IntegerValue{IntegerValue: p.LastModified},
		},
		fieldPreview: {
			Kind: &qdrant.Value_StringValue{StringValue: p.Preview},
		},
	}
}

// decodePayload converts the Qdrant wire map back to a Payload.
// A missing or mistyped path field means the collection holds data we
// did not write, which is a protocol error.
func decodePayload(m map[string]*qdrant.Value) (Payload, error) {
	path, err := stringField(m, fieldPath)
	if err != nil {
		return Payload{}, err
	}

	var p Payload
	p.Path = path
	p.Size = intField(m, fieldSize)
	p.LastModified = intField(m, fieldLastModified)
	if v, ok := m[fieldPreview]; ok {
		p.Preview = v.GetStringValue()
	}
	return p, nil
}

func stringField(m map[string]*qdrant.Value, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", verrors.StoreProtocol(
			fmt.Sprintf("payload missing %q field", key), nil)
	}
	s, ok := v.GetKind().(*qdrant.Value_StringValue)
	if !ok {
		return "", verrors.StoreProtocol(
			fmt.Sprintf("payload field %q is not a string", key), nil)
	}
	return s.StringValue, nil
}

func intField(m map[string]*qdrant.Value, key string) int64 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	return v.GetIntegerValue()
}

package cache

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

type envelope struct {
	Kind    Kind               `msgpack:"k"`
	Payload msgpack.RawMessage `msgpack:"p"`
}

func encodeValue(value Value) ([]byte, error) {
	payload, err := msgpack.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", value.Kind(), err)
	}

	data, err := msgpack.Marshal(envelope{Kind: value.Kind(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s envelope: %w", value.Kind(), err)
	}
	return data, nil
}

func decodeValue(data []byte) (Value, error) {
	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode cache envelope: %w", err)
	}

	switch env.Kind {
	case KindMessage:
		var v MessageEntry
		if err := msgpack.Unmarshal(env.Payload, &v); err != nil {
			return nil, fmt.Errorf("failed to decode message entry: %w", err)
		}
		return v, nil
	case KindCounter:
		var v CounterEntry
		if err := msgpack.Unmarshal(env.Payload, &v); err != nil {
			return nil, fmt.Errorf("failed to decode counter entry: %w", err)
		}
		return v, nil
	case KindMarker:
		return MarkerEntry{}, nil
	default:
		return nil, fmt.Errorf("unknown cache value kind %q", env.Kind)
	}
}

// Package tabular normalizes fetched JSON payloads into row/column tables.
package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind tags the shape of a decoded payload.
type Kind int

const (
	// KindEmpty is a payload with no data: JSON null, an empty object or
	// array, or an empty body on a 2xx response.
	KindEmpty Kind = iota
	// KindRecord is a single JSON object.
	KindRecord
	// KindList is a JSON array of elements.
	KindList
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindList:
		return "list"
	default:
		return "empty"
	}
}

// Payload is the tagged result of decoding a fetched JSON body.
// Exactly one of Record/List is populated, matching Kind. Key order of
// top-level objects is preserved for column ordering, which encoding/json
// maps alone would lose.
type Payload struct {
	Kind   Kind
	Record map[string]any
	List   []any

	recordKeys []string
	listKeys   [][]string // parallel to List; nil entry for non-objects
}

// IsEmpty reports whether the payload carries no data.
func (p Payload) IsEmpty() bool {
	return p.Kind == KindEmpty
}

// Len returns the number of records the payload represents.
func (p Payload) Len() int {
	switch p.Kind {
	case KindRecord:
		return 1
	case KindList:
		return len(p.List)
	default:
		return 0
	}
}

// Decode classifies a JSON body into a Payload. An empty or whitespace-only
// body decodes as KindEmpty rather than an error, since the remote API
// answers 2xx with no content for some requests.
func Decode(data []byte) (Payload, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Payload{Kind: KindEmpty}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	v, keys, err := parseValue(dec)
	if err != nil {
		return Payload{}, fmt.Errorf("invalid JSON payload: %w", err)
	}

	switch val := v.(type) {
	case nil:
		return Payload{Kind: KindEmpty}, nil
	case map[string]any:
		if len(val) == 0 {
			return Payload{Kind: KindEmpty}, nil
		}
		return Payload{Kind: KindRecord, Record: val, recordKeys: keys}, nil
	case orderedList:
		if len(val.elems) == 0 {
			return Payload{Kind: KindEmpty}, nil
		}
		return Payload{Kind: KindList, List: val.elems, listKeys: val.keys}, nil
	default:
		// A bare scalar body. Treat it as a one-element list so the
		// normalizer's scalar handling applies.
		return Payload{Kind: KindList, List: []any{val}, listKeys: [][]string{nil}}, nil
	}
}

// orderedList carries array elements plus the key order of object elements.
type orderedList struct {
	elems []any
	keys  [][]string
}

// parseValue reads one JSON value from the decoder. For objects it also
// returns the keys in document order; nested objects keep plain maps since
// only top-level key order matters for columns.
func parseValue(dec *json.Decoder) (any, []string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		// string, float64, bool or nil
		return tok, nil, nil
	}

	switch delim {
	case '{':
		return parseObject(dec)
	case '[':
		return parseArray(dec)
	default:
		return nil, nil, fmt.Errorf("unexpected token %v", delim)
	}
}

func parseObject(dec *json.Decoder) (any, []string, error) {
	obj := make(map[string]any)
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected object key %v", tok)
		}
		val, _, err := parseValue(dec)
		if err != nil {
			return nil, nil, err
		}
		if inner, ok := val.(orderedList); ok {
			val = inner.elems
		}
		obj[key] = val
		keys = append(keys, key)
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return obj, keys, nil
}

func parseArray(dec *json.Decoder) (any, []string, error) {
	list := orderedList{}
	for dec.More() {
		val, keys, err := parseValue(dec)
		if err != nil {
			return nil, nil, err
		}
		if inner, ok := val.(orderedList); ok {
			val = inner.elems
		}
		list.elems = append(list.elems, val)
		list.keys = append(list.keys, keys)
	}
	// closing bracket
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return list, nil, nil
}

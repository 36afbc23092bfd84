package job

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OutputKind distinguishes the two shapes a provider may return.
type OutputKind int

const (
	OutputSingle OutputKind = iota + 1
	OutputList
)

// Output is either a SingleResult (caption string, mesh object, ...) or a
// ResultList (asset URLs). Items are kept as raw JSON and never interpreted.
type Output struct {
	kind   OutputKind
	single json.RawMessage
	list   []json.RawMessage
}

// NewSingleOutput wraps one opaque result.
func NewSingleOutput(raw json.RawMessage) *Output {
	return &Output{kind: OutputSingle, single: raw}
}

// NewListOutput wraps a list of opaque results.
func NewListOutput(items []json.RawMessage) *Output {
	return &Output{kind: OutputList, list: items}
}

// ParseOutput normalizes a provider output value. JSON null or an absent value yields nil.
func ParseOutput(raw json.RawMessage) (*Output, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode output list: %w", err)
		}
		return NewListOutput(items), nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("decode output: invalid JSON")
	}
	return NewSingleOutput(append(json.RawMessage(nil), trimmed...)), nil
}

// Kind returns the output shape.
func (o *Output) Kind() OutputKind {
	return o.kind
}

// Items returns the list items, or the single result as a one-element slice.
func (o *Output) Items() []json.RawMessage {
	if o == nil {
		return nil
	}
	if o.kind == OutputList {
		return o.list
	}
	return []json.RawMessage{o.single}
}

// IsEmpty reports whether the output carries no usable result.
func (o *Output) IsEmpty() bool {
	if o == nil {
		return true
	}
	switch o.kind {
	case OutputList:
		return len(o.list) == 0
	case OutputSingle:
		v := bytes.TrimSpace(o.single)
		return len(v) == 0 || bytes.Equal(v, []byte("null")) || bytes.Equal(v, []byte(`""`))
	}
	return true
}

// MarshalJSON re-emits the output in the shape the provider used.
func (o *Output) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	if o.kind == OutputList {
		if o.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(o.list)
	}
	if len(o.single) == 0 {
		return []byte("null"), nil
	}
	return o.single, nil
}

// UnmarshalJSON accepts either shape, so printed results can be read back.
func (o *Output) UnmarshalJSON(data []byte) error {
	parsed, err := ParseOutput(data)
	if err != nil {
		return err
	}
	if parsed == nil {
		*o = Output{}
		return nil
	}
	*o = *parsed
	return nil
}

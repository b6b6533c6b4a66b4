package storage

import (
	"encoding/json"
	"fmt"
)

// Values share a single JSON form across every consumer: a type discriminator
// plus the fields that shape requires.
//
//	{"type":"string","value":"MIT"}
//	{"type":"boolean","value":true}
//	{"type":"number","value":42}
//	{"type":"ref","documentUri":"https://...","id":"SPDXRef-File","objectType":"File"}
//	{"type":"list","values":[...]}

func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{Type: KindText.String(), Value: t.Value})
}

func (b Bool) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Value bool   `json:"value"`
	}{Type: KindBool.String(), Value: b.Value})
}

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string  `json:"type"`
		Value float64 `json:"value"`
	}{Type: KindNumber.String(), Value: n.Value})
}

func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        string `json:"type"`
		DocumentURI string `json:"documentUri"`
		ID          string `json:"id"`
		ObjectType  string `json:"objectType,omitempty"`
	}{Type: KindRef.String(), DocumentURI: r.DocumentURI, ID: r.ID, ObjectType: r.Type})
}

func (l List) MarshalJSON() ([]byte, error) {
	values := []Value(l)
	if values == nil {
		values = []Value{}
	}

	return json.Marshal(struct {
		Type   string  `json:"type"`
		Values []Value `json:"values"`
	}{Type: KindList.String(), Values: values})
}

// UnmarshalValue decodes a single value from its JSON form.
func UnmarshalValue(data []byte) (Value, error) {
	envelope := struct {
		Type        string            `json:"type"`
		Value       json.RawMessage   `json:"value"`
		DocumentURI string            `json:"documentUri"`
		ID          string            `json:"id"`
		ObjectType  string            `json:"objectType"`
		Values      []json.RawMessage `json:"values"`
	}{}

	err := json.Unmarshal(data, &envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal value: %w", err)
	}

	switch envelope.Type {
	case KindText.String():
		v := Text{}
		if err := decodeScalar(envelope.Value, &v.Value); err != nil {
			return nil, err
		}
		return v, nil
	case KindBool.String():
		v := Bool{}
		if err := decodeScalar(envelope.Value, &v.Value); err != nil {
			return nil, err
		}
		return v, nil
	case KindNumber.String():
		v := Number{}
		if err := decodeScalar(envelope.Value, &v.Value); err != nil {
			return nil, err
		}
		return v, nil
	case KindRef.String():
		return Ref{
			DocumentURI: envelope.DocumentURI,
			ID:          envelope.ID,
			Type:        envelope.ObjectType,
		}, nil
	case KindList.String():
		list := make(List, 0, len(envelope.Values))
		for _, raw := range envelope.Values {
			element, err := UnmarshalValue(raw)
			if err != nil {
				return nil, err
			}
			list = append(list, element)
		}
		return list, nil
	}

	return nil, NewInvalidTypeError(fmt.Sprintf("unknown value type %q", envelope.Type))
}

// UnmarshalValueList decodes a JSON array of values.
func UnmarshalValueList(data []byte) ([]Value, error) {
	raw := []json.RawMessage{}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal value list: %w", err)
	}

	values := make([]Value, 0, len(raw))
	for _, r := range raw {
		value, err := UnmarshalValue(r)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	return values, nil
}

func decodeScalar[T any](raw json.RawMessage, into *T) error {
	if len(raw) == 0 {
		return NewInvalidTypeError("value is missing from scalar")
	}

	err := json.Unmarshal(raw, into)
	if err != nil {
		return NewInvalidTypeError(err.Error())
	}

	return nil
}

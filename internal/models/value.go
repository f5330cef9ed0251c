package models

import "encoding/json"

// ValueObj is a decoded criterion value. Exactly one shape is used:
// {value}, {key, value}, {source, key, value} or {arrayValue}.
// Key and Source are pointers so that an empty key survives a round trip.
type ValueObj struct {
	Source     *string
	Key        *string
	Value      string
	ArrayValue []string
	// IsArray marks the arrayValue shape even when the array is empty
	IsArray bool
}

// PlainValue {value}
func PlainValue(v string) ValueObj {
	return ValueObj{Value: v}
}

// KeyValue {key, value}
func KeyValue(k, v string) ValueObj {
	return ValueObj{Key: &k, Value: v}
}

// SourceKeyValue {source, key, value}
func SourceKeyValue(s, k, v string) ValueObj {
	return ValueObj{Source: &s, Key: &k, Value: v}
}

// ArrayValue {arrayValue}
func ArrayValue(values []string) ValueObj {
	arr := make([]string, len(values))
	copy(arr, values)
	return ValueObj{ArrayValue: arr, IsArray: true}
}

// KeyOr returns the key or def when absent
func (v ValueObj) KeyOr(def string) string {
	if v.Key == nil {
		return def
	}
	return *v.Key
}

// SourceOr returns the source or def when absent
func (v ValueObj) SourceOr(def string) string {
	if v.Source == nil {
		return def
	}
	return *v.Source
}

// Equal compares shape and contents
func (v ValueObj) Equal(o ValueObj) bool {
	if v.IsArray != o.IsArray {
		return false
	}
	if v.IsArray {
		if len(v.ArrayValue) != len(o.ArrayValue) {
			return false
		}
		for i := range v.ArrayValue {
			if v.ArrayValue[i] != o.ArrayValue[i] {
				return false
			}
		}
		return true
	}
	return equalPtr(v.Source, o.Source) && equalPtr(v.Key, o.Key) && v.Value == o.Value
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type valueObjJSON struct {
	Source     *string   `json:"source,omitempty"`
	Key        *string   `json:"key,omitempty"`
	Value      *string   `json:"value,omitempty"`
	ArrayValue *[]string `json:"arrayValue,omitempty"`
}

// MarshalJSON emits only the fields of the active shape
func (v ValueObj) MarshalJSON() ([]byte, error) {
	if v.IsArray {
		arr := v.ArrayValue
		if arr == nil {
			arr = []string{}
		}
		return json.Marshal(valueObjJSON{ArrayValue: &arr})
	}
	val := v.Value
	return json.Marshal(valueObjJSON{Source: v.Source, Key: v.Key, Value: &val})
}

// UnmarshalJSON accepts any of the four shapes
func (v *ValueObj) UnmarshalJSON(data []byte) error {
	var raw valueObjJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueObj{Source: raw.Source, Key: raw.Key}
	if raw.ArrayValue != nil {
		v.IsArray = true
		v.ArrayValue = *raw.ArrayValue
		if v.ArrayValue == nil {
			v.ArrayValue = []string{}
		}
		return nil
	}
	if raw.Value != nil {
		v.Value = *raw.Value
	}
	return nil
}

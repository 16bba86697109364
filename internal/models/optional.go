package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// OptionalFloat is a number that may be absent. The zero value is absent,
// which is not the same thing as a present 0.
type OptionalFloat struct {
	value float64
	valid bool
}

// Some returns a present value.
func Some(v float64) OptionalFloat {
	return OptionalFloat{value: v, valid: true}
}

// None returns an absent value.
func None() OptionalFloat {
	return OptionalFloat{}
}

// OptionalFromPtr maps nil to absent and anything else to a present value.
func OptionalFromPtr(v *float64) OptionalFloat {
	if v == nil {
		return None()
	}
	return Some(*v)
}

func (o OptionalFloat) Get() (float64, bool) {
	return o.value, o.valid
}

func (o OptionalFloat) IsPresent() bool {
	return o.valid
}

// OrElse returns the value, or def when absent.
func (o OptionalFloat) OrElse(def float64) float64 {
	if !o.valid {
		return def
	}
	return o.value
}

// Ptr returns a pointer to a copy of the value, or nil when absent.
func (o OptionalFloat) Ptr() *float64 {
	if !o.valid {
		return nil
	}
	v := o.value
	return &v
}

func (o OptionalFloat) String() string {
	if !o.valid {
		return "unknown"
	}
	return strconv.FormatFloat(o.value, 'f', -1, 64)
}

func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None()
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decoding optional number: %w", err)
	}
	*o = Some(v)
	return nil
}

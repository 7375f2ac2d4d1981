package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Object is the structured main_data value, stored as JSON text.
type Object map[string]any

// List is the structured template value, stored as JSON text.
type List []any

// Value stores an empty object as NULL so COALESCE keeps the previous value.
func (o Object) Value() (driver.Value, error) {
	if len(o) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(map[string]any(o))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (o *Object) Scan(src any) error {
	out := Object{}
	if err := scanJSON(src, (*map[string]any)(&out)); err != nil {
		return fmt.Errorf("scan main_data: %w", err)
	}
	if out == nil {
		out = Object{}
	}
	*o = out
	return nil
}

func (o *Object) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := decode(b, &m); err != nil {
		return err
	}
	*o = m
	return nil
}

func (l List) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	b, err := json.Marshal([]any(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *List) Scan(src any) error {
	out := List{}
	if err := scanJSON(src, (*[]any)(&out)); err != nil {
		return fmt.Errorf("scan template: %w", err)
	}
	if out == nil {
		out = List{}
	}
	*l = out
	return nil
}

func (l *List) UnmarshalJSON(b []byte) error {
	var s []any
	if err := decode(b, &s); err != nil {
		return err
	}
	*l = s
	return nil
}

func scanJSON(src any, dst any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T", src)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	return decode(b, dst)
}

// decode keeps numbers as json.Number so they are written back unchanged.
func decode(b []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(dst)
}

package storage

import (
	"database/sql/driver"

	"github.com/pkg/errors"
)

// NullString is a string that is stored as NULL when empty.
type NullString string

func (ns NullString) Value() (driver.Value, error) {
	if ns == "" {
		return nil, nil
	}
	return string(ns), nil
}

func (ns *NullString) Scan(value interface{}) error {
	if value == nil {
		*ns = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*ns = NullString(v)
	case []byte:
		*ns = NullString(v)
	default:
		return errors.Errorf("unable to scan %T into NullString", value)
	}
	return nil
}

package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringMap is a string-to-string mapping persisted as a JSON text column.
// It backs template variables and captured lead form fields.
//
// Scan returns an error on malformed stored JSON instead of degrading to an
// empty map, so corrupted rows surface instead of silently losing data.
type StringMap map[string]string

// Value implements driver.Valuer. A nil map is stored as "{}" so reads never
// observe SQL NULL for these columns.
func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for TEXT and BLOB column representations.
func (m *StringMap) Scan(src any) error {
	if src == nil {
		*m = StringMap{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("stringmap: unsupported column type %T", src)
	}
	if len(data) == 0 {
		*m = StringMap{}
		return nil
	}
	out := StringMap{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("stringmap: decode stored value: %w", err)
	}
	*m = out
	return nil
}

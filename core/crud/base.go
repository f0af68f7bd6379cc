package crud

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Base holds the fields shared by every entity. Entities embed it.
type Base struct {
	ID        int       `json:"id" db:"id"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"` // UTC
	AuditInfo Audit     `json:"auditInfo" db:"audit_info"`
}

// Field returns the value of a Base field by its json name.
func (b Base) Field(name string) (interface{}, bool) {
	switch name {
	case "id":
		return b.ID, true
	case "isActive", "is_active":
		return b.IsActive, true
	case "createdAt", "created_at":
		return b.CreatedAt, true
	case "updatedAt", "updated_at":
		return b.UpdatedAt, true
	}
	return nil, false
}

// Audit is opaque bookkeeping displayed by clients, never interpreted.
type Audit struct {
	CreatedBy int `json:"createdBy,omitempty"`
	UpdatedBy int `json:"updatedBy,omitempty"`
}

func (a Audit) Value() (driver.Value, error) { return jsonValue(a) }
func (a *Audit) Scan(src interface{}) error  { return jsonScan(src, a) }

// Ref is a read-only projection of a related record, eg. an institute's university.
type Ref struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

func (r Ref) Value() (driver.Value, error) {
	if r.ID == 0 {
		return nil, nil
	}
	return jsonValue(r)
}
func (r *Ref) Scan(src interface{}) error  { return jsonScan(src, r) }

// StringList is a list of strings stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return jsonValue([]string{})
	}
	return jsonValue([]string(l))
}

func (l *StringList) Scan(src interface{}) error { return jsonScan(src, (*[]string)(l)) }

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling json column")
	}
	return string(b), nil // lib/pq sends []byte as bytea
}

func jsonScan(src interface{}, dst interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("unsupported json column type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, dst), "unmarshalling json column")
}

package leads

import (
	"encoding/json"
	"fmt"
)

// Rule is a single field-level change applied to every lead record.
// Apply reports whether the record was changed.
type Rule interface {
	Apply(rec *Record) bool
	String() string
}

// RenameField moves From to To. An existing To value is never overwritten,
// but From is always removed.
type RenameField struct {
	From string
	To   string
}

func (r RenameField) Apply(rec *Record) bool {
	if r.From == r.To {
		return false
	}
	value, ok := rec.Get(r.From)
	if !ok {
		return false
	}
	if !rec.Has(r.To) {
		rec.Set(r.To, value)
	}
	rec.Delete(r.From)
	return true
}

func (r RenameField) String() string {
	return fmt.Sprintf("rename %s -> %s", r.From, r.To)
}

// DefaultField adds Field with Value when the record lacks it. An empty
// Value means null.
type DefaultField struct {
	Field string
	Value json.RawMessage
}

func (d DefaultField) Apply(rec *Record) bool {
	if rec.Has(d.Field) {
		return false
	}
	rec.Set(d.Field, orNull(d.Value))
	return true
}

func (d DefaultField) String() string {
	return fmt.Sprintf("default %s = %s", d.Field, orNull(d.Value))
}

// DefaultRules is the phone -> telephone_no migration followed by the
// vat_number default.
func DefaultRules() []Rule {
	return []Rule{
		RenameField{From: "phone", To: "telephone_no"},
		DefaultField{Field: "vat_number"},
	}
}

package leads

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is a shallow, order-preserving copy of one lead object. Field
// values are raw JSON, so nested structures are shared rather than cloned.
type Record struct {
	fields *orderedmap.OrderedMap[string, json.RawMessage]
}

// DecodeRecord copies the fields of a raw lead object into a new Record.
func DecodeRecord(raw json.RawMessage) (*Record, error) {
	fields := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(raw, fields); err != nil {
		return nil, err
	}
	return &Record{fields: fields}, nil
}

func (r *Record) Has(field string) bool {
	_, ok := r.fields.Get(field)
	return ok
}

func (r *Record) Get(field string) (json.RawMessage, bool) {
	return r.fields.Get(field)
}

// Set updates field in place, or appends it when it is new.
func (r *Record) Set(field string, value json.RawMessage) {
	r.fields.Set(field, value)
}

func (r *Record) Delete(field string) bool {
	_, ok := r.fields.Delete(field)
	return ok
}

// Fields returns the field names in order.
func (r *Record) Fields() []string {
	names := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

func (r *Record) MarshalJSON() ([]byte, error) {
	return encodeObject(r.fields)
}

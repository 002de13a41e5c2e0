// Package leads migrates mock CRM lead fixtures from the legacy schema
// (phone, no vat_number) to the current one (telephone_no, vat_number).
package leads

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/buger/jsonparser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// LeadsKey is the top-level key holding the lead entries.
const LeadsKey = "leads"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var jsonNull = json.RawMessage("null")

// Document is a decoded lead fixture. Top-level keys keep their file order
// and every value other than the leads array is carried as raw JSON.
type Document struct {
	Name  string
	Leads []json.RawMessage

	root *orderedmap.OrderedMap[string, json.RawMessage]
}

// Decode parses fixture bytes. A leading UTF-8 byte-order mark is ignored.
// name is the file name used in error messages.
func Decode(name string, data []byte) (*Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, &ParseError{Name: name, Err: errors.New("content is not valid UTF-8")}
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	if kindOf(raw) != jsonparser.Object {
		return nil, &SchemaError{Name: name}
	}

	root := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(raw, root); err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}

	value, ok := root.Get(LeadsKey)
	if !ok || kindOf(value) != jsonparser.Array {
		return nil, &SchemaError{Name: name}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(value, &entries); err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}

	return &Document{Name: name, Leads: entries, root: root}, nil
}

// Keys returns the top-level keys in file order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, d.root.Len())
	for pair := d.root.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Encode renders the document with two-space indentation, literal non-ASCII
// text and a single trailing newline. No byte-order mark is written.
func (d *Document) Encode() ([]byte, error) {
	var leads bytes.Buffer
	leads.WriteByte('[')
	for i, entry := range d.Leads {
		if i > 0 {
			leads.WriteByte(',')
		}
		leads.Write(orNull(entry))
	}
	leads.WriteByte(']')
	d.root.Set(LeadsKey, leads.Bytes())

	compact, err := encodeObject(d.root)
	if err != nil {
		return nil, err
	}
	compact, err = unescapeStrings(compact)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", d.Name, err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent %s: %w", d.Name, err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// encodeObject writes an ordered map as a compact JSON object. Keys are
// encoded without HTML escaping; values are copied verbatim.
func encodeObject(om *orderedmap.OrderedMap[string, json.RawMessage]) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		key, err := marshalString(pair.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to encode key %q: %w", pair.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(orNull(pair.Value))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// unescapeStrings re-encodes every string literal in valid JSON that
// contains an escape sequence, so \u00fc or \/ come out as literal text.
// Bytes outside string literals are copied as they are.
func unescapeStrings(src []byte) ([]byte, error) {
	if bytes.IndexByte(src, '\\') < 0 {
		return src, nil
	}

	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); {
		if src[i] != '"' {
			out = append(out, src[i])
			i++
			continue
		}

		end, escaped := i+1, false
		for end < len(src) && src[end] != '"' {
			if src[end] == '\\' {
				escaped = true
				end++
			}
			end++
		}
		if end >= len(src) {
			return nil, errors.New("unterminated string literal")
		}

		literal := src[i : end+1]
		i = end + 1
		if !escaped {
			out = append(out, literal...)
			continue
		}

		var text string
		if err := json.Unmarshal(literal, &text); err != nil {
			return nil, err
		}
		encoded, err := marshalString(text)
		if err != nil {
			return nil, err
		}
		out = append(out, encoded...)
	}
	return out, nil
}

func orNull(v json.RawMessage) json.RawMessage {
	if len(v) == 0 {
		return jsonNull
	}
	return v
}

// kindOf reports the JSON type of a raw value.
func kindOf(raw json.RawMessage) jsonparser.ValueType {
	_, kind, _, err := jsonparser.Get(raw)
	if err != nil {
		return jsonparser.Unknown
	}
	return kind
}

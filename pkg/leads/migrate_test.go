package leads_test

import (
	"encoding/json"
	"testing"

	"github.com/grovetools/leadmigrate/pkg/leads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func migrateString(t *testing.T, input string) (string, leads.Result) {
	t.Helper()
	doc, err := leads.Decode("mockLeads.json", []byte(input))
	require.NoError(t, err)
	res, err := leads.Migrate(doc, leads.DefaultRules())
	require.NoError(t, err)
	out, err := doc.Encode()
	require.NoError(t, err)
	return string(out), res
}

func decodeLeads(t *testing.T, out string) []interface{} {
	t.Helper()
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	list, ok := parsed["leads"].([]interface{})
	require.True(t, ok, "leads should be an array")
	return list
}

func TestMigrate(t *testing.T) {
	t.Run("RenamesPhoneAndAddsVatNumber", func(t *testing.T) {
		out, res := migrateString(t, `{"leads": [{"phone": "111"}]}`)

		assert.Equal(t, 2, res.Changes)
		assert.Equal(t, "{\n  \"leads\": [\n    {\n      \"telephone_no\": \"111\",\n      \"vat_number\": null\n    }\n  ]\n}\n", out)
	})

	t.Run("UpToDateRecordNeedsNoChanges", func(t *testing.T) {
		_, res := migrateString(t, `{"leads": [{"telephone_no": "222", "vat_number": "VAT1"}]}`)
		assert.Equal(t, 0, res.Changes)
	})

	t.Run("ExistingTelephoneIsNotOverwritten", func(t *testing.T) {
		out, res := migrateString(t, `{"leads": [{"phone": "A", "telephone_no": "B", "vat_number": "X"}]}`)

		assert.Equal(t, 1, res.Changes)
		lead := decodeLeads(t, out)[0].(map[string]interface{})
		assert.Equal(t, "B", lead["telephone_no"])
		assert.NotContains(t, lead, "phone")
		assert.Equal(t, "X", lead["vat_number"])
	})

	t.Run("VatNumberDefaultsToNull", func(t *testing.T) {
		out, res := migrateString(t, `{"leads": [{"name": "Acme", "telephone_no": "1"}]}`)

		assert.Equal(t, 1, res.Changes)
		lead := decodeLeads(t, out)[0].(map[string]interface{})
		v, ok := lead["vat_number"]
		assert.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("ExistingNullVatNumberIsKept", func(t *testing.T) {
		_, res := migrateString(t, `{"leads": [{"telephone_no": "1", "vat_number": null}]}`)
		assert.Equal(t, 0, res.Changes)
	})

	t.Run("NonRecordEntriesPassThrough", func(t *testing.T) {
		out, res := migrateString(t, `{"leads": ["plain", 42, {"phone": "1"}, null, [1, 2], true]}`)

		assert.Equal(t, 6, res.Leads)
		assert.Equal(t, 1, res.Records)
		assert.Equal(t, 2, res.Changes)

		list := decodeLeads(t, out)
		require.Len(t, list, 6)
		assert.Equal(t, "plain", list[0])
		assert.Equal(t, float64(42), list[1])
		assert.Equal(t, map[string]interface{}{"telephone_no": "1", "vat_number": nil}, list[2])
		assert.Nil(t, list[3])
		assert.Equal(t, []interface{}{float64(1), float64(2)}, list[4])
		assert.Equal(t, true, list[5])
	})

	t.Run("OrderIsPreserved", func(t *testing.T) {
		out, _ := migrateString(t, `{"leads": [
			{"id": 1, "phone": "a"},
			{"id": 2, "telephone_no": "b"},
			{"id": 3, "vat_number": "c"},
			{"id": 4}
		]}`)

		list := decodeLeads(t, out)
		require.Len(t, list, 4)
		for i, entry := range list {
			assert.Equal(t, float64(i+1), entry.(map[string]interface{})["id"])
		}
	})

	t.Run("FieldOrderWithinRecord", func(t *testing.T) {
		out, _ := migrateString(t, `{"leads": [{"name": "Acme", "phone": "1", "email": "a@b.c"}]}`)

		assert.Contains(t, out, "\"name\": \"Acme\",\n      \"email\": \"a@b.c\",\n      \"telephone_no\": \"1\",\n      \"vat_number\": null")
	})

	t.Run("CountsOncePerFieldChange", func(t *testing.T) {
		_, res := migrateString(t, `{"leads": [{"phone": "1"}, {"phone": "2", "vat_number": 1}, {}, {"telephone_no": "3", "vat_number": 2}]}`)
		assert.Equal(t, 4, res.Records)
		assert.Equal(t, 4, res.Changes)
	})

	t.Run("NestedValuesAreKept", func(t *testing.T) {
		out, _ := migrateString(t, `{"leads": [{"phone": {"home": "1", "work": ["2", "3"]}, "address": {"city": "Zürich"}}]}`)

		lead := decodeLeads(t, out)[0].(map[string]interface{})
		assert.Equal(t, map[string]interface{}{"home": "1", "work": []interface{}{"2", "3"}}, lead["telephone_no"])
		assert.Equal(t, map[string]interface{}{"city": "Zürich"}, lead["address"])
		assert.Contains(t, out, "Zürich")
	})

	t.Run("Idempotent", func(t *testing.T) {
		first, res := migrateString(t, `{"meta": {"v": 1}, "leads": [{"phone": "1"}, "x", {"telephone_no": "2"}]}`)
		require.Greater(t, res.Changes, 0)

		second, res := migrateString(t, first)
		assert.Equal(t, 0, res.Changes)
		assert.Equal(t, first, second)
	})

	t.Run("EmptyLeads", func(t *testing.T) {
		_, res := migrateString(t, `{"leads": []}`)
		assert.Equal(t, leads.Result{}, res)
	})
}

func TestRules(t *testing.T) {
	t.Run("RenameToSameFieldIsNoop", func(t *testing.T) {
		rec, err := leads.DecodeRecord(json.RawMessage(`{"phone": "1"}`))
		require.NoError(t, err)

		assert.False(t, leads.RenameField{From: "phone", To: "phone"}.Apply(rec))
		assert.True(t, rec.Has("phone"))
	})

	t.Run("DefaultWithValue", func(t *testing.T) {
		rec, err := leads.DecodeRecord(json.RawMessage(`{"a": 1}`))
		require.NoError(t, err)

		rule := leads.DefaultField{Field: "status", Value: json.RawMessage(`"new"`)}
		assert.True(t, rule.Apply(rec))
		assert.False(t, rule.Apply(rec))

		v, ok := rec.Get("status")
		require.True(t, ok)
		assert.JSONEq(t, `"new"`, string(v))
		assert.Equal(t, []string{"a", "status"}, rec.Fields())
	})

	t.Run("DefaultRules", func(t *testing.T) {
		rules := leads.DefaultRules()
		require.Len(t, rules, 2)
		assert.Equal(t, "rename phone -> telephone_no", rules[0].String())
		assert.Equal(t, "default vat_number = null", rules[1].String())
	})
}

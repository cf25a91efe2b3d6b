package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoders(t *testing.T) {
	v, err := DecodeString(json.RawMessage(`"croissant"`))
	require.NoError(t, err)
	assert.Equal(t, "croissant", v)

	_, err = DecodeString(json.RawMessage(`42`))
	assert.Error(t, err)

	v, err = DecodeFloat(json.RawMessage(`4.5`))
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	v, err = DecodeInt(json.RawMessage(`12`))
	require.NoError(t, err)
	assert.Equal(t, 12, v)

	v, err = DecodeBool(json.RawMessage(`true`))
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = DecodeStringArray(json.RawMessage(`["flour","butter"]`))
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"flour", "butter"}, v)

	v, err = DecodeDate(json.RawMessage(`"2026-09-01"`))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), v)

	_, err = DecodeDate(json.RawMessage(`"01/09/2026"`))
	assert.Error(t, err)
}

func TestDecodeEnum(t *testing.T) {
	decode := DecodeEnum("appetizer", "main", "dessert", "beverage")

	v, err := decode(json.RawMessage(`"dessert"`))
	require.NoError(t, err)
	assert.Equal(t, "dessert", v)

	_, err = decode(json.RawMessage(`"entree"`))
	assert.Error(t, err)
}

// Every patch key must decode the JSON type its column stores;
// descriptor drift here would only surface at runtime otherwise.
func TestDescriptorPatchFields(t *testing.T) {
	samples := map[string]json.RawMessage{
		"name":             json.RawMessage(`"x"`),
		"description":      json.RawMessage(`"x"`),
		"price":            json.RawMessage(`9.5`),
		"category":         json.RawMessage(`"main"`),
		"categorie":        json.RawMessage(`"Viennoiserie"`),
		"image":            json.RawMessage(`"/images/menu/x.jpg"`),
		"imageH":           json.RawMessage(`"/images/patisserie/x.jpg"`),
		"isAvailable":      json.RawMessage(`false`),
		"ingredients":      json.RawMessage(`["a"]`),
		"quantity":         json.RawMessage(`"6 pieces"`),
		"type":             json.RawMessage(`"wedding"`),
		"date":             json.RawMessage(`"2026-09-01"`),
		"startTime":        json.RawMessage(`"18:00"`),
		"endTime":          json.RawMessage(`"23:00"`),
		"capacity":         json.RawMessage(`80`),
		"includedServices": json.RawMessage(`["catering"]`),
		"additionalNotes":  json.RawMessage(`"outdoor"`),
	}

	for name, d := range map[string]Descriptor{
		"menu":       MenuDescriptor,
		"patisserie": PatisserieDescriptor,
		"event":      EventDescriptor,
	} {
		for key, field := range d.PatchFields {
			raw, ok := samples[key]
			require.True(t, ok, "%s: no sample for patch key %q", name, key)
			_, err := field.Decode(raw)
			assert.NoError(t, err, "%s: key %q", name, key)
			assert.NotEmpty(t, field.Column, "%s: key %q", name, key)
		}
	}
}

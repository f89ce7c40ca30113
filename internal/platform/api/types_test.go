package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoolDecoding(t *testing.T) {
	for input, want := range map[string]bool{`true`: true, `1`: true, `"1"`: true, `false`: false, `0`: false, `null`: false} {
		var b Bool
		require.NoError(t, json.Unmarshal([]byte(input), &b), input)
		assert.Equal(t, want, bool(b), input)
	}
	var b Bool
	assert.Error(t, json.Unmarshal([]byte(`"peut-être"`), &b))
}

func TestDateDecoding(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-03-14"`), &d))
	assert.Equal(t, "2026-03-14", d.FormValue())

	require.NoError(t, json.Unmarshal([]byte(`"2026-03-14T10:20:30.000000Z"`), &d))
	assert.Equal(t, 10, d.Hour())

	require.NoError(t, json.Unmarshal([]byte(`"2026-03-14 08:00:00"`), &d))
	assert.Equal(t, 8, d.Hour())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
	assert.Equal(t, "", d.FormValue())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-10-01")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())

	empty, err := ParseDate(" ")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	_, err = ParseDate("01/10/2026")
	assert.Error(t, err)
}

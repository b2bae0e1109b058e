package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutlineFencedJSON(t *testing.T) {
	raw := "Sure! Here's your outline:\n```json\n[{\"title\": \"Roman Aqueducts\", \"description\": \"Water.\"}]\n```"

	entries, err := ParseOutline(raw)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Roman Aqueducts", entries[0].Title)
	assert.Equal(t, "Water.", entries[0].Description)
}

func TestParseOutlinePlainArray(t *testing.T) {
	raw := `[
		{"title": "Origins", "description": "Where it began."},
		{"title": "Decline", "description": "Where it ended."}
	]`

	entries, err := ParseOutline(raw)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Origins", entries[0].Title)
	assert.Equal(t, "Decline", entries[1].Title)
}

func TestParseOutlineNoArray(t *testing.T) {
	entries, err := ParseOutline("I'm sorry, I can't produce an outline for that topic.")
	assert.Nil(t, entries)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, NoArrayFound, parseErr.Reason)
	assert.Contains(t, parseErr.Raw, "I'm sorry")
}

func TestParseOutlineInvalidStructure(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"truncated array", `[{"title": "One", "description": "half]`},
		{"not objects", `["just", "strings"]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseOutline(tc.raw)
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, InvalidStructure, parseErr.Reason)
		})
	}
}

func TestParseOutlineObjectNotArrayStillLocated(t *testing.T) {
	// A bare object contains no brackets at all, so locate fails first.
	_, err := ParseOutline(`{"title": "One", "description": "x"}`)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, NoArrayFound, parseErr.Reason)
}

func TestParseOutlineDropsUntitledEntries(t *testing.T) {
	raw := `[
		{"description": "no title"},
		{"title": "   ", "description": "blank title"},
		{"title": "Kept"}
	]`

	entries, err := ParseOutline(raw)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Kept", entries[0].Title)
	assert.Empty(t, entries[0].Description)
}

func TestParseOutlineEmptyArray(t *testing.T) {
	entries, err := ParseOutline("here you go: []")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseOutlineTrimsFields(t *testing.T) {
	entries, err := ParseOutline(`[{"title": "  Padded  ", "description": "  spaced  "}]`)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Padded", entries[0].Title)
	assert.Equal(t, "spaced", entries[0].Description)
}

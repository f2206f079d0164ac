package source

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromGrid_Basic(t *testing.T) {
	rows, err := FromGrid([][]string{
		{"Word", "Meaning"},
		{"Apple", "A fruit"},
		{"Banana", "Another fruit"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Apple", rows[0]["Word"])
	assert.Equal(t, "A fruit", rows[0]["Meaning"])
	assert.Equal(t, "Banana", rows[1]["Word"])
}

func TestFromGrid_PositionalKeys(t *testing.T) {
	rows, err := FromGrid([][]string{
		{"Word", "Meaning"},
		{"Apple", "A fruit"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Apple", rows[0]["_1"])
	assert.Equal(t, "A fruit", rows[0]["_2"])
}

func TestFromGrid_ShortRowsPadded(t *testing.T) {
	rows, err := FromGrid([][]string{
		{"Word", "Meaning", "Example"},
		{"Apple"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Missing trailing columns are empty strings, never absent.
	v, ok := rows[0]["Meaning"]
	assert.True(t, ok)
	assert.Equal(t, "", v)
	v, ok = rows[0]["Example"]
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestFromGrid_EmptySource(t *testing.T) {
	tests := []struct {
		name string
		grid [][]string
	}{
		{"no rows", nil},
		{"header only", [][]string{{"Word", "Meaning"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromGrid(tt.grid)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrEmptySource))
		})
	}
}

func TestFromGrid_TrimsValues(t *testing.T) {
	rows, err := FromGrid([][]string{
		{" Word ", "Meaning"},
		{"  Apple  ", " A fruit "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Apple", rows[0]["Word"])
	assert.Equal(t, "A fruit", rows[0]["Meaning"])
}

func TestFromDelimited_Basic(t *testing.T) {
	input := "Word,Meaning\nApple,A fruit\nBanana,Another fruit\n"
	rows, err := FromDelimited(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Apple", rows[0]["Word"])
	assert.Equal(t, "Another fruit", rows[1]["Meaning"])
}

func TestFromDelimited_QuotedFields(t *testing.T) {
	input := "Word,Meaning\nrun,\"to move quickly, on foot\"\n"
	rows, err := FromDelimited(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "to move quickly, on foot", rows[0]["Meaning"])
}

func TestFromDelimited_SkipsBlankLines(t *testing.T) {
	input := "Word,Meaning\n\nApple,A fruit\n\n"
	rows, err := FromDelimited(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestFromDelimited_HeaderOnly(t *testing.T) {
	_, err := FromDelimited(strings.NewReader("Word,Meaning\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySource))
}

func TestFromDelimited_VariableFieldCounts(t *testing.T) {
	input := "Word,Meaning,Example\nApple,A fruit\n"
	rows, err := FromDelimited(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "", rows[0]["Example"])
}

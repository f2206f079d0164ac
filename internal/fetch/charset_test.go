package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

func TestDecodeCharsetEUCKR(t *testing.T) {
	utf8 := "Word,Meaning\napple,사과\n"
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte(utf8))
	require.NoError(t, err)
	require.NotEqual(t, []byte(utf8), encoded, "fixture must actually be re-encoded")

	decoded, err := DecodeCharset(encoded, "euc-kr")
	require.NoError(t, err)
	assert.Equal(t, utf8, string(decoded))
}

func TestDecodeCharsetPassthrough(t *testing.T) {
	data := []byte("Word,Meaning\nalpha,first\n")

	for _, name := range []string{"", "utf-8", "UTF-8", "utf8"} {
		got, err := DecodeCharset(data, name)
		require.NoError(t, err, name)
		assert.Equal(t, data, got, name)
	}
}

func TestDecodeCharsetUnknown(t *testing.T) {
	_, err := DecodeCharset([]byte("x"), "klingon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown charset "klingon"`)
}

package pagedate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Windows1252(t *testing.T) {
	out, err := Decode([]byte("caf\xe9"), "text/html; charset=windows-1252")
	require.NoError(t, err)
	assert.Equal(t, "café", string(out))
}

func TestDecode_PassThrough(t *testing.T) {
	for _, ct := range []string{"", "text/html", "text/html; charset=UTF-8", "garbage;;"} {
		out, err := Decode([]byte("plain"), ct)
		require.NoError(t, err, ct)
		assert.Equal(t, "plain", string(out))
	}
}

func TestDecode_UnknownCharset(t *testing.T) {
	_, err := Decode([]byte("x"), "text/html; charset=klingon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported charset")
}

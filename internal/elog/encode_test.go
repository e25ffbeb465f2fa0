package elog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_UTF8(t *testing.T) {
	enc, err := NewEncoder("")
	require.NoError(t, err)
	assert.Equal(t, "UTF8", enc.Name())

	got, err := enc.Encode("naïve ☃")
	require.NoError(t, err)
	assert.Equal(t, "naïve ☃", got)

	_, err = enc.Encode("bad\xffbyte")
	assert.True(t, errors.Is(err, ErrFormat), "invalid UTF-8 should be a format error, got %v", err)
}

func TestEncoder_NulByte(t *testing.T) {
	for _, name := range []string{"UTF8", "SQL_ASCII", "LATIN1"} {
		t.Run(name, func(t *testing.T) {
			enc, err := NewEncoder(name)
			require.NoError(t, err)
			_, err = enc.Encode("a\x00b")
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestEncoder_Latin1(t *testing.T) {
	enc, err := NewEncoder("latin1")
	require.NoError(t, err)

	t.Run("representable", func(t *testing.T) {
		got, err := enc.Encode("café")
		require.NoError(t, err)
		assert.Equal(t, "caf\xe9", got)
	})
	t.Run("decomposed accent is composed first", func(t *testing.T) {
		got, err := enc.Encode("cafe\u0301")
		require.NoError(t, err)
		assert.Equal(t, "caf\xe9", got)
	})
	t.Run("not representable", func(t *testing.T) {
		_, err := enc.Encode("snow ☃")
		assert.ErrorIs(t, err, ErrFormat)
	})
	t.Run("decode", func(t *testing.T) {
		got, err := enc.Decode("caf\xe9")
		require.NoError(t, err)
		assert.Equal(t, "café", got)
	})
}

func TestEncoder_SQLASCIIPassesBytes(t *testing.T) {
	enc, err := NewEncoder("SQL_ASCII")
	require.NoError(t, err)
	got, err := enc.Encode("raw\xff")
	require.NoError(t, err)
	assert.Equal(t, "raw\xff", got)
}

func TestNewEncoder_Unknown(t *testing.T) {
	_, err := NewEncoder("EBCDIC")
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestServerEncodings(t *testing.T) {
	names := ServerEncodings()
	assert.Equal(t, []string{"UTF8", "SQL_ASCII"}, names[:2])
	assert.Contains(t, names, "LATIN1")
	assert.IsNonDecreasing(t, names[2:])
}

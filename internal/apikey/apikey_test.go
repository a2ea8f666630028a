package apikey

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a := New()
	b := New()
	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
	require.NotContains(t, a, "-")
}

func TestFromHeader(t *testing.T) {
	require.Equal(t, "abc123", FromHeader("Basic abc123"))
	require.Equal(t, "abc123", FromHeader("abc123"))
	require.Equal(t, "", FromHeader(""))
}

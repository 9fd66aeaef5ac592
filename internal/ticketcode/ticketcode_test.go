package ticketcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodeFormat(t *testing.T) {
	code, err := NewCode()
	require.NoError(t, err)

	groups := strings.Split(code, "-")
	require.Len(t, groups, 3)
	for _, g := range groups {
		assert.Len(t, g, 6)
		for _, ch := range g {
			assert.Contains(t, codeAlphabet, string(ch))
		}
	}
}

func TestNewCodeUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewCode()
		require.NoError(t, err)
		assert.False(t, seen[code], "generated the same code twice: %s", code)
		seen[code] = true
	}
}

func TestQRPNG(t *testing.T) {
	png, err := QRPNG("http://localhost:8080/", 42, 128)
	require.NoError(t, err)
	require.NotEmpty(t, png)

	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

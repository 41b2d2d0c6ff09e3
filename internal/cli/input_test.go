package cli

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleTextTrims(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  /mnt/backups  \n"))

	got, err := GetSimpleText(reader, "folder:")
	require.NoError(t, err)
	assert.Equal(t, "/mnt/backups", got)
}

func TestGetSimpleTextEOF(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader(""))

	_, err := GetSimpleText(reader, "folder:")
	require.Error(t, err)
}

func TestGetSecretUsesSeam(t *testing.T) {
	orig := readPassword
	readPassword = func() ([]byte, error) { return []byte(" 4/code-abc \n"), nil }
	t.Cleanup(func() { readPassword = orig })

	got, err := GetSecret("code:")
	require.NoError(t, err)
	assert.Equal(t, "4/code-abc", got)
}

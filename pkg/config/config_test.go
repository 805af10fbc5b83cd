package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "a", want: []string{"a"}},
		{in: " a , b,,c ", want: []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CSV(tt.in), tt.in)
	}
}

func TestRequire(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Require(NonEmpty("x", "A"), NonEmptyBytes([]byte("y"), "B")))

	err := Require(NonEmpty("", "A"), NonEmptyBytes(nil, "B"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A")
	assert.Contains(t, err.Error(), "B")
}

func TestNewViper_ReadsEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sweetshop.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server_port: 9090\n"), 0o600))
	t.Setenv("SERVICE_NAME", "sweets")

	v, err := NewViper(file)
	require.NoError(t, err)

	assert.Equal(t, "sweets", v.GetString("SERVICE_NAME"))
	assert.Equal(t, 9090, v.GetInt("SERVER_PORT"))
}

func TestNewViper_MissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

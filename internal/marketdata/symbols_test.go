package marketdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolMap_Resolve(t *testing.T) {
	m := NewSymbolMap(nil)

	tests := []struct {
		in   string
		want string
	}{
		{"ES", "ES.FUT.CME"},
		{"mes", "MES.FUT.CME"},
		{" CL ", "CL.FUT.NYMEX"},
		{"GC", "GC.FUT.COMEX"},
		{"ZN", "ZN.FUT.CBOT"},
		{"BTC-PERP", "BTC-PERP"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Resolve(tt.in), tt.in)
	}
}

func TestLoadSymbolMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.yaml")
	err := os.WriteFile(path, []byte("symbols:\n  es: ES.v.0\n  HG: HG.FUT.COMEX\n"), 0o644)
	require.NoError(t, err)

	m, err := LoadSymbolMap(path)
	require.NoError(t, err)

	assert.Equal(t, "ES.v.0", m.Resolve("ES"))
	assert.Equal(t, "HG.FUT.COMEX", m.Resolve("HG"))
	assert.Equal(t, "NQ.FUT.CME", m.Resolve("NQ"))
}

func TestLoadSymbolMap_EmptyPath(t *testing.T) {
	m, err := LoadSymbolMap("")
	require.NoError(t, err)
	assert.Equal(t, "ES.FUT.CME", m.Resolve("ES"))
}

func TestLoadSymbolMap_Errors(t *testing.T) {
	_, err := LoadSymbolMap(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbols: [unclosed"), 0o644))
	_, err = LoadSymbolMap(path)
	assert.Error(t, err)
}

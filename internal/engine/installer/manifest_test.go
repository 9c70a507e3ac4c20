package installer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/anvil/internal/core/domain"
	"go.trai.ch/anvil/internal/engine/installer"
)

func TestParseManifest(t *testing.T) {
	data := "Manifest-Version: 1.0\r\n" +
		"Main-Class: net.minecraftforge.installer.SimpleInstaller\r\n" +
		"\r\n" +
		"Name: net/minecraftforge/installer/\r\n" +
		"implementation-version: 2.2.7\r\n" +
		"Implementation-Title: Installer with a long\r\n" +
		"  title\r\n" +
		"\r\n" +
		"Name: net/minecraftforge/very/long/package/name/that/wraps/across/th\r\n" +
		" e/line/\r\n" +
		"Sealed: true\r\n"

	m, err := installer.ParseManifest([]byte(data))
	require.NoError(t, err)

	v, ok := m.Main("main-class")
	require.True(t, ok)
	assert.Equal(t, "net.minecraftforge.installer.SimpleInstaller", v)

	v, ok = m.Attribute("net/minecraftforge/installer/", "Implementation-Version")
	require.True(t, ok)
	assert.Equal(t, "2.2.7", v)

	v, ok = m.Attribute("net/minecraftforge/installer/", "Implementation-Title")
	require.True(t, ok)
	assert.Equal(t, "Installer with a long title", v)

	v, ok = m.Attribute("net/minecraftforge/very/long/package/name/that/wraps/across/the/line/", "Sealed")
	require.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok = m.Attribute("missing/", "Sealed")
	assert.False(t, ok)
	_, ok = m.Main("Sealed")
	assert.False(t, ok)
}

func TestParseManifest_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing separator", data: "Manifest-Version 1.0\n"},
		{name: "continuation first", data: " dangling\n"},
		{name: "section without name", data: "Manifest-Version: 1.0\n\nSealed: true\n"},
		{name: "empty key", data: ": value\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := installer.ParseManifest([]byte(tt.data))
			assert.ErrorIs(t, err, domain.ErrManifestParseFailed)
		})
	}
}

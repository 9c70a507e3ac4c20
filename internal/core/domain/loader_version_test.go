package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/anvil/internal/core/domain"
)

func TestParseLoaderVersion(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantBase string
		wantBeta bool
	}{
		{name: "year scheme", raw: "25.1.3", wantBase: "25.1"},
		{name: "year scheme trailing zero", raw: "25.0.1", wantBase: "25"},
		{name: "legacy scheme", raw: "20.4.237", wantBase: "1.20.4"},
		{name: "legacy scheme trailing zero", raw: "21.0.167", wantBase: "1.21"},
		{name: "cutoff major", raw: "21.1.5", wantBase: "1.21.1"},
		{name: "beta", raw: "20.2.3-beta", wantBase: "1.20.2", wantBeta: true},
		{name: "qualifier", raw: "21.5.0+snapshot", wantBase: "1.21.5-snapshot"},
		{name: "leading zeros", raw: "20.04.1", wantBase: "1.20.4"},
		{name: "non numeric minor", raw: "0.25w14craftmine.3-beta", wantBase: "25w14craftmine", wantBeta: true},
		{name: "non numeric major", raw: "alpha.1.2", wantBase: "alpha.1"},
		{name: "two components", raw: "26.1", wantBase: "26.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := domain.ParseLoaderVersion(tt.raw)
			require.NoError(t, err)

			assert.Equal(t, tt.raw, v.Raw())
			assert.Equal(t, tt.wantBase, v.BaseVersion())
			assert.Equal(t, tt.wantBeta, v.IsBeta())
			assert.Equal(t, "neoforge-"+tt.raw, v.VersionName())
		})
	}
}

func TestParseLoaderVersion_Invalid(t *testing.T) {
	for _, raw := range []string{"", "21", "21+x.y"} {
		t.Run(raw, func(t *testing.T) {
			_, err := domain.ParseLoaderVersion(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidLoaderVersion)
		})
	}
}

func TestResolveLoaderVersion(t *testing.T) {
	t.Run("loader name", func(t *testing.T) {
		v, ok, err := domain.ResolveLoaderVersion("neoforge-21.1.5")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "21.1.5", v.Raw())
		assert.Equal(t, "1.21.1", v.BaseVersion())
		assert.Equal(t, domain.ChannelStable, v.Channel())
	})

	t.Run("foreign name", func(t *testing.T) {
		for _, name := range []string{"1.21.1", "forge-1.20.1-47.2.0", "neoforge-", "xneoforge-21.1.5", "neoforge-21.1 5"} {
			_, ok, err := domain.ResolveLoaderVersion(name)
			require.NoError(t, err, name)
			assert.False(t, ok, name)
		}
	})

	t.Run("loader name with unparsable release", func(t *testing.T) {
		_, ok, err := domain.ResolveLoaderVersion("neoforge-21")
		assert.True(t, ok)
		assert.ErrorIs(t, err, domain.ErrInvalidLoaderVersion)
	})
}

func TestChannel_String(t *testing.T) {
	assert.Equal(t, "stable", domain.ChannelStable.String())
	assert.Equal(t, "beta", domain.ChannelBeta.String())
}

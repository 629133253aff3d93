package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corefactory "github.com/kilianp07/h2cf/core/factory"
)

func TestNewPriceSource(t *testing.T) {
	src, err := NewPriceSource(corefactory.ModuleConfig{
		Type: IDWholesaleMarket,
		Conf: map[string]any{"client_id": "id", "client_secret": "secret", "auth_url": "http://auth", "timeout_seconds": 5},
	})
	require.NoError(t, err)
	assert.NotNil(t, src)

	_, err = NewPriceSource(corefactory.ModuleConfig{Type: IDWholesaleMarket, Conf: map[string]any{}})
	assert.Error(t, err)

	_, err = NewPriceSource(corefactory.ModuleConfig{Type: "nope"})
	assert.ErrorContains(t, err, "unknown connector")
}

package factory

import (
	"fmt"

	"github.com/kilianp07/h2cf/connectors"
	wholesalemarket "github.com/kilianp07/h2cf/connectors/clients/wholesalemarket"
	corefactory "github.com/kilianp07/h2cf/core/factory"
)

const (
	IDWholesaleMarket = "wholesale_market"
)

var (
	errUnknownClient = "unknown connector id: %s"
)

// NewPriceSource builds the price connector named by mc.Type.
func NewPriceSource(mc corefactory.ModuleConfig) (connectors.PriceSource, error) {
	switch mc.Type {
	case IDWholesaleMarket:
		var cfg wholesalemarket.Config
		if err := corefactory.Decode(mc.Conf, &cfg); err != nil {
			return nil, err
		}
		c, err := wholesalemarket.New(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf(errUnknownClient, mc.Type)
	}
}

package memcache_fx

import (
	"go.uber.org/fx"

	mem "storefront/pkg/memcache"
)

var Module = fx.Provide(provideOAuthStates)

func provideOAuthStates() mem.StateStore {
	return mem.NewOAuthStates()
}

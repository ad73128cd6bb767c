package cache

import "time"

// Registry собирает все кеши процесса в один узел, который передается
// сервисам и обработчикам инвалидации явно, через конструкторы.
type Registry struct {
	Leaderboards *LeaderboardCache
	Identity     *IdentityCache
}

// RegistryOptions — емкости и возраст записей кешей.
type RegistryOptions struct {
	BoardCapacity    int
	PBCapacity       int
	IdentityCapacity int
	MaxAge           time.Duration
}

// NewRegistry создает реестр кешей
func NewRegistry(opts RegistryOptions) *Registry {
	return &Registry{
		Leaderboards: NewLeaderboardCache(opts.BoardCapacity, opts.PBCapacity, opts.MaxAge),
		Identity:     NewIdentityCache(opts.IdentityCapacity, opts.MaxAge),
	}
}

package publish

import (
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
)

// Registry routes a platform identifier to its publisher.
type Registry struct {
	byPlatform map[domain.Platform]Publisher
}

func NewRegistry(pubs ...Publisher) *Registry {
	r := &Registry{byPlatform: make(map[domain.Platform]Publisher, len(pubs))}
	for _, p := range pubs {
		r.Register(p)
	}
	return r
}

// Register adds or replaces the publisher for p.Platform().
func (r *Registry) Register(p Publisher) {
	r.byPlatform[p.Platform()] = p
}

func (r *Registry) Get(p domain.Platform) (Publisher, bool) {
	pub, ok := r.byPlatform[p]
	return pub, ok
}

//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/hitbox/internal/core/collision"
)

// InitializeWorld builds a logger and a world from cfg. The cleanup closes
// the world and flushes the logger.
func InitializeWorld(cfg collision.Config) (*collision.World, func(), error) {
	wire.Build(WorldSet)
	return nil, nil, nil
}

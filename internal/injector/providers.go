package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/hitbox/internal/core/collision"
	"github.com/zeusync/hitbox/internal/core/observability/log"
)

// WorldSet provides a configured *collision.World.
var WorldSet = wire.NewSet(ProvideLogger, ProvideWorld)

func ProvideLogger(cfg collision.Config) *log.Logger {
	return log.NewWithConfig(cfg.Log)
}

func ProvideWorld(cfg collision.Config, logger *log.Logger) (*collision.World, func(), error) {
	w, err := collision.NewWorld(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return w, func() {
		_ = w.Close()
		_ = logger.Sync()
	}, nil
}

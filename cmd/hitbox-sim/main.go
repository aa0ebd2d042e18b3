package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/hitbox/internal/core/collision"
	"github.com/zeusync/hitbox/internal/core/observability/log"
	"github.com/zeusync/hitbox/internal/debugview"
	"github.com/zeusync/hitbox/internal/injector"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML world config")
		ticks      = flag.Int("ticks", 0, "ticks to run, 0 runs until interrupted")
		rate       = flag.Int("rate", 60, "ticks per second, 0 runs unthrottled")
		bodies     = flag.Int("bodies", 24, "moving bodies")
		coins      = flag.Int("coins", 12, "pickups")
		seed       = flag.Int64("seed", 1, "scenario seed")
		debugAddr  = flag.String("debug", "", "serve the websocket debug view on this address")
	)
	flag.Parse()

	if err := run(*configPath, *ticks, *rate, *bodies, *coins, *seed, *debugAddr); err != nil {
		fmt.Fprintln(os.Stderr, "hitbox-sim:", err)
		os.Exit(1)
	}
}

func run(configPath string, ticks, rate, bodies, coins int, seed int64, debugAddr string) error {
	cfg := collision.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = collision.LoadConfigFile(configPath); err != nil {
			return err
		}
	}

	world, cleanup, err := injector.InitializeWorld(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	logger := world.Logger()

	a, err := buildArena(world, 640, 480, bodies, coins, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	var hub *debugview.Hub
	if debugAddr != "" {
		hub = debugview.NewHub(logger)
		srv := &http.Server{Addr: debugAddr, Handler: hub, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("debug view listening", log.String("addr", debugAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		err := simulate(ctx, world, hub, a, ticks, rate, logger)
		if debugAddr != "" && err == nil {
			// finished on its own; release the debug server too
			return errSimulationDone
		}
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errSimulationDone) && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

var errSimulationDone = errors.New("simulation done")

func simulate(ctx context.Context, w *collision.World, hub *debugview.Hub, a *arena, ticks, rate int, logger log.Log) error {
	var pace <-chan time.Time
	if rate > 0 {
		t := time.NewTicker(time.Second / time.Duration(rate))
		defer t.Stop()
		pace = t.C
	}

	started := time.Now()
	for n := 1; ticks == 0 || n <= ticks; n++ {
		if pace != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-pace:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := w.Step(); err != nil {
			return err
		}
		if hub != nil {
			if err := hub.Publish(w.Snapshot()); err != nil {
				return err
			}
		}
		if n%300 == 0 {
			stats := w.Index().Stats()
			logger.Info("tick",
				log.Uint64("tick", w.Tick()),
				log.Int("colliders", w.Len()),
				log.Int("collected", a.collected),
				log.Int("bounces", a.bounces),
				log.Uint64("queries", stats.Queries),
				log.Uint64("cells", stats.CellCount),
			)
		}
	}

	logger.Info("simulation finished",
		log.Uint64("ticks", w.Tick()),
		log.Int("collected", a.collected),
		log.Duration("elapsed", time.Since(started)),
	)
	return nil
}

package daemon

import (
	"context"

	"github.com/matheus3301/gemchat/internal/api"
	"github.com/matheus3301/gemchat/internal/bus"
	"github.com/matheus3301/gemchat/internal/chatstore"
	"github.com/matheus3301/gemchat/internal/config"
	"github.com/matheus3301/gemchat/internal/lock"
	"github.com/matheus3301/gemchat/internal/logging"
	"github.com/matheus3301/gemchat/internal/profile"
	"github.com/matheus3301/gemchat/internal/reply"
	"github.com/matheus3301/gemchat/internal/status"
	"github.com/matheus3301/gemchat/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile    string
	Config     *config.Config
	Ephemeral  bool   // keep chat state in memory only
	SocketPath string // optional override for testing; empty = use default
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	if p.Config == nil {
		p.Config = config.Default()
	}
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideChatStore,
			provideSimulator,
			provideChatService,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.Profile), p.Profile, p.Config.Log.Level)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

// provideStore depends on the lock so storage is never opened by a second daemon.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (store.Store, error) {
	driver := p.Config.Storage.Driver
	if p.Ephemeral {
		driver = store.DriverMemory
	}

	switch driver {
	case store.DriverSQLite:
		dbPath := profile.SQLitePath(p.Profile)
		db, err := store.OpenSQLite(dbPath)
		if err != nil {
			return nil, err
		}
		result, err := db.Migrate()
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if result.Changed {
			logger.Info("migrations applied", zap.Uint("version", result.Version))
		} else {
			logger.Info("migrations up to date", zap.Uint("version", result.Version))
		}
		logger.Info("store initialized", zap.String("driver", driver), zap.String("path", dbPath))
		return db, nil
	case store.DriverBadger:
		dir := profile.BadgerDir(p.Profile)
		kv, err := store.Open(driver, dir)
		if err != nil {
			return nil, err
		}
		logger.Info("store initialized", zap.String("driver", driver), zap.String("path", dir))
		return kv, nil
	default:
		kv, err := store.Open(driver, "")
		if err != nil {
			return nil, err
		}
		logger.Info("store initialized", zap.String("driver", driver))
		return kv, nil
	}
}

func provideChatStore(kv store.Store, b *bus.Bus, logger *zap.Logger) *chatstore.Store {
	return chatstore.New(kv, chatstore.WithBus(b), chatstore.WithLogger(logger.Named("chatstore")))
}

func provideSimulator(p Params, cs *chatstore.Store, logger *zap.Logger) *reply.Simulator {
	return reply.NewSimulator(cs, logger.Named("reply"), reply.WithDelay(p.Config.Reply.Delay))
}

func provideChatService(p Params, cs *chatstore.Store, sim *reply.Simulator, m *status.Machine, b *bus.Bus, logger *zap.Logger) *api.ChatService {
	return api.NewChatService(p.Profile, cs, sim, m, b, logger.Named("api"))
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, kv store.Store, cs *chatstore.Store, sim *reply.Simulator, machine *status.Machine, b *bus.Bus, logger *zap.Logger) {
	var unfollow func()

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			_ = machine.Transition(status.Hydrating)
			if _, err := cs.Initialize(); err != nil {
				// The hydrated state is live; only its write-back failed.
				logger.Warn("initial persist failed", zap.Error(err))
				_ = machine.Transition(status.Degraded)
			} else {
				_ = machine.Transition(status.Ready)
			}
			unfollow = machine.Follow(b)

			// Start gRPC server in background.
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
					_ = machine.Transition(status.Error)
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			_ = machine.Transition(status.Stopping)
			if unfollow != nil {
				unfollow()
			}
			srv.Stop(ctx)
			sim.Stop()
			if err := kv.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			_ = logger.Sync()
			return nil
		},
	})
}

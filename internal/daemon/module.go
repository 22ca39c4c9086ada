package daemon

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/wppapi/internal/api"
	"github.com/matheus3301/wppapi/internal/bus"
	"github.com/matheus3301/wppapi/internal/config"
	"github.com/matheus3301/wppapi/internal/facade"
	"github.com/matheus3301/wppapi/internal/lock"
	"github.com/matheus3301/wppapi/internal/logging"
	"github.com/matheus3301/wppapi/internal/registry"
	"github.com/matheus3301/wppapi/internal/session"
	"github.com/matheus3301/wppapi/internal/wa"
)

// Params holds the resolved startup configuration passed to the fx module.
type Params struct {
	SessionName string
	ListenAddr  string // optional override for testing; empty = use config port
}

// Module returns the fx module for the gateway, composing all providers
// and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideRegistry,
			provideFacade,
			provideSessionService,
			provideChatService,
			provideMessageService,
			provideRouter,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig() (*config.Config, error) {
	return config.LoadOrDefault(session.ConfigPath())
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.SessionName), p.SessionName)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(logger *zap.Logger) (*lock.Lock, error) {
	if err := os.MkdirAll(session.BaseDir(), 0700); err != nil {
		return nil, err
	}
	logger.Info("acquiring gateway lock", zap.String("dir", session.BaseDir()))
	l, err := lock.Acquire(session.BaseDir())
	if err != nil {
		return nil, err
	}
	logger.Info("gateway lock acquired")
	return l, nil
}

func provideRegistry(b *bus.Bus, logger *zap.Logger) *registry.Registry {
	factory := func(ctx context.Context, name string) (wa.ChatClient, error) {
		return wa.NewAdapter(ctx, name, b, logger)
	}
	return registry.New(factory, b, logger)
}

func provideFacade(reg *registry.Registry, logger *zap.Logger) *facade.Facade {
	return facade.New(reg, logger)
}

func provideSessionService(p Params, cfg *config.Config, reg *registry.Registry, logger *zap.Logger) *api.SessionService {
	return api.NewSessionService(reg, p.SessionName, cfg.CredentialWaitTicks, logger)
}

func provideChatService(p Params, f *facade.Facade, logger *zap.Logger) *api.ChatService {
	return api.NewChatService(f, p.SessionName, logger)
}

func provideMessageService(p Params, f *facade.Facade, logger *zap.Logger) *api.MessageService {
	return api.NewMessageService(f, p.SessionName, logger)
}

func provideRouter(sessions *api.SessionService, chats *api.ChatService, messages *api.MessageService, logger *zap.Logger) *gin.Engine {
	return api.NewRouter(sessions, chats, messages, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, reg *registry.Registry, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("http server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			reg.Shutdown(ctx)
			srv.Stop(ctx)
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("gateway stopped")
			return nil
		},
	})
}

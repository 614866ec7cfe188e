package cmd

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/classroom-reserve/internal/application"
	"github.com/example/classroom-reserve/internal/config"
	httpapi "github.com/example/classroom-reserve/internal/http"
	"github.com/example/classroom-reserve/internal/logging"
	"github.com/example/classroom-reserve/internal/persistence"
	"github.com/example/classroom-reserve/internal/persistence/memory"
	"github.com/example/classroom-reserve/internal/persistence/mongo"
)

// store is the full repository surface both backends implement.
type store interface {
	persistence.UserRepository
	persistence.RoomRepository
	persistence.BookingRepository
	persistence.NotificationRepository
	persistence.SessionRepository
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reservation HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Development)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			st, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			router := buildRouter(cfg, st, logger)

			sweeper := cron.New()
			authService := newAuthService(cfg, st, logger)
			if _, err := sweeper.AddFunc(cfg.SessionSweepCron, func() {
				if _, err := authService.SweepExpiredSessions(context.Background()); err != nil {
					logger.Warn("session sweep failed", zap.Error(err))
				}
			}); err != nil {
				return fmt.Errorf("invalid session sweep schedule %q: %w", cfg.SessionSweepCron, err)
			}
			sweeper.Start()
			defer sweeper.Stop()

			server := &nethttp.Server{
				Addr:              cfg.Listen,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", zap.String("addr", cfg.Listen), zap.String("store", string(cfg.Store)))
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer shutdownCancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		st := memory.Open()
		return st, func() { _ = st.Close() }, nil
	default:
		st, err := mongo.Open(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := mongo.EnsureIndexes(ctx, st.Database()); err != nil {
			_ = st.Close(context.Background())
			return nil, nil, err
		}
		return st, func() { _ = st.Close(context.Background()) }, nil
	}
}

func hashParams(cfg *config.Config) application.Argon2idParams {
	params := application.DefaultArgon2idParams
	if cfg.Argon2.MemoryKiB > 0 {
		params.Memory = cfg.Argon2.MemoryKiB
	}
	if cfg.Argon2.Iterations > 0 {
		params.Iterations = cfg.Argon2.Iterations
	}
	if cfg.Argon2.Parallelism > 0 {
		params.Parallelism = cfg.Argon2.Parallelism
	}
	return params
}

func newAuthService(cfg *config.Config, st store, logger *zap.Logger) *application.AuthService {
	return application.NewAuthService(st, st, nil, uuid.NewString, time.Now, cfg.SessionTTL.Std(), logger)
}

func buildRouter(cfg *config.Config, st store, logger *zap.Logger) nethttp.Handler {
	notifier := application.NewStoreNotifier(st, uuid.NewString, time.Now)

	bookings := application.NewBookingService(st, st, st, notifier, uuid.NewString, time.Now, logger)
	rooms := application.NewRoomService(st, st, notifier, uuid.NewString, time.Now, logger)
	users := application.NewUserService(st, hashParams(cfg), uuid.NewString, time.Now, logger)
	auth := newAuthService(cfg, st, logger)
	notifications := application.NewNotificationService(st, logger)

	return httpapi.NewRouter(httpapi.RouterConfig{
		Auth:          httpapi.NewAuthHandler(auth, logger),
		Users:         httpapi.NewUserHandler(users, logger),
		Rooms:         httpapi.NewRoomHandler(rooms, logger),
		Bookings:      httpapi.NewBookingHandler(bookings, logger),
		Notifications: httpapi.NewNotificationHandler(notifications, logger),
		Sessions:      auth,
		Logger:        logger,
	})
}

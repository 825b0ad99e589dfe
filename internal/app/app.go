package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/auth"
	"github.com/Freeeeeet/tutorhub/internal/config"
	"github.com/Freeeeeet/tutorhub/internal/controller"
	"github.com/Freeeeeet/tutorhub/internal/controller/common"
	"github.com/Freeeeeet/tutorhub/internal/notify"
	"github.com/Freeeeeet/tutorhub/internal/repository"
	"github.com/Freeeeeet/tutorhub/internal/repository/memory"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	limiterPruneInterval = time.Minute
	limiterIdleTimeout   = 10 * time.Minute
	shutdownTimeout      = 10 * time.Second
)

// repositories набор хранилищ, за которым может стоять postgres или память
type repositories struct {
	users        service.UserRepository
	posts        service.PostRepository
	applications service.ApplicationRepository
	bookings     service.BookingRepository
	transactions service.TransactionRepository
	ratings      service.RatingRepository
}

type App struct {
	cfg        *config.Config
	pool       *pgxpool.Pool
	fanout     *notify.Fanout
	dispatcher *notify.Dispatcher
	server     *controller.Server
	scheduler  *Scheduler
	logger     *zap.Logger
}

// New собирает приложение. При ошибке уже открытые ресурсы закрываются
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	repos, err := a.initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.initNotifications(ctx); err != nil {
		return nil, err
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)

	ratingService := service.NewRatingService(repos.ratings, repos.users, repos.bookings, logger)
	userService := service.NewUserService(repos.users, ratingService, tokens, logger)
	postService := service.NewPostService(repos.posts, logger)
	applicationService := service.NewApplicationService(repos.applications, repos.posts, repos.users, a.dispatcher, logger)
	bookingService := service.NewBookingService(repos.bookings, repos.posts, repos.users, logger)
	ledgerService := service.NewLedgerService(repos.users, repos.posts, repos.applications, repos.transactions, a.dispatcher, logger)

	if cfg.SeedDemoData {
		if _, err := userService.SeedDemo(ctx, service.DemoUsers); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	a.server = controller.NewServer(
		controller.Options{
			Addr:            cfg.HTTPAddr,
			Env:             cfg.Environment,
			EnabledServices: cfg.EnabledServices,
			Pager:           common.Pager{DefaultLimit: cfg.DefaultPageLimit, MaxLimit: cfg.MaxPageLimit},
			RateLimitRPS:    cfg.RateLimitRPS,
			RateLimitBurst:  cfg.RateLimitBurst,
			ShutdownTimeout: shutdownTimeout,
		},
		controller.Services{
			Users:        userService,
			Posts:        postService,
			Applications: applicationService,
			Bookings:     bookingService,
			Ledger:       ledgerService,
			Ratings:      ratingService,
		},
		auth.NewAuthenticator(tokens, repos.users),
		logger,
	)

	a.scheduler = NewScheduler(a.server.Limiter(), limiterPruneInterval, limiterIdleTimeout, logger)

	return a, nil
}

func (a *App) initStore(ctx context.Context) (*repositories, error) {
	if a.cfg.StoreDriver == config.StoreDriverMemory {
		a.logger.Warn("Using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			users:        store.Users(),
			posts:        store.Posts(),
			applications: store.Applications(),
			bookings:     store.Bookings(),
			transactions: store.Transactions(),
			ratings:      store.Ratings(),
		}, nil
	}

	pool, err := ConnectPostgres(ctx, a.cfg.DBDSN, a.logger)
	if err != nil {
		return nil, err
	}
	a.pool = pool

	migrator, err := NewMigrator(pool, a.cfg.MigrationsDir, a.logger)
	if err != nil {
		return nil, err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		return nil, err
	}

	return &repositories{
		users:        repository.NewUserRepository(pool),
		posts:        repository.NewPostRepository(pool),
		applications: repository.NewApplicationRepository(pool),
		bookings:     repository.NewBookingRepository(pool),
		transactions: repository.NewTransactionRepository(pool),
		ratings:      repository.NewRatingRepository(pool),
	}, nil
}

func (a *App) initNotifications(ctx context.Context) error {
	var senders []notify.Sender

	if a.cfg.HasSink(config.SinkLog) {
		senders = append(senders, notify.NewLogSender(a.logger))
	}
	if a.cfg.HasSink(config.SinkEmail) {
		senders = append(senders, notify.NewEmailSender(a.cfg.EmailServiceURL, a.cfg.NotifyTimeout))
	}
	if a.cfg.HasSink(config.SinkTelegram) {
		tg, err := notify.NewTelegramSender(a.cfg.TelegramToken)
		if err != nil {
			return err
		}
		senders = append(senders, tg)
	}
	if a.cfg.HasSink(config.SinkRabbitMQ) {
		rabbit, err := notify.NewRabbitSender(ctx, a.cfg.RabbitURL, a.cfg.RabbitExchange)
		if err != nil {
			// Соединения уже открытых каналов закрываем сами: fanout ещё не создан
			_ = notify.NewFanout(a.logger, senders...).Close()
			return err
		}
		senders = append(senders, rabbit)
	}

	a.fanout = notify.NewFanout(a.logger, senders...)
	a.dispatcher = notify.NewDispatcher(a.fanout, a.cfg.NotifyQueueSize, a.cfg.NotifyTimeout, a.logger)

	a.logger.Info("Notification sinks configured", zap.Strings("sinks", a.cfg.NotifySinks))
	return nil
}

// Run блокирует до отмены ctx или падения HTTP-сервера
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	a.scheduler.Start(ctx)
	defer a.scheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Run(gctx)
	})
	g.Go(func() error {
		return a.dispatcher.Run(gctx)
	})

	a.logger.Info("Tutorhub is running",
		zap.String("addr", a.cfg.HTTPAddr),
		zap.String("store", a.cfg.StoreDriver),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) close() {
	if a.fanout != nil {
		if err := a.fanout.Close(); err != nil {
			a.logger.Warn("Failed to close notification sinks", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

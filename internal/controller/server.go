package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/controller/common"
	"github.com/Freeeeeet/tutorhub/internal/controller/handlers"
	"github.com/Freeeeeet/tutorhub/internal/controller/middleware"
	"github.com/Freeeeeet/tutorhub/internal/metrics"
	"github.com/Freeeeeet/tutorhub/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Имена групп маршрутов, совпадают с сервисами исходного деплоя
const (
	ServiceAuth        = "auth"
	ServicePost        = "post"
	ServiceApplication = "application"
	ServiceBooking     = "booking"
	ServiceTransaction = "transaction"
	ServiceRating      = "rating"
)

// AllServices порядок регистрации групп
var AllServices = []string{
	ServiceAuth, ServicePost, ServiceApplication, ServiceBooking, ServiceTransaction, ServiceRating,
}

// Services бизнес-логика, которую обслуживает HTTP-слой
type Services struct {
	Users        *service.UserService
	Posts        *service.PostService
	Applications *service.ApplicationService
	Bookings     *service.BookingService
	Ledger       *service.LedgerService
	Ratings      *service.RatingService
}

type Options struct {
	Addr            string
	Env             string
	EnabledServices []string // пусто = все
	Pager           common.Pager
	RateLimitRPS    float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

type Server struct {
	engine  *gin.Engine
	limiter *middleware.RateLimiter
	opts    Options
	logger  *zap.Logger
}

func NewServer(opts Options, svcs Services, authn middleware.Authenticator, logger *zap.Logger) *Server {
	if opts.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if len(opts.EnabledServices) == 0 {
		opts.EnabledServices = AllServices
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	engine := gin.New()
	engine.Use(middleware.Recovery(logger), middleware.Logger(logger), middleware.Metrics())

	s := &Server{
		engine:  engine,
		limiter: middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, logger),
		opts:    opts,
		logger:  logger,
	}
	s.registerRoutes(svcs, authn)
	return s
}

// registerRoutes включает только группы из EnabledServices
func (s *Server) registerRoutes(svcs Services, authn middleware.Authenticator) {
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := s.engine.Group("/api")
	limit := s.limiter.Handler()
	authed := []gin.HandlerFunc{middleware.Auth(authn, s.logger), limit}
	pager := s.opts.Pager

	enabled := func(name string) bool { return slices.Contains(s.opts.EnabledServices, name) }
	group := func(name string) (public, secured *gin.RouterGroup) {
		g := api.Group("/" + name)
		g.GET("/health", handlers.Health)
		return g.Group("", limit), g.Group("", authed...)
	}

	if enabled(ServiceAuth) {
		h := handlers.NewAuthHandler(svcs.Users, pager, s.logger)
		public, secured := group(ServiceAuth)
		public.POST("/login", h.Login)
		secured.GET("/me/get-profile", h.GetProfile)
		secured.POST("/get-profile-by-user-id", h.GetProfileByUserID)
		secured.POST("/me/update-profile", h.UpdateProfile)
		secured.POST("/me/request-profile-verification", h.RequestVerification)
		secured.POST("/admin/update-profile-status", h.UpdateProfileStatus)
		secured.POST("/get-profiles-by-status", h.ListProfilesByStatus)
	}

	if enabled(ServicePost) {
		h := handlers.NewPostHandler(svcs.Posts, pager, s.logger)
		_, secured := group(ServicePost)
		secured.POST("/add-post", h.AddPost)
		secured.POST("/delete-post", h.DeletePost)
		secured.POST("/update-status", h.UpdateStatus)
		secured.GET("/get-post", h.ListPosts)
		secured.GET("/:post_id", h.GetPost)
	}

	if enabled(ServiceApplication) {
		h := handlers.NewApplicationHandler(svcs.Applications, pager, s.logger)
		_, secured := group(ServiceApplication)
		secured.POST("/add-application", h.AddApplication)
		secured.POST("/delete-application", h.DeleteApplication)
		secured.POST("/update-status", h.UpdateStatus)
		secured.GET("/me/get-application", h.ListMine)
		secured.POST("/get-application-by-post", h.ListByPost)
	}

	if enabled(ServiceBooking) {
		h := handlers.NewBookingHandler(svcs.Bookings, pager, s.logger)
		_, secured := group(ServiceBooking)
		secured.POST("/add-booking", h.AddBooking)
		secured.POST("/update-status", h.UpdateStatus)
		secured.GET("/me/get-booking", h.ListMine)
		secured.POST("/get-booking-by-post", h.ListByPost)
	}

	if enabled(ServiceTransaction) {
		h := handlers.NewTransactionHandler(svcs.Ledger, pager, s.logger)
		_, secured := group(ServiceTransaction)
		secured.POST("/add-transaction", h.AddTransaction)
		secured.POST("/pay-application", h.PayApplication)
		secured.GET("/me/get-transaction", h.ListMine)
	}

	if enabled(ServiceRating) {
		h := handlers.NewRatingHandler(svcs.Ratings, s.logger)
		_, secured := group(ServiceRating)
		secured.GET("/tutor/:tutor_id/ratings", h.ListByTutor)
		secured.POST("/add-rating", h.AddRating)
		secured.POST("/update-rating", h.UpdateRating)
		secured.POST("/delete-rating", h.DeleteRating)
	}

	s.logger.Info("HTTP routes registered", zap.Strings("services", s.opts.EnabledServices))
}

// Handler для httptest
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Limiter нужен планировщику для очистки
func (s *Server) Limiter() *middleware.RateLimiter {
	return s.limiter
}

// Run слушает Addr до отмены ctx, затем плавно останавливается
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.opts.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen http: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

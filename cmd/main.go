package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/psytest/config"
	"github.com/lshigami/psytest/database"
	_ "github.com/lshigami/psytest/docs" // Swagger docs
	"github.com/lshigami/psytest/internal/controller/admin"
	authctrl "github.com/lshigami/psytest/internal/controller/auth"
	"github.com/lshigami/psytest/internal/controller/psychologist"
	"github.com/lshigami/psytest/internal/controller/public"
	userctrl "github.com/lshigami/psytest/internal/controller/user"
	"github.com/lshigami/psytest/internal/logger"
	"github.com/lshigami/psytest/internal/middleware"
	"github.com/lshigami/psytest/internal/model"
	"github.com/lshigami/psytest/internal/repository"
	"github.com/lshigami/psytest/internal/service"
	"github.com/lshigami/psytest/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
)

// @title Psytest API
// @version 1.0
// @description Role-based psychological testing: test catalog, attempts, results and statistics.
// @host localhost:8080
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init(nil)

	root := &cobra.Command{
		Use:   "psytest",
		Short: "Psychological testing service",
	}
	root.AddCommand(serveCmd(), seedStaffCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			figure.NewFigure("PSYTEST", "", true).Print()

			app := fx.New(
				// Core Application Components
				fx.Provide(
					config.NewConfig,
					database.NewDatabase, // Provides *gorm.DB
					storage.NewBlobStore,
					NewGinEngine,
				),

				// Repositories Layer
				fx.Provide(
					repository.NewUserRepository,
					repository.NewTestRepository,
					repository.NewQuestionRepository,
					repository.NewTestResultRepository,
					repository.NewAnswerRepository,
				),

				// Services Layer
				fx.Provide(
					service.NewAnswerService,
					service.NewSessionService,
					service.NewCatalogService,
					service.NewStatisticsService,
					service.NewReportService,
					service.NewAdminTestService,
					service.NewAdminUserService,
					service.NewAuthService,
				),

				// API Controllers Layer
				fx.Provide(
					public.NewTestController,
					public.NewSystemController,
					userctrl.NewResultController,
					psychologist.NewPsychologistController,
					admin.NewAdminTestController,
					admin.NewAdminUserController,
					authctrl.NewAuthController,
				),

				fx.Invoke(func(cfg *config.Config) { logger.Init(&cfg.Log) }),
				fx.Invoke(RegisterRoutesAndStartServer),
			)

			if err := app.Start(cmd.Context()); err != nil {
				log.Error().Err(err).Msg("Failed to start application")
				return err
			}
			<-app.Done()
			log.Info().Msg("Application shutting down gracefully...")

			stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return app.Stop(stopCtx)
		},
	}
}

func seedStaffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-staff",
		Short: "Create the admin and psychologist accounts if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			logger.Init(&cfg.Log)

			db, err := database.NewDatabase(cfg)
			if err != nil {
				return err
			}
			auth := service.NewAuthService(repository.NewUserRepository(db), cfg)
			if err := auth.SeedStaff(cmd.Context(), cfg.Seed); err != nil {
				log.Error().Err(err).Msg("seed-staff failed")
				return err
			}
			log.Info().Msg("Staff accounts are in place")
			return nil
		},
	}
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	authService service.AuthService,
	systemCtrl *public.SystemController,
	testCtrl *public.TestController,
	resultCtrl *userctrl.ResultController,
	psychCtrl *psychologist.PsychologistController,
	adminTestCtrl *admin.AdminTestController,
	adminUserCtrl *admin.AdminUserController,
	authCtrl *authctrl.AuthController,
) {
	requireAuth := middleware.RequireAuth(authService)
	loginLimiter := middleware.NewIPRateLimiter(cfg.Server.LoginRatePerMinute)

	router.GET("/uploads/*filepath", systemCtrl.Upload)

	api := router.Group("/api")
	api.GET("/health", systemCtrl.Health)

	authCtrl.RegisterRoutes(api.Group("/auth"), middleware.RateLimit(loginLimiter), requireAuth)

	// guests may take tests
	testCtrl.RegisterRoutes(api.Group("", middleware.OptionalAuth(authService)))
	resultCtrl.RegisterRoutes(api.Group("", requireAuth))

	psychCtrl.RegisterRoutes(api.Group("/psychologist",
		requireAuth, middleware.RequireRole(model.RolePsychologist, model.RoleAdmin)))

	adminGroup := api.Group("/admin", requireAuth, middleware.RequireRole(model.RoleAdmin))
	adminTestCtrl.RegisterRoutes(adminGroup)
	adminUserCtrl.RegisterRoutes(adminGroup)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Psytest API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

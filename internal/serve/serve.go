package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/classterra/school-platform-backend/db"
	"github.com/classterra/school-platform-backend/internal/auth"
	"github.com/classterra/school-platform-backend/internal/cache"
	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/message"
	"github.com/classterra/school-platform-backend/internal/monitor"
	"github.com/classterra/school-platform-backend/internal/serve/httphandler"
	"github.com/classterra/school-platform-backend/internal/serve/middleware"
	"github.com/classterra/school-platform-backend/internal/services"
)

const ServiceID = "serve"

const (
	rateLimitRequests = 100
	rateLimitWindow   = time.Minute
)

type ServeOptions struct {
	Environment          string
	GitCommit            string
	Port                 int
	Version              string
	DatabaseDSN          string
	EC256PublicKey       string
	EC256PrivateKey      string
	CorsAllowedOrigins   []string
	FrontendURL          string
	PlatformName         string
	TokenExpirationHours int
	MonitorService       monitor.MonitorServiceInterface
	EmailMessengerClient message.MessengerClient

	dbConnectionPool     db.DBConnectionPool
	models               *data.Models
	jwtManager           auth.JWTManager
	tenantService        services.TenantServiceInterface
	schoolYearService    services.SchoolYearServiceInterface
	authService          services.AuthServiceInterface
	accessRequestService services.AccessRequestServiceInterface
	waitlistService      services.WaitlistServiceInterface
}

// SetupDependencies uses the serve options to setup the dependencies for the server.
func (opts *ServeOptions) SetupDependencies() error {
	dbConnectionPool, err := db.OpenDBConnectionPool(opts.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("error connecting to the database: %w", err)
	}
	opts.dbConnectionPool = dbConnectionPool

	opts.models, err = data.NewModels(dbConnectionPool)
	if err != nil {
		return fmt.Errorf("error creating models for Serve: %w", err)
	}

	opts.jwtManager, err = auth.NewDefaultJWTManager(opts.EC256PublicKey, opts.EC256PrivateKey)
	if err != nil {
		return fmt.Errorf("error creating JWT manager: %w", err)
	}

	tenantCache, err := cache.NewTenantCache()
	if err != nil {
		return fmt.Errorf("error creating tenant cache: %w", err)
	}

	opts.tenantService, err = services.NewTenantService(opts.models, opts.MonitorService, tenantCache)
	if err != nil {
		return fmt.Errorf("error creating tenant service: %w", err)
	}

	opts.schoolYearService, err = services.NewSchoolYearService(opts.models, opts.MonitorService)
	if err != nil {
		return fmt.Errorf("error creating school year service: %w", err)
	}

	opts.authService, err = services.NewAuthService(services.AuthServiceOptions{
		Models:            opts.models,
		JWTManager:        opts.jwtManager,
		PasswordEncrypter: auth.NewDefaultPasswordEncrypter(),
		MessengerClient:   opts.EmailMessengerClient,
		MonitorService:    opts.MonitorService,
		FrontendURL:       opts.FrontendURL,
		PlatformName:      opts.PlatformName,
		TokenExpiration:   time.Duration(opts.TokenExpirationHours) * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("error creating auth service: %w", err)
	}

	opts.accessRequestService, err = services.NewAccessRequestService(opts.models, opts.EmailMessengerClient, opts.MonitorService, opts.FrontendURL)
	if err != nil {
		return fmt.Errorf("error creating access request service: %w", err)
	}

	opts.waitlistService, err = services.NewWaitlistService(opts.models)
	if err != nil {
		return fmt.Errorf("error creating waitlist service: %w", err)
	}

	return nil
}

// Serve sets up the dependencies and runs the HTTP server until SIGINT/SIGTERM.
func Serve(opts ServeOptions) error {
	if err := opts.SetupDependencies(); err != nil {
		return fmt.Errorf("error starting dependencies: %w", err)
	}

	listenAddr := fmt.Sprintf(":%d", opts.Port)
	httpServer := &http.Server{
		Addr:         listenAddr,
		Handler:      handleHTTP(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Starting School Management Platform Server")
		log.Infof("Listening on %s", listenAddr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Infof("Received signal %v, shutting down...", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("error shutting down server: %w", err)
		}

		log.Info("Closing the database connection...")
		if err := opts.dbConnectionPool.Close(); err != nil {
			log.Errorf("error closing database connection: %s", err)
		}

		log.Info("Stopping School Management Platform Server")
	}

	return nil
}

func handleHTTP(o ServeOptions) *chi.Mux {
	mux := chi.NewMux()

	// Middleware
	mux.Use(middleware.CorsMiddleware(o.CorsAllowedOrigins))
	mux.Use(chimiddleware.RequestID)
	mux.Use(chimiddleware.RealIP)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.RecoverHandler)
	mux.Use(middleware.MetricsRequestHandler(o.MonitorService))
	mux.Use(middleware.RateLimitMiddleware(rateLimitRequests, rateLimitWindow))

	// Public routes
	mux.Get("/health", httphandler.HealthHandler{
		Version:          o.Version,
		GitCommit:        o.GitCommit,
		DBConnectionPool: o.dbConnectionPool,
	}.ServeHTTP)

	if o.MonitorService != nil {
		metricsHandler, err := o.MonitorService.GetMetricHttpHandler()
		if err != nil {
			log.Errorf("error getting metrics http handler: %s", err)
		} else {
			mux.Handle("/metrics", metricsHandler)
		}
	}

	authHandler := httphandler.AuthHandler{AuthService: o.authService}
	mux.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/verify-email", authHandler.VerifyEmail)
		r.Post("/send-verification-code", authHandler.SendVerificationCode)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)

		r.With(middleware.AuthenticateMiddleware(o.jwtManager)).Get("/me", authHandler.Profile)
	})

	waitlistHandler := httphandler.WaitlistHandler{WaitlistService: o.waitlistService}
	mux.Post("/waitlist", waitlistHandler.Subscribe)
	mux.Delete("/waitlist/{email}", waitlistHandler.Unsubscribe)

	// Authenticated routes
	mux.Group(func(r chi.Router) {
		r.Use(middleware.AuthenticateMiddleware(o.jwtManager))

		adminRoles := middleware.AnyRoleMiddleware(data.AdminUserRole, data.SuperAdminUserRole)
		superAdminOnly := middleware.AnyRoleMiddleware(data.SuperAdminUserRole)
		anyRole := middleware.AnyRoleMiddleware(data.AllUserRoles()...)

		r.With(adminRoles).Get("/waitlist", waitlistHandler.GetSubscribers)

		r.Route("/tenants", func(r chi.Router) {
			tenantsHandler := httphandler.TenantsHandler{TenantService: o.tenantService}

			r.With(superAdminOnly).Get("/", tenantsHandler.GetTenants)
			r.With(superAdminOnly).Post("/", tenantsHandler.CreateTenant)
			r.With(anyRole).Post("/minimal", tenantsHandler.CreateMinimalTenant)
			r.With(adminRoles).Get("/{id}", tenantsHandler.GetTenant)
			r.With(adminRoles).Patch("/{id}", tenantsHandler.PatchTenant)
			r.With(superAdminOnly).Patch("/{id}/status", tenantsHandler.ToggleTenantStatus)
			r.With(adminRoles).Patch("/{id}/subscription", tenantsHandler.UpdateSubscription)
			r.With(adminRoles).Post("/{id}/integrations", tenantsHandler.AddIntegration)
			r.With(adminRoles).Delete("/{id}/integrations/{integrationID}", tenantsHandler.RemoveIntegration)
			r.With(superAdminOnly).Delete("/{id}", tenantsHandler.DeleteTenant)
			r.With(superAdminOnly).Post("/{id}/restore", tenantsHandler.RestoreTenant)
			r.With(superAdminOnly).Delete("/{id}/permanent", tenantsHandler.HardDeleteTenant)
		})

		r.Route("/school-years", func(r chi.Router) {
			schoolYearsHandler := httphandler.SchoolYearsHandler{SchoolYearService: o.schoolYearService}

			r.With(anyRole).Get("/", schoolYearsHandler.GetSchoolYears)
			r.With(anyRole).Get("/default", schoolYearsHandler.GetDefaultSchoolYear)
			r.With(anyRole).Get("/{id}", schoolYearsHandler.GetSchoolYear)
			r.With(adminRoles).Post("/", schoolYearsHandler.CreateSchoolYear)
			r.With(adminRoles).Patch("/{id}", schoolYearsHandler.PatchSchoolYear)
			r.With(adminRoles).Patch("/{id}/default", schoolYearsHandler.SetDefaultSchoolYear)
			r.With(adminRoles).Post("/bulk-status", schoolYearsHandler.BulkUpdateStatus)
			r.With(adminRoles).Post("/bulk-delete", schoolYearsHandler.BulkDelete)
			r.With(adminRoles).Delete("/{id}", schoolYearsHandler.DeleteSchoolYear)
			r.With(adminRoles).Post("/{id}/restore", schoolYearsHandler.RestoreSchoolYear)
			r.With(adminRoles).Delete("/{id}/permanent", schoolYearsHandler.PermanentlyDeleteSchoolYear)
		})

		r.Route("/tenant-access", func(r chi.Router) {
			accessRequestsHandler := httphandler.AccessRequestsHandler{AccessRequestService: o.accessRequestService}

			r.With(anyRole).Post("/", accessRequestsHandler.CreateAccessRequest)
			r.With(anyRole).Get("/mine", accessRequestsHandler.GetMyAccessRequests)
			r.With(adminRoles).Get("/", accessRequestsHandler.GetAccessRequests)
			r.With(adminRoles).Patch("/{id}/review", accessRequestsHandler.ReviewAccessRequest)
			r.With(anyRole).Patch("/{id}/cancel", accessRequestsHandler.CancelAccessRequest)
		})
	})

	return mux
}

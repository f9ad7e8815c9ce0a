package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/causeway/internal/config"
	countrydomain "github.com/smallbiznis/causeway/internal/countryconfig/domain"
	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
	invoicedomain "github.com/smallbiznis/causeway/internal/invoice/domain"
	"github.com/smallbiznis/causeway/internal/ratelimit"
	recurringdomain "github.com/smallbiznis/causeway/internal/recurring/domain"
	wizardservice "github.com/smallbiznis/causeway/internal/wizard/service"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	countrySvc   countrydomain.Service
	donationSvc  donationdomain.Service
	invoiceSvc   invoicedomain.Service
	recurringSvc recurringdomain.Service
	wizard       *wizardservice.Manager
	limiter      *ratelimit.TokenBucket
	log          *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	CountrySvc   countrydomain.Service
	DonationSvc  donationdomain.Service
	InvoiceSvc   invoicedomain.Service
	RecurringSvc recurringdomain.Service
	Wizard       *wizardservice.Manager
	Limiter      *ratelimit.TokenBucket `optional:"true"`
	Log          *zap.Logger
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		countrySvc:   p.CountrySvc,
		donationSvc:  p.DonationSvc,
		invoiceSvc:   p.InvoiceSvc,
		recurringSvc: p.RecurringSvc,
		wizard:       p.Wizard,
		limiter:      p.Limiter,
		log:          p.Log.Named("http.server"),
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func registerRoutes(s *Server) {
	s.RegisterAPIRoutes()
	s.RegisterInternalRoutes()
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Country configuration --------
	api.GET("/donations/countries", s.ListCountries)
	api.GET("/donations/country/:code", s.GetCountry)

	// -------- Donation wizard --------
	wizard := api.Group("/wizard/sessions")
	wizard.POST("", s.CreateWizardSession)
	wizard.GET("/:id", s.GetWizardSession)
	wizard.POST("/:id/events", s.ApplyWizardEvent)
	wizard.POST("/:id/submit", s.SubmitRateLimit(), s.SubmitWizardPayment)
	wizard.DELETE("/:id", s.EndWizardSession)

	// -------- Donations --------
	api.POST("/donations/payment/confirm", s.ConfirmDonationPayment)
	api.GET("/donations", s.ListDonations)
	api.GET("/donations/:id", s.GetDonation)

	// -------- Recurring subscriptions --------
	api.POST("/donations/recurring", s.EnrollRecurring)
	api.GET("/donations/recurring", s.ListRecurring)
	api.GET("/donations/recurring/:id", s.GetRecurring)
	api.PATCH("/donations/recurring/:id/pause", s.PauseRecurring)
	api.PATCH("/donations/recurring/:id/resume", s.ResumeRecurring)
	api.DELETE("/donations/recurring/:id", s.CancelRecurring)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.GET("/invoices/:id/download", s.DownloadInvoice)
	api.POST("/invoices/:id/resend", s.ResendInvoice)
	api.POST("/invoices/:id/regenerate", s.RegenerateInvoice)
}

func (s *Server) RegisterInternalRoutes() {
	internal := s.engine.Group("/internal")

	// Operator hook; deployments normally drive it from a cron container.
	internal.POST("/recurring/run-due", s.RunDueRecurring)
}

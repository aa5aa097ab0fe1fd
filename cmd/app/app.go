package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"taicc-readiness/cmd/app/internal/controller"
	"taicc-readiness/internal/config"
	"taicc-readiness/internal/db"
	"taicc-readiness/internal/delivery"
	"taicc-readiness/internal/document"
	"taicc-readiness/internal/llm"
	"taicc-readiness/internal/metrics"
	"taicc-readiness/internal/payment"
	"taicc-readiness/internal/questions"
	"taicc-readiness/internal/report"
	"taicc-readiness/internal/repository"
	"taicc-readiness/internal/service"
	"taicc-readiness/internal/session"
	"taicc-readiness/pkg/middleware"
	"taicc-readiness/utilities"
)

const (
	logoCacheTTL = time.Hour
	logoTimeout  = 15 * time.Second
	smtpTimeout  = 30 * time.Second
)

// application holds the wired service and what must be closed on shutdown.
type application struct {
	cfg     *config.APIConfig
	service service.AssessmentService
	tokens  *utilities.SessionTokens
	metrics *metrics.Recorder
	bus     *utilities.EventBus
	sqlDB   *sql.DB
}

// newApplication wires every component from cfg. Only a bad question bank
// or an unreachable configured database is fatal; missing optional
// credentials degrade the matching feature.
func newApplication(ctx context.Context, cfg *config.APIConfig) (*application, error) {
	tp := cfg.THIRD_PARTY
	sec := cfg.Secrets

	bank, err := questions.LoadFile(tp.QuestionBank)
	if err != nil {
		return nil, err
	}
	utilities.Info("Loaded question bank %s: %d domains, %d tiers", tp.QuestionBank, len(bank.Domains()), len(bank.Tiers()))

	app := &application{cfg: cfg, bus: utilities.NewEventBus(), metrics: metrics.NewRecorder()}
	app.metrics.Subscribe(app.bus)

	var results repository.ResultRepository
	conn, err := db.InitDBFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if conn != nil {
		if app.sqlDB, err = conn.DB(); err != nil {
			return nil, err
		}
		results = repository.NewResultRepository(conn)
		utilities.Info("Results database ready (%s)", cfg.DB.Driver)
	}

	client, err := llm.NewGeminiClient(ctx, sec.GeminiAPIKey, tp.GenAIModel, tp.GenAIRatePerMin)
	if err != nil {
		if !errors.Is(err, llm.ErrTextGenerationUnavailable) {
			return nil, err
		}
		utilities.Error("GEMINI_API_KEY is not set; session endpoints will answer 503")
		client = nil
	}

	gateway := payment.NewRazorpayGateway(sec.RazorpayKeyID, sec.RazorpayKeySecret)
	if gateway == nil {
		utilities.Warn("Razorpay keys are not set; payment will be waived")
	}

	mailer := delivery.NewSMTPMailer(delivery.SMTPConfig{
		Host:     tp.SMTPHost,
		Port:     tp.SMTPPort,
		Sender:   sec.EmailSender,
		Password: sec.EmailAppPassword,
		Timeout:  smtpTimeout,
	})
	if mailer == nil {
		utilities.Warn("Email credentials are not set; reports will not be emailed")
	}

	sheet, err := delivery.NewSheetsAppender(ctx, sec.ServiceAccountFile, sec.SpreadsheetID, sec.SheetName)
	if err != nil {
		utilities.Warn("Spreadsheet client unavailable, rows will not be appended: %v", err)
		sheet = nil
	} else if sheet == nil {
		utilities.Warn("Spreadsheet is not configured; rows will not be appended")
	}

	var logos document.LogoSource
	if tp.LogoURL != "" {
		logos = document.NewHTTPLogoSource(tp.LogoURL, &http.Client{Timeout: logoTimeout}, logoCacheTTL)
	}

	timeout := time.Duration(cfg.Authentication.SessionTimeout) * time.Minute
	app.tokens, err = utilities.NewSessionTokens(sec.SessionSecret, timeout)
	if err != nil {
		return nil, err
	}

	app.service = service.NewAssessmentService(service.Dependencies{
		Bank:          bank,
		Store:         session.NewStore(cfg.Authentication.MaxSessions, timeout),
		Compiler:      report.NewCompiler(client),
		Assembler:     document.NewAssembler(logos),
		Dispatcher:    delivery.NewDispatcher(mailer, sheet, delivery.NewResultRecorder(results)),
		Gateway:       gateway,
		Poller:        payment.NewPoller(tp.PollAttempts, time.Duration(tp.PollInterval)*time.Second),
		Results:       results,
		Bus:           app.bus,
		PriceRupees:   tp.PriceRupees,
		Currency:      tp.Currency,
		CheckoutKeyID: sec.RazorpayKeyID,
	})
	return app, nil
}

func (a *application) router() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))

	if a.cfg.RequestDump {
		r.Use(middleware.RequestDumpMiddleware())
	}

	perSecond := float64(a.cfg.Context.RateLimit)
	limiter, err := middleware.NewRateLimiter(perSecond, 2*a.cfg.Context.RateLimit, 0)
	if err != nil {
		return nil, err
	}
	r.Use(limiter.Middleware())

	deps := controller.RouteDeps{
		AssessmentService: a.service,
		Tokens:            a.tokens,
		Metrics:           a.metrics.Handler(),
	}
	features := a.cfg.Features()
	if features.AdminAPI && features.Database {
		deps.Admin = gin.Accounts{a.cfg.Secrets.AdminUser: a.cfg.Secrets.AdminPassword}
	}
	controller.RegisterRoutes(r, deps)
	return r, nil
}

// close runs after the HTTP server has stopped.
func (a *application) close() {
	a.bus.Close()
	if a.sqlDB != nil {
		if err := a.sqlDB.Close(); err != nil {
			utilities.Warn("Closing results database: %v", err)
		}
	}
}

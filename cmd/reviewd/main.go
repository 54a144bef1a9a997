package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/omnibank/reviewd/internal/adapter/adminapi"
	rvhttp "github.com/omnibank/reviewd/internal/adapter/http"
	"github.com/omnibank/reviewd/internal/adapter/litellm"
	rvnats "github.com/omnibank/reviewd/internal/adapter/nats"
	"github.com/omnibank/reviewd/internal/adapter/noop"
	rvotel "github.com/omnibank/reviewd/internal/adapter/otel"
	"github.com/omnibank/reviewd/internal/adapter/ristretto"
	"github.com/omnibank/reviewd/internal/adapter/textract"
	"github.com/omnibank/reviewd/internal/config"
	"github.com/omnibank/reviewd/internal/logger"
	"github.com/omnibank/reviewd/internal/port/cache"
	"github.com/omnibank/reviewd/internal/port/events"
	"github.com/omnibank/reviewd/internal/port/extractor"
	"github.com/omnibank/reviewd/internal/port/reasoner"
	"github.com/omnibank/reviewd/internal/resilience"
	"github.com/omnibank/reviewd/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	log.Info("config loaded",
		"port", cfg.Server.Port,
		"agent_enabled", cfg.Agent.Enabled,
		"agent_mode", cfg.Agent.Mode,
		"ai_provider", cfg.AI.Provider,
		"ocr_provider", cfg.OCR.Provider,
	)

	ctx := context.Background()

	// --- Infrastructure ---

	// NATS is optional; without it decisions stay local to the ledger.
	var publisher events.Publisher = events.Discard{}
	if cfg.NATS.URL != "" {
		pub, err := rvnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = pub.Close() }()
		publisher = pub
	}

	var docCache cache.Cache
	rc, err := ristretto.New(cfg.Cache.DocTextMaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer rc.Close()
	docCache = rc

	otelMetrics, err := rvotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Reasoner and extractor ---

	var rsn reasoner.Reasoner = noop.Reasoner{}
	if cfg.AI.Provider == "litellm" {
		llm := litellm.NewClient(cfg.AI.LiteLLM.URL, cfg.AI.LiteLLM.MasterKey,
			cfg.AI.LiteLLM.Model, cfg.AI.LiteLLM.Temperature, log)
		llm.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
		rsn = llm
	}

	var ex extractor.Extractor = noop.Extractor{}
	if cfg.OCR.Provider == "content" {
		ex = textract.New(log)
	}

	// --- Backend admin clients ---

	newBreaker := func() *resilience.Breaker {
		return resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
	}

	kycClient := adminapi.NewKYCClient(cfg.Services.UserURL)
	kycClient.SetBreaker(newBreaker())
	profileClient := adminapi.NewProfileClient(cfg.Services.UserURL)
	profileClient.SetBreaker(newBreaker())
	accountClient := adminapi.NewAccountClient(cfg.Services.AccountURL)
	accountClient.SetBreaker(newBreaker())
	salaryClient := adminapi.NewSalaryClient(cfg.Services.AccountURL)
	salaryClient.SetBreaker(newBreaker())
	loanClient := adminapi.NewLoanClient(cfg.Services.LoanURL)
	loanClient.SetBreaker(newBreaker())
	cardClient := adminapi.NewCardClient(cfg.Services.CardURL)
	cardClient.SetBreaker(newBreaker())
	selfServiceClient := adminapi.NewSelfServiceClient(cfg.Services.SelfServiceURL)
	selfServiceClient.SetBreaker(newBreaker())

	// --- Services ---

	state := service.NewAgentState(cfg.Agent)
	metrics := service.NewQueueMetrics(otelMetrics)
	ledger := service.NewAuditLedger(log, publisher)
	evidence := service.NewEvidence(ex, docCache, cfg.Cache.DocTextTTL, log)

	d := service.NewDeps(state, ledger, metrics)
	workflows := []service.Workflow{
		service.NewKYCWorkflow(d, kycClient, evidence, rsn, log),
		service.NewLoanWorkflow(d, loanClient, accountClient, log),
		service.NewCardWorkflow(d, cardClient, accountClient, rsn, log),
		service.NewSalaryWorkflow(d, salaryClient, evidence, rsn, log),
		service.NewSelfServiceWorkflow(d, selfServiceClient, profileClient, evidence, rsn, log),
	}

	orchestrator := service.NewOrchestrator(state, workflows, metrics, otelMetrics, log)
	scheduler := service.NewScheduler(state, orchestrator, log)

	schedCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	go scheduler.Start(schedCtx)

	// --- HTTP ---

	handlers := rvhttp.NewHandlers(state, orchestrator, ledger, log)
	if llm, ok := rsn.(*litellm.Client); ok {
		handlers.AddHealthCheck("reasoner", llm.Health)
	}
	if pub, ok := publisher.(*rvnats.Publisher); ok {
		handlers.AddHealthCheck("events", pub.Health)
	}

	r := chi.NewRouter()
	r.Use(rvhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(rvhttp.Logger)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(rvotel.HTTPMiddleware(cfg.Logging.Service))

	rvhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
		}
	}()

	<-done
	log.Info("shutting down server")
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/handlers"
	"github.com/ternarybob/analyst/internal/interfaces"
	"github.com/ternarybob/analyst/internal/services/cache"
	"github.com/ternarybob/analyst/internal/services/llm"
	"github.com/ternarybob/analyst/internal/services/pdf"
	"github.com/ternarybob/analyst/internal/services/report"
	"github.com/ternarybob/analyst/internal/services/tools"
	"github.com/ternarybob/arbor"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Services
	ReportCache interfaces.ReportCache
	PDFService  interfaces.PDFService
	Agents      interfaces.AgentFactory
	Tools       *tools.Registry
	Generator   interfaces.ReportGenerator

	// HTTP handlers
	APIHandler     *handlers.APIHandler
	AnalyzeHandler *handlers.AnalyzeHandler
	PDFHandler     *handlers.PDFHandler
}

// New initializes the application with all dependencies
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("default_model", cfg.LLM.DefaultModel).
		Str("search_provider", cfg.Search.Provider).
		Str("pdf_mode", cfg.PDF.Mode).
		Int("cache_max_reports", cfg.Cache.MaxReports).
		Msg("Application initialized")

	return app, nil
}

// initServices initializes all business services
func (a *App) initServices(ctx context.Context) error {
	a.ReportCache = cache.NewReportCache(a.Config.Cache.MaxReports, a.Logger)

	a.PDFService = pdf.NewService(a.Logger,
		pdf.WithMode(a.Config.PDF.Mode),
		pdf.WithPageSize(a.Config.PDF.PageSize),
	)

	registry, err := tools.NewRegistry(ctx, a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize agent tools: %w", err)
	}
	a.Tools = registry

	a.Agents = llm.NewProviderFactory(a.Config, a.Logger)

	timeout, err := a.Config.LLMTimeout()
	if err != nil {
		return err
	}
	a.Generator = report.NewGenerator(a.Agents, a.Tools, timeout, a.Logger)

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.ReportCache, a.Logger)
	a.AnalyzeHandler = handlers.NewAnalyzeHandler(a.Generator, a.ReportCache, a.Logger)
	a.PDFHandler = handlers.NewPDFHandler(a.ReportCache, a.PDFService, a.Logger)
}

// Close releases application resources
func (a *App) Close() error {
	if a.ReportCache != nil {
		a.ReportCache.Clear()
	}
	a.Logger.Info().Msg("Application closed")
	return nil
}

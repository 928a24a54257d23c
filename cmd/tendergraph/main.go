package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/openprocure/tendergraph/internal/config"
	"github.com/openprocure/tendergraph/internal/infra/database"
	"github.com/openprocure/tendergraph/internal/infra/repository"
	"github.com/openprocure/tendergraph/internal/interface/rest"
	"github.com/openprocure/tendergraph/internal/service"
	"github.com/openprocure/tendergraph/internal/usecase"
)

func main() {
	configPath := flag.String("config", "/etc/tendergraph/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.EnableTrace {
		cleanup, err := setupTraceProvider(cfg.Server.TraceEndpoint)
		if err != nil {
			log.Fatalf("failed to setup trace provider: %v", err)
		}
		defer cleanup()
	}

	db, err := database.NewPostgres(cfg.Server.PostgresDsn)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	rdb := database.NewRedis(cfg.Server.RedisAddr, cfg.Server.RedisPassword, cfg.Server.RedisDB)
	signal := service.NewSignalService(rdb)

	tenderRepo := repository.NewTenderRepository(db)

	criterionUsecase := usecase.NewCriterionUsecase(repository.NewCriterionRepository(db), signal)
	graphUsecase := usecase.NewGraphUsecase(repository.NewGraphRepository(db), signal)
	evidenceUsecase := usecase.NewEvidenceUsecase(repository.NewEvidenceRepository(db), signal)

	suggester := service.NewDocTypeSuggester(
		loadDocTypeRules(tenderRepo, cfg.DocType.Rules),
		time.Duration(cfg.DocType.CacheTTLSeconds)*time.Second,
	)

	handler := rest.NewHandler(
		criterionUsecase,
		graphUsecase,
		evidenceUsecase,
		tenderRepo,
		suggester,
		signal,
	)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if cfg.Server.EnableTrace {
		e.Use(otelecho.Middleware("tendergraph"))
	}

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(cfg.Server.ListenAddr))
}

// loadDocTypeRules merges the database rule table with the rules from
// config. Table rules come first and therefore win on overlap.
func loadDocTypeRules(repo *repository.TenderRepository, extra []config.DocTypeRule) []service.DocTypeRule {
	var rules []service.DocTypeRule

	rows, err := repo.DocumentTypes(context.Background())
	if err != nil {
		log.Printf("document type table unavailable, using config rules only: %v", err)
	}
	for _, row := range rows {
		rules = append(rules, service.DocTypeRule{Pattern: row.Pattern, Type: row.Name})
	}
	for _, rule := range extra {
		rules = append(rules, service.DocTypeRule{Pattern: rule.Pattern, Type: rule.Type})
	}

	return rules
}

func setupTraceProvider(endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.Printf("failed to shutdown trace provider: %v", err)
		}
	}
	return cleanup, nil
}

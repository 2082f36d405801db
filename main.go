package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/insightdelivered/statement-importer/internal/api"
	"github.com/insightdelivered/statement-importer/internal/categorize"
	"github.com/insightdelivered/statement-importer/internal/config"
	"github.com/insightdelivered/statement-importer/internal/extractor"
	"github.com/insightdelivered/statement-importer/internal/forecast"
	"github.com/insightdelivered/statement-importer/internal/gateway"
	"github.com/insightdelivered/statement-importer/internal/importer"
	"github.com/insightdelivered/statement-importer/internal/logger"
	"github.com/insightdelivered/statement-importer/internal/parser"
	"github.com/insightdelivered/statement-importer/internal/staging"
)

const version = "1.0.0"

func main() {
	addrFlag := flag.String("addr", "", "Listen address (overrides LISTEN_ADDR)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	log := logger.New()

	if *versionFlag {
		log.Info().Str("version", version).Msg("statement-importer")
		return
	}

	cfg := config.Load()
	addr := cfg.ListenAddr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	store, cleanup, err := newStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("staging store setup failed")
	}
	defer cleanup()

	ledger := gateway.New(cfg.LedgerBaseURL, cfg.HTTPTimeout)
	statements := parser.Default(categorize.New(cfg.FuzzyThreshold))

	handler := &api.Handler{
		Importer:   importer.New(extractor.PDF{}, statements, store, ledger, log),
		Forecaster: forecast.New(ledger, log),
	}

	app := fiber.New(fiber.Config{
		AppName:   "statement-importer v" + version,
		BodyLimit: 32 << 20, // statement PDFs, with headroom
	})
	handler.RegisterRoutes(app)

	log.Info().Str("addr", addr).Str("ledger", cfg.LedgerBaseURL).Msg("listening")
	if err := app.Listen(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

// newStore picks the staging backend: MongoDB when MONGO_URI is set, the
// in-memory store otherwise. Batches in the in-memory store do not survive
// a restart.
func newStore(cfg *config.Config, log zerolog.Logger) (staging.Store, func(), error) {
	if cfg.MongoURI == "" {
		log.Info().Msg("MONGO_URI not set, staging batches in memory")
		return staging.NewMemoryStore(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}

	log.Info().Str("database", cfg.MongoDatabase).Msg("staging batches in MongoDB")
	return staging.NewMongoStore(client.Database(cfg.MongoDatabase)), cleanup, nil
}

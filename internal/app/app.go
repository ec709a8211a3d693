package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pvolkov/shoply/config"
	"github.com/pvolkov/shoply/internal/adapter/auth"
	"github.com/pvolkov/shoply/internal/adapter/httphandler"
	"github.com/pvolkov/shoply/internal/adapter/imagestore"
	"github.com/pvolkov/shoply/internal/adapter/kafka"
	"github.com/pvolkov/shoply/internal/adapter/storage"
	"github.com/pvolkov/shoply/internal/core/service"
	"github.com/pvolkov/shoply/pkg/kvcache"
	"github.com/pvolkov/shoply/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type services struct {
	auth     service.Auth
	products service.Products
	orders   service.Orders
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	sqlDB      storage.SQLDB
	cache      *kvcache.Cache
	tokens     auth.TokenManager
	producer   kafka.OrderEventsProducer
	services   services
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStorage()
	app.initProducer()
	app.initServices()
	app.initHTTPServer()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	sqlDB, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}

	app.sqlDB = sqlDB
	app.cache = kvcache.New()
	httphandler.RegisterCacheMetrics(app.cache)
}

func (app *App) initProducer() {
	const op = "App.initProducer"

	srClient, err := sr.NewClient(
		sr.URLs(app.cfg.Broker.SchemaRegistryURLs...),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	schemaCreater := schema.NewSchemaCreater(srClient)

	subject := app.cfg.Broker.OrderEventsTopic + "-value"
	orderEventSerde, err := schema.NewSerdeOrderEventV1(
		app.ctx,
		schema.SubjectOpt(subject),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewOrderEventsProducer(
		kafka.ProducerClientOpt(
			app.ctx,
			app.cfg.Broker.SeedBrokers,
			app.cfg.Broker.OrderEventsTopic,
		),
		kafka.ProducerEncoderOpt(orderEventSerde),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.producer = producer
}

func (app *App) initServices() {
	users := storage.NewUsersRepository(app.sqlDB)
	products := storage.NewProductsRepository(app.sqlDB)
	orders := storage.NewOrdersRepository(app.sqlDB)

	hasher := auth.NewBcryptHasher()
	app.tokens = auth.NewTokenManager(
		app.cfg.Auth.JWTSecret, app.cfg.Auth.TokenTTL,
	)
	uploader := imagestore.New(
		app.cfg.Upload.URL, app.cfg.Upload.APIKey, app.cfg.Upload.Folder,
	)

	app.services.auth = service.NewAuth(users, hasher, app.tokens)
	app.services.products = service.NewProducts(
		products, app.cache, uploader, app.cfg.Cache.ListingTTL,
	)
	app.services.orders = service.NewOrders(orders, app.producer)
}

func (app *App) initHTTPServer() {
	authed := httphandler.Authenticate(app.tokens)

	mux := http.NewServeMux()
	httphandler.RegisterAuth(mux, app.services.auth)
	httphandler.RegisterProducts(mux, app.services.products, authed)
	httphandler.RegisterOrders(mux, app.services.orders, authed)
	httphandler.RegisterCache(mux, app.cache, authed)
	httphandler.RegisterDocs(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := httphandler.AllowJSON(mux)
	handler = httphandler.ObserveMetrics(handler)
	handler = httphandler.Logging(handler)

	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, handler,
	)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.producer.Close()
	app.sqlDB.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}

// Package cli implements the console command line: it wires the session facade, API client,
// route guard and repositories from config and runs one subcommand per invocation.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	adminrepo "event-admin-console/internal/adminuser/repository"
	"event-admin-console/internal/apiclient"
	"event-admin-console/internal/catalog"
	"event-admin-console/internal/config"
	customerrepo "event-admin-console/internal/customer/repository"
	eventrepo "event-admin-console/internal/event/repository"
	"event-admin-console/internal/guard"
	"event-admin-console/internal/logging"
	"event-admin-console/internal/navigation"
	"event-admin-console/internal/security"
	"event-admin-console/internal/session/service"
	"event-admin-console/internal/telemetry"
	telemetryotel "event-admin-console/internal/telemetry/otel"
	"event-admin-console/internal/telemetry/producer"
	"event-admin-console/internal/tokenstore"
)

const serviceName = "event-admin-console"

// shutdownTimeout bounds the flush of telemetry and the store close on exit.
const shutdownTimeout = 5 * time.Second

// Env is what a run needs from the outside world.
type Env struct {
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer
	// Store overrides the store selected by TOKEN_STORE_DRIVER.
	Store *tokenstore.Store
}

// App is the wired console.
type App struct {
	out     io.Writer
	errOut  io.Writer
	jsonOut bool
	logger  *slog.Logger

	nav       *navigation.Recorder
	client    *apiclient.Client
	facade    *service.Facade
	guard     *guard.Evaluator
	events    *eventrepo.HTTPRepository
	customers *customerrepo.HTTPRepository
	admins    *adminrepo.HTTPRepository
	catalog   *catalog.Client

	closers []func(context.Context) error
}

// NewApp builds an App from env. Close must be called when done.
func NewApp(ctx context.Context, env Env) (_ *App, err error) {
	cfg := env.Config
	if cfg == nil {
		return nil, errors.New("cli: config is required")
	}
	stderr := env.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	logger := logging.NewWithWriter(stderr, cfg.LogLevel, cfg.LogFormat)

	a := &App{out: env.Stdout, errOut: stderr, logger: logger, nav: &navigation.Recorder{}}
	if a.out == nil {
		a.out = io.Discard
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure)
	if err != nil {
		return nil, err
	}
	providers.SetGlobal()
	a.closers = append(a.closers, providers.Shutdown)

	store := env.Store
	if store == nil {
		var closeStore func() error
		store, closeStore, err = tokenstore.Open(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return closeStore() })
	}

	codec, err := security.NewCodec(cfg.JWTPublicKey)
	if err != nil {
		return nil, err
	}

	a.client, err = apiclient.New(apiclient.Options{
		BaseURL:      cfg.APIBaseURL,
		Timeout:      cfg.HTTPTimeoutDuration(),
		Store:        store,
		Codec:        codec,
		Navigator:    a.nav,
		LandingRoute: cfg.LandingRoute,
		SingleFlight: cfg.RefreshSingleFlight,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	emitters := []telemetry.EventEmitter{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		kp, err := producer.NewKafkaProducer(brokers, cfg.SessionEventsTopic, logger)
		if err != nil {
			return nil, err
		}
		emitters = append(emitters, kp)
		a.closers = append(a.closers, func(context.Context) error { return kp.Close() })
	}

	a.facade, err = service.New(service.Options{
		Client:       a.client,
		Store:        store,
		Codec:        codec,
		Navigator:    a.nav,
		LandingRoute: cfg.LandingRoute,
		Events:       telemetry.Multi(emitters...),
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	a.guard, err = guard.New(ctx, guard.Options{
		LandingRoute:      cfg.LandingRoute,
		UnauthorizedRoute: cfg.UnauthorizedRoute,
		Logger:            logger,
	})
	if err != nil {
		return nil, err
	}
	if err := a.guard.HealthCheck(ctx); err != nil {
		logger.Warn("guard policy health check failed, built-in rules will decide", "error", err)
	}

	a.events = eventrepo.NewHTTPRepository(a.client)
	a.customers = customerrepo.NewHTTPRepository(a.client)
	a.admins = adminrepo.NewHTTPRepository(a.client)
	a.catalog = catalog.New(a.client)
	return a, nil
}

// Close drains pending session events, then closes the producer, the store and the providers
// in reverse order of creation.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := telemetry.Drain(ctx); err != nil {
		a.logger.Warn("drain session events", "error", err)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("close", "error", err)
		}
	}
	a.closers = nil
}

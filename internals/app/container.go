package app

import (
	"context"
	"errors"
	"time"

	"connwatch/config"
	middle "connwatch/internals/middleware"
	"connwatch/internals/modules/alert"
	"connwatch/internals/modules/auth"
	"connwatch/internals/modules/diagnostics"
	"connwatch/internals/modules/events"
	"connwatch/internals/modules/incident"
	"connwatch/internals/modules/mirror"
	"connwatch/internals/modules/monitor"
	"connwatch/internals/modules/probe"
	"connwatch/internals/modules/recorder"
	"connwatch/internals/modules/stream"
	"connwatch/internals/security"
	"connwatch/pkg/db"
	"connwatch/pkg/httpclient"
	"connwatch/pkg/rabbitmq"
	"connwatch/pkg/redisstore"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	userAgent             = "connwatch/1.0"
	commandHandlerTimeout = 30 * time.Second
)

type Container struct {
	Config *config.Config
	Logger *zerolog.Logger

	// optional infra, nil when not configured
	DB          *pgxpool.Pool
	RedisClient *redisstore.Client
	AMQPConn    *amqp091.Connection
	Publisher   *rabbitmq.Publisher
	Consumer    *rabbitmq.Consumer

	Monitor     *monitor.Monitor
	Diagnostics *diagnostics.Aggregator
	DiagResults *events.Topic[diagnostics.Result]
	AlertSvc    *alert.AlertService
	Recorder    *recorder.Recorder
	Retention   *incident.RetentionJob
	incidentSvc *incident.Service

	authMW          *middle.AuthMiddleware
	authHandler     *auth.Handler
	monitorHandler  *monitor.Handler
	diagHandler     *diagnostics.Handler
	incidentHandler *incident.Handler
	mirrorHandler   *mirror.Handler
	streamHandler   *stream.Handler
}

// NewContainer builds every component. Redis, Postgres and RabbitMQ are
// connected only when their section of cfg names an address.
func NewContainer(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (_ *Container, err error) {
	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = c.Shutdown(context.Background())
		}
	}()

	validate := validator.New()

	// Poll probes reuse connections; diagnostics measure cold DNS and connect.
	pollClient := httpclient.NewHttpClient(httpclient.Options{UserAgent: userAgent})

	if err := c.connectInfra(ctx); err != nil {
		return nil, err
	}

	c.DiagResults = events.NewTopic[diagnostics.Result]("diagnostics", logger)
	c.Diagnostics = BuildAggregator(cfg, NewDiagnosticsProber(), logger)

	alertOpts := alert.Options{
		WorkerCount: 1,
		RunOnOutage: cfg.Diagnostics.RunOnOutage,
		Results:     c.DiagResults,
	}
	if cfg.Redis != nil {
		alertOpts.DiagnosticsTTL = cfg.Redis.DiagnosticsTTL
	}

	// Optional collaborators are assigned only when present so the
	// interfaces stay nil otherwise.
	var statusStore recorder.StatusStore
	var statusPublisher recorder.EventPublisher
	if c.RedisClient != nil {
		alertOpts.Store = c.RedisClient
		statusStore = c.RedisClient
		c.mirrorHandler = mirror.NewHandler(c.RedisClient, logger)
	}
	if c.Publisher != nil {
		alertOpts.Publisher = c.Publisher
		statusPublisher = c.Publisher
	}

	if c.DB != nil {
		repo := incident.NewRepository(c.DB, logger)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		c.incidentSvc = incident.NewService(repo, logger)
		alertOpts.Incidents = c.incidentSvc
		c.incidentHandler = incident.NewHandler(c.incidentSvc)

		c.Retention, err = incident.NewRetentionJob(c.incidentSvc, cfg.DB.IncidentRetention, 0, nil, logger)
		if err != nil {
			return nil, err
		}
	}

	c.AlertSvc = alert.NewAlertService(c.Diagnostics, alertOpts, logger)
	c.Recorder = recorder.New(statusStore, statusPublisher, nil, logger)

	bus := monitor.NewBus(logger)
	c.Monitor = monitor.New(probe.NewHTTPProber(pollClient), bus, monitor.Options{
		Endpoints:       toEndpoints(cfg.Monitor.Endpoints),
		ProbeTimeout:    cfg.Monitor.ProbeTimeout,
		HistoryCapacity: cfg.Monitor.HistoryCapacity,
		OutageThreshold: cfg.Monitor.OutageThreshold,
		Classifier: monitor.Classifier{
			Window:            cfg.Monitor.StatusWindow,
			MinSuccessRate:    cfg.Monitor.MinSuccessRate,
			DegradedLatencyMs: cfg.Monitor.DegradedLatencyMs,
		},
		OutageHandler: c.AlertSvc.OnOutage,
	}, logger)

	// Long-lived subscribers. Their callbacks only enqueue.
	bus.LatencyUpdates.On(c.AlertSvc.OnLatency)
	bus.LatencyUpdates.On(c.Recorder.OnLatency)
	bus.StatusChanges.On(c.Recorder.OnStatus)

	tokens := security.NewTokenService(cfg.Auth)
	c.authMW = middle.NewAuthMiddleware(tokens)
	c.authHandler = auth.NewHandler(auth.NewService(cfg.Auth.AdminPasswordHash, tokens, logger), validate)
	c.monitorHandler = monitor.NewHandler(c.Monitor, validate)
	c.diagHandler = diagnostics.NewHandler(c.AlertSvc)
	c.streamHandler = stream.NewHandler(c.Monitor.Bus(), c.DiagResults, c.Monitor, logger)

	if c.AMQPConn != nil {
		c.Consumer, err = rabbitmq.NewConsumer(c.AMQPConn, cfg.RabbitMQ.QueueName, cfg.RabbitMQ.WorkerCount, commandHandlerTimeout, logger)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Container) connectInfra(ctx context.Context) error {
	cfg := c.Config

	if cfg.Redis != nil && cfg.Redis.URL != "" {
		client, err := redisstore.New(cfg.Redis.URL)
		if err != nil {
			return err
		}
		c.RedisClient = client
		c.Logger.Info().Msg("redis client initialized")
	}

	if cfg.DB != nil && cfg.DB.URL != "" {
		pool, err := db.ConnectToDB(ctx, cfg.DB, c.Logger)
		if err != nil {
			return err
		}
		c.DB = pool
	}

	if cfg.RabbitMQ != nil && cfg.RabbitMQ.BrokerLink != "" {
		conn, err := rabbitmq.NewConnection(cfg.RabbitMQ, c.Logger)
		if err != nil {
			return err
		}
		c.AMQPConn = conn

		if err := rabbitmq.SetupTopology(conn, cfg.RabbitMQ); err != nil {
			return err
		}
		c.Publisher, err = rabbitmq.NewPublisher(conn, cfg.RabbitMQ.ExchangeName, cfg.RabbitMQ.RoutingKey)
		if err != nil {
			return err
		}
	}

	return nil
}

// BuildAggregator wires the diagnostics aggregator from cfg. The CLI's
// one-shot diagnose command uses it without the rest of the container.
func BuildAggregator(cfg *config.Config, prober diagnostics.Prober, logger *zerolog.Logger) *diagnostics.Aggregator {
	return diagnostics.NewAggregator(prober, diagnostics.Options{
		Endpoints:    toEndpoints(cfg.Diagnostics.Endpoints),
		Timeout:      cfg.Diagnostics.Timeout,
		ProbeTimeout: cfg.Diagnostics.ProbeTimeout,
		Thresholds: diagnostics.Thresholds{
			DNSSlowMs:     cfg.Diagnostics.DNSSlowMs,
			ConnectSlowMs: cfg.Diagnostics.ConnectSlowMs,
		},
	}, logger)
}

// NewDiagnosticsProber returns a prober whose requests never reuse a
// connection and whose failures keep the phases they completed.
func NewDiagnosticsProber() *probe.HTTPProber {
	client := httpclient.NewHttpClient(httpclient.Options{UserAgent: userAgent, DisableKeepAlives: true})
	return probe.NewHTTPProber(client).WithFailureTiming()
}

func toEndpoints(in []config.EndpointConfig) []probe.Endpoint {
	out := make([]probe.Endpoint, 0, len(in))
	for _, e := range in {
		mode := probe.Mode(e.Mode)
		if mode == "" {
			mode = probe.ModeFetch
		}
		out = append(out, probe.Endpoint{Name: e.Name, URL: e.URL, Mode: mode})
	}
	return out
}

// Start launches the background workers and, when configured, the first
// monitoring run.
func (c *Container) Start(ctx context.Context) error {
	c.AlertSvc.Start()
	c.Recorder.Start()

	if c.Retention != nil {
		c.Retention.Start()
	}
	if c.Consumer != nil {
		StartConsumer(ctx, c)
	}

	if c.Config.Monitor.Autostart {
		if err := c.Monitor.Start(c.Config.Monitor.Interval); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops producers before consumers so nothing is enqueued into a
// closed component. Safe on a partially built container.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	// 1. Stop the poll cycle
	if c.Monitor != nil {
		c.Monitor.Stop()
	}

	// 2. Stop accepting commands
	if c.Consumer != nil {
		if err := c.Consumer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	// 3. Drain background workers
	if c.AlertSvc != nil {
		c.AlertSvc.Close()
	}
	if c.Recorder != nil {
		c.Recorder.Close()
	}
	// a stopped instance must not look live to readers of the mirror
	if c.RedisClient != nil {
		if err := c.RedisClient.DelStatus(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Retention != nil {
		if err := c.Retention.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}

	// 4. Close infra
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.AMQPConn != nil && !c.AMQPConn.IsClosed() {
		if err := c.AMQPConn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}

	return errors.Join(errs...)
}

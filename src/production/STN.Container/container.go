package container

import (
	"context"
	"fmt"
	"time"

	alerts "gitlab.com/stationzero/zero.temp_server/src/production/STN.Alerts"
	"gitlab.com/stationzero/zero.temp_server/src/production/STN.ApiService/health"
	config "gitlab.com/stationzero/zero.temp_server/src/production/STN.Config"
	logger "gitlab.com/stationzero/zero.temp_server/src/production/STN.Logger"
	messaging "gitlab.com/stationzero/zero.temp_server/src/production/STN.Messaging"
	implementation "gitlab.com/stationzero/zero.temp_server/src/production/STN.Repository/Implementation"
	interfaces "gitlab.com/stationzero/zero.temp_server/src/production/STN.Repository/Interfaces"
	telemetry "gitlab.com/stationzero/zero.temp_server/src/production/STN.Telemetry"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container wires configuration, storage, telemetry and alerting together
// and owns their lifecycle. Nothing in here is a package-level global: every
// handle is constructed once at startup and injected downward.
type Container struct {
	config *config.Config
	logger *logger.Logger

	mongoClient *mongo.Client

	readingRepo    interfaces.ReadingRepository
	subscriberRepo interfaces.SubscriberRepository

	aggregator *telemetry.Aggregator
	dispatcher alerts.Dispatcher

	healthChecker *health.HealthChecker
}

// NewApiContainer loads configuration and builds the full dependency graph
// for the API service. A missing store configuration fails here, before any
// traffic is served. Missing messaging credentials only swap the dispatcher
// for its disabled variant.
func NewApiContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(&cfg.Logging)

	c := &Container{
		config: cfg,
		logger: log,
	}

	if err := c.initStorage(); err != nil {
		return nil, err
	}

	c.aggregator = telemetry.NewAggregator(c.readingRepo, cfg.Telemetry.RollingWindow)

	if cfg.Messaging.Enabled {
		messenger := messaging.NewTwilioMessenger(&cfg.Messaging)
		c.dispatcher = alerts.NewThresholdDispatcher(c.subscriberRepo, messenger, cfg.Alerts.Cooldown, log)
		log.Info("SMS alerting enabled")
	} else {
		c.dispatcher = alerts.NewDisabledDispatcher()
		log.Warn("SMS alerting disabled, /notifications will report service unavailable")
	}

	return c, nil
}

func (c *Container) initStorage() error {
	switch c.config.Storage.Driver {
	case "memory":
		c.readingRepo = implementation.NewMemoryReadingRepository()
		c.subscriberRepo = implementation.NewMemorySubscriberRepository()
		c.logger.Warn("using volatile in-memory storage")
		return nil
	case "mongo":
		client, err := health.ConnectMongoWithTimeout(c.config.Storage.MongoURI, 20*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to store: %w", err)
		}
		db := client.Database(c.config.Storage.DBName)
		c.mongoClient = client
		c.readingRepo = implementation.NewMongoReadingRepository(db.Collection(c.config.Storage.ReadingsColl))
		c.subscriberRepo = implementation.NewMongoSubscriberRepository(db.Collection(c.config.Storage.SubscribersColl))
		c.healthChecker = health.NewHealthChecker(client)
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", c.config.Storage.Driver)
	}
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// ReadingRepo returns the reading store
func (c *Container) ReadingRepo() interfaces.ReadingRepository {
	return c.readingRepo
}

// SubscriberRepo returns the notification registry
func (c *Container) SubscriberRepo() interfaces.SubscriberRepository {
	return c.subscriberRepo
}

// Aggregator returns the statistics aggregator
func (c *Container) Aggregator() *telemetry.Aggregator {
	return c.aggregator
}

// Dispatcher returns the alert dispatcher (possibly the disabled variant)
func (c *Container) Dispatcher() alerts.Dispatcher {
	return c.dispatcher
}

// HealthCheck reports readiness of the backing store. The memory driver has
// nothing to probe and is always ready.
func (c *Container) HealthCheck(ctx context.Context) map[string]interface{} {
	if c.healthChecker == nil {
		return map[string]interface{}{"status": "ok", "storage": "memory"}
	}
	return c.healthChecker.GetHealthStatus(ctx)
}

// Shutdown gracefully releases all container-owned resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	if c.mongoClient != nil {
		if err := c.mongoClient.Disconnect(ctx); err != nil {
			c.logger.ErrorWithError(err, "Error closing store connection")
		}
	}

	c.logger.Info("Container shutdown complete")
	return nil
}

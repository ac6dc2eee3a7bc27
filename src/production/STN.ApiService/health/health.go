package health

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongoWithTimeout creates a MongoDB connection and verifies it with
// a ping before returning.
func ConnectMongoWithTimeout(uri string, timeout time.Duration) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongodb uri is empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)

	// TLS configuration for Atlas
	clientOptions.SetTLSConfig(&tls.Config{
		MinVersion: tls.VersionTLS12,
	})

	clientOptions.SetServerSelectionTimeout(30 * time.Second)
	clientOptions.SetConnectTimeout(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("unable to ping MongoDB: %w", err)
	}

	return client, nil
}

// HealthChecker provides health check functionality
type HealthChecker struct {
	client *mongo.Client
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(client *mongo.Client) *HealthChecker {
	return &HealthChecker{client: client}
}

// PingMongo checks if the MongoDB connection is healthy
func (h *HealthChecker) PingMongo(ctx context.Context) error {
	if h.client == nil {
		return fmt.Errorf("mongo client is nil")
	}
	return h.client.Ping(ctx, readpref.Primary())
}

// GetHealthStatus returns the current health status
func (h *HealthChecker) GetHealthStatus(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    make(map[string]interface{}),
	}

	mongoStatus := "ok"
	if err := h.PingMongo(ctx); err != nil {
		mongoStatus = "error"
		status["checks"].(map[string]interface{})["mongo"] = map[string]interface{}{
			"status": mongoStatus,
			"error":  err.Error(),
		}
	} else {
		status["checks"].(map[string]interface{})["mongo"] = map[string]interface{}{
			"status": mongoStatus,
		}
	}

	overallStatus := "ok"
	if mongoStatus != "ok" {
		overallStatus = "degraded"
	}
	status["status"] = overallStatus

	return status
}

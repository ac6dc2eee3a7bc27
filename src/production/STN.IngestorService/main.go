package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	config "gitlab.com/stationzero/zero.temp_server/src/production/STN.Config"
	"gitlab.com/stationzero/zero.temp_server/src/production/STN.IngestorService/client"
	"gitlab.com/stationzero/zero.temp_server/src/production/STN.IngestorService/ingestor"
	logger "gitlab.com/stationzero/zero.temp_server/src/production/STN.Logger"
)

func main() {
	cfg, err := config.LoadIngestorConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load ingestor configuration: %v", err))
	}

	log := logger.NewLogger(&cfg.Logging)
	log.Info("Starting MQTT ingestor bridge")

	apiClient := client.NewAPIClient(cfg.ApiServiceURL)

	ing := ingestor.New(cfg.MQTT, apiClient, log)
	if err := ing.Start(context.Background()); err != nil {
		log.FatalWithError(err, "Failed to start MQTT ingestor")
	}
	defer ing.Stop()

	log.Info("MQTT ingestor running... press Ctrl+C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("Shutting down...")
}

package ingestor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/stationzero/zero.temp_server/src/production/STN.Config"
	"gitlab.com/stationzero/zero.temp_server/src/production/STN.IngestorService/client"
	logger "gitlab.com/stationzero/zero.temp_server/src/production/STN.Logger"
)

// Ingestor bridges the sensor node's MQTT publishes into the API service.
// It lets a node that only speaks MQTT feed the same ingestion path as a
// node POSTing /temp directly.
type Ingestor struct {
	cfg    config.MQTTConfig
	api    *client.APIClient
	logger *logger.Logger
	mqtt   mqtt.Client
}

// sensorMessage is the payload published on station/<id>/temperature.
type sensorMessage struct {
	Temp   *float64 `json:"temp"`
	Status string   `json:"status"`
}

// New creates an ingestor bridge.
func New(cfg config.MQTTConfig, api *client.APIClient, log *logger.Logger) *Ingestor {
	return &Ingestor{
		cfg:    cfg,
		api:    api,
		logger: log.WithComponent("mqtt-ingestor"),
	}
}

// Start connects to the broker and subscribes. Reconnects are handled by the
// client; the subscription is re-established on every connect.
func (i *Ingestor) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(i.brokerURL()).
		SetClientID(i.cfg.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(i.cfg.KeepAlive).
		SetPingTimeout(i.cfg.PingTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(false)

	if i.cfg.BrokerUser != "" {
		opts.SetUsername(i.cfg.BrokerUser)
		opts.SetPassword(i.cfg.BrokerPass)
	}

	if i.cfg.UseTLS {
		tlsCfg, err := i.tlsConfig(i.cfg.CACertPath)
		if err != nil {
			return err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		i.logger.ErrorWithError(err, "mqtt connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		i.logger.Info("mqtt connected, subscribing to " + i.cfg.Topic)
		if token := c.Subscribe(i.cfg.Topic, 1, i.onMessage(ctx)); token.Wait() && token.Error() != nil {
			i.logger.ErrorWithError(token.Error(), "subscribe failed")
		}
	}

	i.mqtt = mqtt.NewClient(opts)
	if tk := i.mqtt.Connect(); tk.Wait() && tk.Error() != nil {
		return tk.Error()
	}
	return nil
}

// Stop disconnects from the broker.
func (i *Ingestor) Stop() {
	if i.mqtt != nil && i.mqtt.IsConnected() {
		i.mqtt.Disconnect(500)
	}
}

func (i *Ingestor) onMessage(ctx context.Context) mqtt.MessageHandler {
	return func(_ mqtt.Client, m mqtt.Message) {
		var msg sensorMessage
		if err := json.Unmarshal(m.Payload(), &msg); err != nil {
			i.logger.WithField("topic", m.Topic()).ErrorWithError(err, "unreadable sensor payload, dropping")
			return
		}

		postCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := i.api.PostReading(postCtx, msg.Temp, msg.Status); err != nil {
			i.logger.WithField("topic", m.Topic()).ErrorWithError(err, "failed to forward reading")
		}
	}
}

func (i *Ingestor) brokerURL() string {
	scheme := "tcp"
	if i.cfg.UseTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, i.cfg.BrokerHost, i.cfg.BrokerPort)
}

func (i *Ingestor) tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file")
	}
	cfg.RootCAs = cp
	return cfg, nil
}

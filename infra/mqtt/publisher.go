// Package mqtt publishes scheduling run summaries to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/kilianp07/spms/core/metrics"
	"github.com/kilianp07/spms/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// RunSummary is the JSON payload published for each run.
type RunSummary struct {
	RunID       string             `json:"run_id"`
	Algorithm   string             `json:"algorithm"`
	Received    int                `json:"received"`
	Accepted    int                `json:"accepted"`
	Rejected    int                `json:"rejected"`
	Utilization float64            `json:"utilization"`
	PerCategory map[string]float64 `json:"per_category,omitempty"`
	Steps       int                `json:"steps,omitempty"`
	DurationMS  float64            `json:"duration_ms"`
	Timestamp   int64              `json:"timestamp"`
}

func summaryOf(ev coremetrics.RunEvent) RunSummary {
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	return RunSummary{
		RunID:       ev.RunID,
		Algorithm:   ev.Algorithm,
		Received:    ev.Received,
		Accepted:    ev.Accepted,
		Rejected:    ev.Rejected,
		Utilization: ev.Utilization,
		PerCategory: ev.PerCategory,
		Steps:       ev.Steps,
		DurationMS:  float64(ev.Duration.Microseconds()) / 1000,
		Timestamp:   ts.UnixMilli(),
	}
}

// Publisher sends run summaries to <topic>/<algorithm>. It implements
// coremetrics.MetricsSink so it can sit next to the other sinks.
type Publisher struct {
	mu         sync.Mutex
	cli        pahoClient
	topic      string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
}

// NewPublisher connects to the broker.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Publisher{
		cli:        c,
		topic:      strings.TrimSuffix(cfg.Topic, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// Topic returns the topic a run of the given algorithm is published on.
func (p *Publisher) Topic(algorithm string) string {
	return p.topic + "/" + strings.ToLower(algorithm)
}

// RecordRun publishes the run summary, retrying with exponential backoff.
func (p *Publisher) RecordRun(ev coremetrics.RunEvent) error {
	payload, err := json.Marshal(summaryOf(ev))
	if err != nil {
		return err
	}
	topic := p.Topic(ev.Algorithm)
	p.mu.Lock()
	defer p.mu.Unlock()
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published run %s to %s", ev.RunID, topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("publish run %s: %w", ev.RunID, publishErr)
}

// Disconnect gracefully closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}

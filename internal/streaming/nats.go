package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"phonetracer/internal/config"
	"phonetracer/pkg/logger"
)

const allPhoneSubjects = "phone.>"

// NATSPublisher handles publishing events to NATS JetStream
type NATSPublisher struct {
	conn     *nats.Conn
	js       jetstream.JetStream
	subjects map[EventType]string
	logger   *logger.Logger

	mu        sync.RWMutex
	connected bool
}

// NewNATSPublisher creates a new NATS publisher
func NewNATSPublisher(ctx context.Context, cfg config.NATSConfig, log *logger.Logger) (*NATSPublisher, error) {
	log = log.WithComponent("nats")

	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.StreamName == "" {
		cfg.StreamName = "PHONETRACER_EVENTS"
	}

	log.Info().Str("url", cfg.URL).Str("stream", cfg.StreamName).Msg("connecting to NATS")

	conn, err := nats.Connect(cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	streamCfg := jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "phonetracer lookup, report and analysis events",
		Subjects:    []string{allPhoneSubjects},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      24 * time.Hour,
		MaxMsgs:     100000,
		MaxBytes:    100 * 1024 * 1024,
		Discard:     jetstream.DiscardOld,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	}

	stream, err := js.CreateOrUpdateStream(ctx, streamCfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	log.Info().Str("stream", stream.CachedInfo().Config.Name).Msg("NATS stream ready")

	return &NATSPublisher{
		conn:      conn,
		js:        js,
		subjects:  subjectMap(cfg.Subjects),
		logger:    log,
		connected: true,
	}, nil
}

// subjectMap resolves the configured subject of each event type
func subjectMap(cfg config.NATSSubjectsConfig) map[EventType]string {
	m := map[EventType]string{
		EventTypeTraced:   string(EventTypeTraced),
		EventTypeReported: string(EventTypeReported),
		EventTypeAnalyzed: string(EventTypeAnalyzed),
	}
	if cfg.Traced != "" {
		m[EventTypeTraced] = cfg.Traced
	}
	if cfg.Reported != "" {
		m[EventTypeReported] = cfg.Reported
	}
	if cfg.Analyzed != "" {
		m[EventTypeAnalyzed] = cfg.Analyzed
	}
	return m
}

// Close closes the NATS connection
func (p *NATSPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		p.conn.Close()
		p.connected = false
	}
}

// IsConnected returns whether NATS is connected
func (p *NATSPublisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected && p.conn.IsConnected()
}

// Publish publishes a phone event to its subject
func (p *NATSPublisher) Publish(ctx context.Context, event *PhoneEvent) error {
	if !p.IsConnected() {
		return fmt.Errorf("NATS not connected")
	}

	subject, ok := p.subjects[event.Type]
	if !ok {
		return fmt.Errorf("no subject for event type %q", event.Type)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.WithNumber(event.Number).Debug().
		Str("subject", subject).
		Msg("published phone event")

	return nil
}

package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/newkenyan/property-search/internal/search/usecase"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("property-search/nats-publisher")

// SubjectAuditCompleted carries the summary of a finished coverage audit.
// Downstream consumers (content team tooling, alerting) subscribe to it to
// learn which pages went dead.
const SubjectAuditCompleted = "property.audit.completed"

// Publisher publishes service events to NATS.
type Publisher struct {
	conn   *nats.Conn
	logger *logger.Logger
}

// NewPublisher connects to NATS with reconnect handlers wired to the logger.
func NewPublisher(url string, log *logger.Logger, appName string) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name(fmt.Sprintf("%s NATS Publisher", appName)),
		nats.Timeout(10 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Info("NATS Publisher connected", zap.String("url", conn.ConnectedUrl()))

	return &Publisher{
		conn:   conn,
		logger: log.Named("NATSPublisher"),
	}, nil
}

// PublishAuditCompleted publishes the deficiency report summary. The full
// deficiency list can be large, so only counts and the run identity go on
// the wire; the report file carries the detail.
func (p *Publisher) PublishAuditCompleted(ctx context.Context, report *usecase.DeficiencyReport) error {
	summary := map[string]interface{}{
		"run_id":           report.RunID,
		"started_at":       report.StartedAt.Format(time.RFC3339),
		"finished_at":      report.FinishedAt.Format(time.RFC3339),
		"total_pairs":      report.TotalPairs,
		"deficient_count":  report.DeficientCount,
		"coverage_percent": report.CoveragePercent,
		"by_location_type": report.ByLocationType,
	}
	return p.publish(ctx, SubjectAuditCompleted, summary)
}

func (p *Publisher) publish(ctx context.Context, subject string, data interface{}) error {
	_, span := tracer.Start(ctx, fmt.Sprintf("NATS.Publish.%s", subject))
	defer span.End()

	jsonData, err := json.Marshal(data)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal data for subject %s: %w", subject, err)
	}

	if err := p.conn.Publish(subject, jsonData); err != nil {
		p.logger.Error("Failed to publish message", zap.String("subject", subject), zap.Error(err))
		span.RecordError(err)
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	p.logger.Debug("Message published", zap.String("subject", subject), zap.Int("bytes", len(jsonData)))
	return nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Drain(); err != nil {
			p.logger.Error("Failed to drain NATS connection", zap.Error(err))
		}
		p.conn.Close()
	}
}

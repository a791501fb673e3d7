package worker

import (
	"context"

	"member-lookup/internal/broker"
	"member-lookup/internal/models"
	"member-lookup/internal/util"

	"go.uber.org/zap"
)

// AuditWorker drains lookup audit events into the audit log
type AuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	auditLogger  *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer) *AuditWorker {
	w := &AuditWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		auditLogger:  util.AuditLogger(),
	}
	w.eventHandler.OnMemberSearched(w.recordSearch)
	return w
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	util.GetLogger().Info("Starting audit worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	util.GetLogger().Info("Stopping audit worker")
	return w.consumer.Close()
}

func (w *AuditWorker) recordSearch(_ context.Context, event *models.MemberSearchedEvent) error {
	w.auditLogger.Info("Member searched",
		zap.String("event_id", event.EventID),
		zap.Time("searched_at", event.Timestamp),
		zap.Strings("criteria", event.Criteria),
		zap.String("customer_ref", event.CustomerRef),
		zap.Int("candidates", event.CandidateCount),
		zap.Bool("migrated_only", event.MigratedOnly),
		zap.String("client_ip", event.ClientIP))
	util.AuditEventsConsumed.Inc()
	return nil
}

package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"member-lookup/internal/broker"
	"member-lookup/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedWorker() (*AuditWorker, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	w := &AuditWorker{
		eventHandler: broker.NewEventHandler(),
		auditLogger:  zap.New(core),
	}
	w.eventHandler.OnMemberSearched(w.recordSearch)
	return w, logs
}

func TestAuditWorkerRecordsSearch(t *testing.T) {
	w, logs := newObservedWorker()

	value, err := json.Marshal(&models.MemberSearchedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-9",
			EventType: models.EventTypeMemberSearched,
			Timestamp: time.Now(),
		},
		Criteria:     []string{"mobile"},
		MigratedOnly: true,
		ClientIP:     "10.1.2.3",
	})
	require.NoError(t, err)

	require.NoError(t, w.eventHandler.HandleMessage(context.Background(), kafka.Message{Value: value}))

	entries := logs.FilterMessage("Member searched").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "evt-9", fields["event_id"])
	assert.Equal(t, true, fields["migrated_only"])
	assert.Equal(t, "10.1.2.3", fields["client_ip"])
}

func TestAuditWorkerIgnoresOtherEvents(t *testing.T) {
	w, logs := newObservedWorker()

	msg := kafka.Message{Value: []byte(`{"event_id":"x","event_type":"ORDER_CREATED"}`)}

	require.NoError(t, w.eventHandler.HandleMessage(context.Background(), msg))
	assert.Zero(t, logs.FilterMessage("Member searched").Len())
}

package services

import (
	"context"

	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/observability"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
	"github.com/pusdatin/satudata-backend/internal/realtime"
	"github.com/pusdatin/satudata-backend/internal/realtime/bus"
)

// DatasetEventEmitter announces committed dataset changes. Emit never fails the
// caller; delivery is best effort.
type DatasetEventEmitter interface {
	Emit(ctx context.Context, msg realtime.Message)
}

type HubEmitter struct {
	Hub     *realtime.Hub
	Metrics *observability.Metrics
}

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.Message) {
	e.Hub.Broadcast(msg)
	e.Metrics.IncRealtimeEvent(string(msg.Event), "published")
}

type RedisEmitter struct {
	Bus     bus.Bus
	Log     *logger.Logger
	Metrics *observability.Metrics
}

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.Message) {
	if err := e.Bus.Publish(context.WithoutCancel(ctx), msg); err != nil {
		e.Metrics.IncRealtimeEvent(string(msg.Event), "failed")
		if e.Log != nil {
			e.Log.Warn("publish dataset event", "event", msg.Event, "channel", msg.Channel, "error", err)
		}
		return
	}
	e.Metrics.IncRealtimeEvent(string(msg.Event), "published")
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, realtime.Message) {}

func emitterOrNoop(e DatasetEventEmitter) DatasetEventEmitter {
	if e == nil {
		return noopEmitter{}
	}
	return e
}

func statusChangedMessage(res domainagg.TransitionResult, actorID string) realtime.Message {
	return realtime.Message{
		Channel: realtime.UnitChannel(res.BidangID),
		Event:   realtime.EventDatasetStatusChanged,
		Data: map[string]any{
			"dataset_id":  res.DatasetID,
			"operation":   res.Operation,
			"from_status": res.FromStatus,
			"status":      res.ToStatus,
			"review_id":   res.ReviewID,
			"actor_id":    actorID,
			"at":          res.At,
		},
	}
}

func fileIngestedMessage(res domainagg.IngestResult, actorID string) realtime.Message {
	data := map[string]any{
		"dataset_id": res.DatasetID,
		"kind":       res.Kind,
		"inserted":   res.Records.Inserted,
		"deleted":    res.Records.Deleted,
		"actor_id":   actorID,
	}
	if res.File != nil {
		data["file_id"] = res.File.ID
		data["version"] = res.File.Version
	}
	return realtime.Message{
		Channel: realtime.UnitChannel(res.BidangID),
		Event:   realtime.EventDatasetFileIngested,
		Data:    data,
	}
}

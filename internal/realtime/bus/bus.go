package bus

import (
	"context"

	"github.com/pusdatin/satudata-backend/internal/realtime"
)

// Bus carries dataset events between API replicas.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}

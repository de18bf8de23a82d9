package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

type Client struct {
	ID       uuid.UUID
	ActorID  uuid.UUID
	Channels map[string]bool
	Outbound chan Message
	Logger   *logger.Logger

	done      chan struct{}
	closeOnce sync.Once
}

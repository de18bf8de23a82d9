package realtime

import (
	"github.com/google/uuid"

	"github.com/pusdatin/satudata-backend/internal/domain/auth"
)

type Event string

const (
	EventDatasetStatusChanged Event = "DatasetStatusChanged"
	EventDatasetFileIngested  Event = "DatasetFileIngested"
)

// AllUnitsChannel receives every unit's events.
const AllUnitsChannel = "bidang:*"

const unitChannelPrefix = "bidang:"

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

func UnitChannel(bidangID uuid.UUID) string {
	return unitChannelPrefix + bidangID.String()
}

// ChannelsFor lists the channels an actor may listen on.
func ChannelsFor(actor auth.Actor) []string {
	if actor.Role == auth.RolePusdatin {
		return []string{AllUnitsChannel}
	}
	if actor.BidangID == uuid.Nil {
		return nil
	}
	return []string{UnitChannel(actor.BidangID)}
}

func isUnitChannel(ch string) bool {
	return len(ch) > len(unitChannelPrefix) && ch[:len(unitChannelPrefix)] == unitChannelPrefix && ch != AllUnitsChannel
}

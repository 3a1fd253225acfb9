package events

import (
	"shellyboard/internal/core/domain"
)

// EventStream model. The board actor publishes after every state
// transition (load start, load success, load failure, sort change); the
// MQTT adapter and any other consumer subscribe.

type BoardUpdatedEvent struct {
	Rows           []domain.Row
	SortKey        string
	SortDescending bool
}

type LoadStatusEvent struct {
	Loading bool
	Error   string
}

type CommandResultEvent struct {
	Command  string
	EntityId string
	Error    error
}

const (
	COMMAND_UPDATE_INSTALL = "update_install"
	COMMAND_REBOOT_PRESS   = "reboot_press"
)

package service

import (
	"shellyboard/internal/core/domain"
)

func stateMap(states map[string]string) domain.StateFunc {
	return func(entityId string) *domain.StateSnapshot {
		s, ok := states[entityId]
		if !ok {
			return nil
		}
		return &domain.StateSnapshot{State: s}
	}
}

func noStates(string) *domain.StateSnapshot {
	return nil
}

func entity(entityId, deviceId string) domain.EntityRecord {
	return domain.EntityRecord{
		EntityId: entityId,
		DeviceId: deviceId,
		Platform: domain.PlatformShelly,
	}
}

func diagnosticEntity(entityId, deviceId string) domain.EntityRecord {
	e := entity(entityId, deviceId)
	e.EntityCategory = "diagnostic"
	return e
}

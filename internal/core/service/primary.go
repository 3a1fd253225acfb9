package service

import (
	"regexp"

	"shellyboard/internal/core/domain"
)

// Priority order reflects what a user is most likely to toggle or inspect:
// controllable outputs before passive sensors.
var primaryDomainOrder = []string{"light", "switch", "cover", "sensor", "binary_sensor"}

var (
	trailingChannelRe = regexp.MustCompile(`_\d+$`)
	namedChannelRe    = regexp.MustCompile(`channel_\d+`)
)

// hasChannelSuffix detects identifiers that name one relay out of a
// multi-channel device (switch.foo_2, switch.foo_channel_1).
func hasChannelSuffix(entityId string) bool {
	return trailingChannelRe.MatchString(entityId) || namedChannelRe.MatchString(entityId)
}

// PrimaryEntity picks the entity that best represents a device for a "show
// details" affordance. Diagnostic/config entities are never primary, but if
// nothing else exists the raw list is used rather than returning no entity.
func PrimaryEntity(entities []domain.EntityRecord, stateOf domain.StateFunc) *domain.EntityRecord {
	if len(entities) == 0 {
		return nil
	}

	filtered := make([]domain.EntityRecord, 0, len(entities))
	for _, e := range entities {
		if !e.IsDiagnostic() {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return &entities[0]
	}

	isLive := func(e domain.EntityRecord) bool {
		s := stateOf(e.EntityId)
		return s != nil && s.Live()
	}

	for _, dom := range primaryDomainOrder {
		var ofDomain []domain.EntityRecord
		for _, e := range filtered {
			if e.Domain() == dom {
				ofDomain = append(ofDomain, e)
			}
		}
		if len(ofDomain) == 0 {
			continue
		}

		var live []domain.EntityRecord
		for _, e := range ofDomain {
			if isLive(e) {
				live = append(live, e)
			}
		}
		if len(live) == 0 {
			// state availability is preferred but not required
			return &ofDomain[0]
		}
		for i := range live {
			if !hasChannelSuffix(live[i].EntityId) {
				return &live[i]
			}
		}
		return &live[0]
	}

	for i := range filtered {
		if isLive(filtered[i]) {
			return &filtered[i]
		}
	}
	return &filtered[0]
}

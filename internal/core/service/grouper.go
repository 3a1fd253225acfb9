package service

import (
	"shellyboard/internal/core/domain"
)

// GroupByDevice indexes entities by owning device in one pass. Entities
// without a device id are dropped, never assigned to an arbitrary device.
// Insertion order within each group is preserved because downstream
// resolvers are first-match-wins.
func GroupByDevice(entities []domain.EntityRecord) map[string][]domain.EntityRecord {
	groups := make(map[string][]domain.EntityRecord)
	for _, e := range entities {
		if e.DeviceId == "" {
			continue
		}
		groups[e.DeviceId] = append(groups[e.DeviceId], e)
	}
	return groups
}

package service

import (
	"strings"

	"shellyboard/internal/core/domain"
)

// FilterFamily keeps the devices that belong to the Shelly product family:
// either some grouped entity was provided by the shelly integration, or the
// registry manufacturer matches the vendor name. Devices failing both tests
// are silently excluded.
func FilterFamily(devices []domain.DeviceRecord, groups map[string][]domain.EntityRecord) []domain.DeviceRecord {
	var out []domain.DeviceRecord
	for _, d := range devices {
		if IsFamilyDevice(d, groups[d.Id]) {
			out = append(out, d)
		}
	}
	return out
}

func IsFamilyDevice(device domain.DeviceRecord, entities []domain.EntityRecord) bool {
	for _, e := range entities {
		if e.Platform == domain.PlatformShelly {
			return true
		}
	}
	return strings.EqualFold(device.Manufacturer, domain.VendorShelly)
}

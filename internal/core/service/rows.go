package service

import (
	"shellyboard/internal/core/domain"
)

// BuildRows runs the full pipeline: group, filter to the product family,
// resolve fields per device and deduplicate. Emission order equals registry
// traversal order; sorting is a separate concern.
func BuildRows(devices []domain.DeviceRecord, entities []domain.EntityRecord, stateOf domain.StateFunc) []domain.Row {
	groups := GroupByDevice(entities)
	family := FilterFamily(devices, groups)

	visited := make(map[string]struct{})
	rows := make([]domain.Row, 0, len(family))

	for _, device := range family {
		deviceKey := "id:" + device.Id
		if _, seen := visited[deviceKey]; seen {
			continue
		}

		group := groups[device.Id]
		row := buildRow(device, group, stateOf)

		// Two registry records resolving to the same address are the same
		// physical unit registered twice; the first one wins.
		if row.IP != "" {
			ipKey := "ip:" + row.IP
			if _, seen := visited[ipKey]; seen {
				continue
			}
			visited[ipKey] = struct{}{}
		}
		visited[deviceKey] = struct{}{}
		rows = append(rows, row)
	}
	return rows
}

func buildRow(device domain.DeviceRecord, entities []domain.EntityRecord, stateOf domain.StateFunc) domain.Row {
	row := domain.Row{
		DeviceId: device.Id,
		Name:     device.DisplayName(),
		Model:    device.Model,
		IP:       ResolveIP(device, entities, stateOf),
		MAC:      ResolveMAC(device),
		Cloud:    ResolveCloud(entities, stateOf),
	}

	if primary := PrimaryEntity(entities, stateOf); primary != nil {
		row.PrimaryEntityId = primary.EntityId
	}

	row.Temperature = ResolveTemperature(entities, stateOf)
	row.RSSI = ResolveRSSI(entities, stateOf)
	row.Signal = SignalBandFor(row.RSSI)
	row.Uptime = ResolveUptime(entities, stateOf)

	fw := ResolveFirmware(entities, stateOf)
	row.FirmwareUpdateEntityId = fw.EntityId
	row.FirmwareUpToDate = fw.UpToDate
	row.FirmwareUpdateAvailable = fw.UpdateAvailable
	row.InstalledVersion = fw.InstalledVersion
	row.LatestVersion = fw.LatestVersion

	row.RebootEntityId = ResolveReboot(entities)

	if host := hostFromConfigurationURL(device.ConfigurationURL); host != "" {
		row.ConfigurationURL = device.ConfigurationURL
	} else if row.IP != "" {
		row.ConfigurationURL = "http://" + row.IP
	}
	return row
}

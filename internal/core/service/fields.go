package service

import (
	"strconv"

	"shellyboard/internal/core/domain"
)

// ResolveMAC returns the first "mac" connection pair of the registry
// record. The upstream registry is trusted, so the value is not validated.
func ResolveMAC(device domain.DeviceRecord) string {
	for _, c := range device.Connections {
		if c.Kind == domain.ConnectionKindMAC {
			return c.Value
		}
	}
	return ""
}

// Cloud connectivity was reported as a binary_sensor by recent firmware and
// as a switch by older integration versions; both are accepted.
var cloudRules = []entityRule{
	suffixRule("binary_sensor", "_cloud"),
	suffixRule("switch", "_cloud"),
}

func ResolveCloud(entities []domain.EntityRecord, stateOf domain.StateFunc) domain.TriState {
	e := firstMatch(entities, cloudRules, nil)
	if e == nil {
		return domain.TriUnknown
	}
	s := stateOf(e.EntityId)
	if s == nil {
		return domain.TriUnknown
	}
	return domain.TriFromBool(s.State == domain.StateOn)
}

var (
	temperatureRules = []entityRule{suffixRule("sensor", "_device_temperature")}
	rssiRules        = []entityRule{suffixRule("sensor", "_rssi")}
	uptimeRules      = []entityRule{suffixRule("sensor", "_uptime")}
	firmwareRules    = []entityRule{suffixRule("update", "_firmware_update")}
	rebootRules      = []entityRule{suffixRule("button", "_reboot")}
)

// resolveDisplayValue reads the first live state matched by rules and
// returns it as an opaque display string, or "" when absent.
func resolveDisplayValue(entities []domain.EntityRecord, rules []entityRule, stateOf domain.StateFunc) string {
	e := firstMatch(entities, rules, func(e domain.EntityRecord) bool {
		s := stateOf(e.EntityId)
		return s != nil && s.Live()
	})
	if e == nil {
		return ""
	}
	return stateOf(e.EntityId).State
}

func ResolveTemperature(entities []domain.EntityRecord, stateOf domain.StateFunc) string {
	return resolveDisplayValue(entities, temperatureRules, stateOf)
}

func ResolveRSSI(entities []domain.EntityRecord, stateOf domain.StateFunc) string {
	return resolveDisplayValue(entities, rssiRules, stateOf)
}

func ResolveUptime(entities []domain.EntityRecord, stateOf domain.StateFunc) string {
	return resolveDisplayValue(entities, uptimeRules, stateOf)
}

// SignalBandFor bands a raw RSSI reading into a qualitative tier. Boundary
// values belong to the better tier.
func SignalBandFor(rssi string) domain.SignalBand {
	if rssi == "" {
		return ""
	}
	v, err := strconv.ParseFloat(rssi, 64)
	if err != nil {
		return ""
	}
	switch {
	case v >= -50:
		return domain.SignalExcellent
	case v >= -60:
		return domain.SignalGood
	case v >= -70:
		return domain.SignalFair
	default:
		return domain.SignalPoor
	}
}

type FirmwareStatus struct {
	EntityId         string
	UpToDate         domain.TriState
	UpdateAvailable  bool
	InstalledVersion string
	LatestVersion    string
}

// ResolveFirmware reads the update entity: "on" means an update is
// pending, "off" means current. Without a readable state both tri-states
// stay unknown and no update is offered.
func ResolveFirmware(entities []domain.EntityRecord, stateOf domain.StateFunc) FirmwareStatus {
	e := firstMatch(entities, firmwareRules, nil)
	if e == nil {
		return FirmwareStatus{UpToDate: domain.TriUnknown}
	}
	status := FirmwareStatus{
		EntityId: e.EntityId,
		UpToDate: domain.TriUnknown,
	}
	s := stateOf(e.EntityId)
	if s == nil || !s.Live() {
		return status
	}
	switch s.State {
	case domain.StateOn:
		status.UpdateAvailable = true
		status.UpToDate = domain.TriFalse
	case domain.StateOff:
		status.UpToDate = domain.TriTrue
	}
	status.InstalledVersion = s.StringAttribute("installed_version")
	status.LatestVersion = s.StringAttribute("latest_version")
	return status
}

// ResolveReboot only exposes the identifier; the command dispatcher presses
// the button, no state is ever read.
func ResolveReboot(entities []domain.EntityRecord) string {
	e := firstMatch(entities, rebootRules, nil)
	if e == nil {
		return ""
	}
	return e.EntityId
}

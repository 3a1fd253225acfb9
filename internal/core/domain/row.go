package domain

// TriState keeps "unknown" distinguishable from "off" in both logic and
// rendering. A nullable bool would conflate the two.
type TriState int

const (
	TriUnknown TriState = iota
	TriFalse
	TriTrue
)

func TriFromBool(b bool) TriState {
	if b {
		return TriTrue
	}
	return TriFalse
}

func (t TriState) String() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	}
	return "unknown"
}

func (t TriState) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// SignalBand is the qualitative tier a raw RSSI reading is banded into at
// render time.
type SignalBand string

const (
	SignalExcellent SignalBand = "excellent"
	SignalGood      SignalBand = "good"
	SignalFair      SignalBand = "fair"
	SignalPoor      SignalBand = "poor"
)

// Row is one board line per physical device. Rows are rebuilt wholesale on
// every load and never mutated incrementally.
type Row struct {
	DeviceId                string     `json:"device_id"`
	PrimaryEntityId         string     `json:"primary_entity_id,omitempty"`
	Name                    string     `json:"name"`
	Model                   string     `json:"model"`
	IP                      string     `json:"ip"`
	MAC                     string     `json:"mac"`
	Cloud                   TriState   `json:"cloud"`
	Temperature             string     `json:"temperature,omitempty"`
	RSSI                    string     `json:"rssi,omitempty"`
	Signal                  SignalBand `json:"signal,omitempty"`
	Uptime                  string     `json:"uptime,omitempty"`
	FirmwareUpdateEntityId  string     `json:"firmware_update_entity_id,omitempty"`
	FirmwareUpToDate        TriState   `json:"firmware_up_to_date"`
	FirmwareUpdateAvailable bool       `json:"firmware_update_available"`
	InstalledVersion        string     `json:"installed_version,omitempty"`
	LatestVersion           string     `json:"latest_version,omitempty"`
	RebootEntityId          string     `json:"reboot_entity_id,omitempty"`
	ConfigurationURL        string     `json:"configuration_url,omitempty"`
}

package ha

import (
	"encoding/json"

	"shellyboard/internal/core/domain"
)

// WebSocket API frame types.
const (
	messageTypeAuthRequired = "auth_required"
	messageTypeAuth         = "auth"
	messageTypeAuthOK       = "auth_ok"
	messageTypeAuthInvalid  = "auth_invalid"
	messageTypeResult       = "result"

	commandDeviceRegistryList = "config/device_registry/list"
	commandEntityRegistryList = "config/entity_registry/list"
	commandGetStates          = "get_states"
	commandCallService        = "call_service"
)

type serverFrame struct {
	Id        int64           `json:"id"`
	Type      string          `json:"type"`
	Success   bool            `json:"success"`
	Result    json.RawMessage `json:"result"`
	Error     *resultError    `json:"error"`
	Message   string          `json:"message"`
	HAVersion string          `json:"ha_version"`
}

type resultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type authFrame struct {
	Type        string `json:"type"`
	AccessToken string `json:"access_token"`
}

type commandFrame struct {
	Id   int64  `json:"id"`
	Type string `json:"type"`
}

type callServiceFrame struct {
	Id      int64         `json:"id"`
	Type    string        `json:"type"`
	Domain  string        `json:"domain"`
	Service string        `json:"service"`
	Target  serviceTarget `json:"target"`
}

type serviceTarget struct {
	EntityId string `json:"entity_id"`
}

// Registry wire records. Nullable registry fields unmarshal to their zero
// values, which is exactly the "absent" form the engine expects.

type wireDevice struct {
	Id               string     `json:"id"`
	Name             string     `json:"name"`
	NameByUser       string     `json:"name_by_user"`
	Model            string     `json:"model"`
	Manufacturer     string     `json:"manufacturer"`
	ConfigurationURL string     `json:"configuration_url"`
	Connections      [][]string `json:"connections"`
}

func (w wireDevice) toDomain() domain.DeviceRecord {
	d := domain.DeviceRecord{
		Id:               w.Id,
		Name:             w.Name,
		NameByUser:       w.NameByUser,
		Model:            w.Model,
		Manufacturer:     w.Manufacturer,
		ConfigurationURL: w.ConfigurationURL,
	}
	for _, pair := range w.Connections {
		if len(pair) == 2 {
			d.Connections = append(d.Connections, domain.Connection{Kind: pair[0], Value: pair[1]})
		}
	}
	return d
}

type wireEntity struct {
	EntityId       string `json:"entity_id"`
	DeviceId       string `json:"device_id"`
	Platform       string `json:"platform"`
	EntityCategory string `json:"entity_category"`
}

func (w wireEntity) toDomain() domain.EntityRecord {
	return domain.EntityRecord{
		EntityId:       w.EntityId,
		DeviceId:       w.DeviceId,
		Platform:       w.Platform,
		EntityCategory: w.EntityCategory,
	}
}

type wireState struct {
	EntityId   string         `json:"entity_id"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

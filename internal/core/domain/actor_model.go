package domain

const (
	ACTOR_ID_MASTER = "master"
	ACTOR_ID_HA     = "homeassistant"
	ACTOR_ID_BOARD  = "board"
	ACTOR_ID_MQTT   = "mqtt"
)

// Home Assistant adapter messages

type GetRegistryDevicesRequest struct {
	ActorRequestMixIn
}

type GetRegistryDevicesResponse struct {
	ActorResponseMixIn
	Devices []DeviceRecord
}

type GetRegistryEntitiesRequest struct {
	ActorRequestMixIn
}

type GetRegistryEntitiesResponse struct {
	ActorResponseMixIn
	Entities []EntityRecord
}

type GetStatesRequest struct {
	ActorRequestMixIn
}

type GetStatesResponse struct {
	ActorResponseMixIn
	States map[string]StateSnapshot
}

type CallUpdateInstallRequest struct {
	ActorRequestMixIn
	EntityId string
}

type CallUpdateInstallResponse struct {
	ActorResponseMixIn
}

type CallButtonPressRequest struct {
	ActorRequestMixIn
	EntityId string
}

type CallButtonPressResponse struct {
	ActorResponseMixIn
}

// Board messages

type LoadBoardRequest struct {
	ActorRequestMixIn
}

type GetBoardRequest struct {
	ActorRequestMixIn
}

type GetBoardResponse struct {
	ActorResponseMixIn
	Rows           []Row
	Loading        bool
	LoadError      string
	SortKey        string
	SortDescending bool
}

type SortBoardRequest struct {
	ActorRequestMixIn
	Key string
}

type InstallUpdateRequest struct {
	ActorRequestMixIn
	EntityId string
}

type InstallUpdateResponse struct {
	ActorResponseMixIn
}

type PressRebootRequest struct {
	ActorRequestMixIn
	EntityId string
}

type PressRebootResponse struct {
	ActorResponseMixIn
}

// Health

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}

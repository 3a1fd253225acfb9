package domain

import "strings"

const (
	PlatformShelly = "shelly"
	VendorShelly   = "shelly"
)

// State sentinels used by Home Assistant for entities that exist but have
// no usable value.
const (
	StateUnknown     = "unknown"
	StateUnavailable = "unavailable"
	StateOn          = "on"
	StateOff         = "off"
)

const (
	ConnectionKindMAC = "mac"
)

type Connection struct {
	Kind  string
	Value string
}

// DeviceRecord is one entry of the host device registry. Records are an
// immutable snapshot for the duration of one board load.
type DeviceRecord struct {
	Id               string
	Name             string
	NameByUser       string
	Model            string
	Manufacturer     string
	ConfigurationURL string
	Connections      []Connection
}

// DisplayName prefers the user-assigned name over the integration name.
func (d DeviceRecord) DisplayName() string {
	if d.NameByUser != "" {
		return d.NameByUser
	}
	return d.Name
}

// EntityRecord is one entry of the host entity registry. DeviceId may be
// empty for entities not attached to any device.
type EntityRecord struct {
	EntityId       string
	DeviceId       string
	Platform       string
	EntityCategory string
}

// Domain derives the entity domain from the identifier prefix. The
// identifier is the only trustworthy carrier of the domain, so it is never
// read from a separate field.
func (e EntityRecord) Domain() string {
	if i := strings.Index(e.EntityId, "."); i >= 0 {
		return e.EntityId[:i]
	}
	return ""
}

// ObjectId returns the identifier part after the domain separator.
func (e EntityRecord) ObjectId() string {
	if i := strings.Index(e.EntityId, "."); i >= 0 {
		return e.EntityId[i+1:]
	}
	return e.EntityId
}

// IsDiagnostic reports whether the entity is tagged diagnostic/config-only.
// Such entities are never selected as a device's primary entity.
func (e EntityRecord) IsDiagnostic() bool {
	return e.EntityCategory != ""
}

// StateSnapshot is the volatile state of one entity at load time.
type StateSnapshot struct {
	State      string
	Attributes map[string]any
}

// Live reports whether the state carries a usable value.
func (s StateSnapshot) Live() bool {
	return s.State != "" && s.State != StateUnknown && s.State != StateUnavailable
}

func (s StateSnapshot) StringAttribute(key string) string {
	if s.Attributes == nil {
		return ""
	}
	if v, ok := s.Attributes[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// StateFunc looks up the current state of an entity. A nil result means the
// entity has no state at all (distinct from the "unknown" sentinel).
type StateFunc func(entityId string) *StateSnapshot

package service

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"shellyboard/internal/core/domain"
)

// Sensor identifier patterns that usually carry the device address, in
// priority order.
var ipSensorRules = []entityRule{
	suffixRule("sensor", "wifi_ip"),
	suffixRule("sensor", "ip_address"),
	suffixRule("sensor", "_ip"),
	exactRule("sensor", "ip"),
}

var dottedQuadRe = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// ResolveIP tries, in strict order: the configuration URL host, IP-named
// sensors, any sensor holding a dotted quad, and finally a dotted quad
// embedded in the display name. A device lacking an address is shown
// without one, never excluded.
func ResolveIP(device domain.DeviceRecord, entities []domain.EntityRecord, stateOf domain.StateFunc) string {
	if host := hostFromConfigurationURL(device.ConfigurationURL); host != "" {
		return host
	}

	liveIPv4 := func(e domain.EntityRecord) bool {
		s := stateOf(e.EntityId)
		return s != nil && s.Live() && isIPv4(s.State)
	}
	if e := firstMatch(entities, ipSensorRules, liveIPv4); e != nil {
		return stateOf(e.EntityId).State
	}

	for _, e := range entities {
		if e.Domain() != "sensor" {
			continue
		}
		if s := stateOf(e.EntityId); s != nil && s.Live() && isIPv4(s.State) {
			return s.State
		}
	}

	if m := dottedQuadRe.FindString(device.DisplayName()); m != "" && isIPv4(m) {
		return m
	}
	return ""
}

// hostFromConfigurationURL extracts a usable host from the registry
// configuration URL. If URL parsing fails the scheme and path are stripped
// manually rather than giving up on the record.
func hostFromConfigurationURL(raw string) string {
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil {
		if host := u.Hostname(); usableHost(host) {
			return host
		}
		if u.Hostname() != "" {
			// parsed fine but host is a loopback sentinel
			return ""
		}
	}
	host := raw
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host, "]") {
		host = host[:i]
	}
	if usableHost(host) {
		return host
	}
	return ""
}

// localhost/0.0.0.0 mean "not configured", not an address.
func usableHost(host string) bool {
	return host != "" && host != "localhost" && host != "0.0.0.0"
}

func isIPv4(s string) bool {
	if strings.Count(s, ".") != 3 {
		return false
	}
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}

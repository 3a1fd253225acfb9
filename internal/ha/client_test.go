package ha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shellyboard/internal/config"
)

var upgrader = websocket.Upgrader{}

// fakeHost implements just enough of the Home Assistant WebSocket API for
// the client tests: auth handshake plus canned registry responses.
func fakeHost(t *testing.T, token string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		require.NoError(t, conn.WriteJSON(map[string]any{"type": "auth_required", "ha_version": "2024.8.0"}))

		var auth authFrame
		require.NoError(t, conn.ReadJSON(&auth))
		if auth.AccessToken != token {
			_ = conn.WriteJSON(map[string]any{"type": "auth_invalid", "message": "Invalid access token"})
			return
		}
		require.NoError(t, conn.WriteJSON(map[string]any{"type": "auth_ok", "ha_version": "2024.8.0"}))

		for {
			var frame map[string]any
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			id := frame["id"]
			switch frame["type"] {
			case commandDeviceRegistryList:
				_ = conn.WriteJSON(map[string]any{
					"id": id, "type": "result", "success": true,
					"result": []map[string]any{
						{
							"id":                "d1",
							"name":              "shelly relay",
							"name_by_user":      nil,
							"model":             "Shelly 1PM",
							"manufacturer":      "Shelly",
							"configuration_url": "http://192.168.1.10",
							"connections":       [][]string{{"mac", "AA:BB:CC:00:11:22"}},
						},
					},
				})
			case commandEntityRegistryList:
				_ = conn.WriteJSON(map[string]any{
					"id": id, "type": "result", "success": true,
					"result": []map[string]any{
						{"entity_id": "switch.relay", "device_id": "d1", "platform": "shelly", "entity_category": nil},
					},
				})
			case commandGetStates:
				_ = conn.WriteJSON(map[string]any{
					"id": id, "type": "result", "success": true,
					"result": []map[string]any{
						{"entity_id": "switch.relay", "state": "on", "attributes": map[string]any{}},
					},
				})
			case commandCallService:
				var call callServiceFrame
				raw, _ := json.Marshal(frame)
				_ = json.Unmarshal(raw, &call)
				if call.Target.EntityId == "update.bad_firmware_update" {
					_ = conn.WriteJSON(map[string]any{
						"id": id, "type": "result", "success": false,
						"error": map[string]any{"code": "not_found", "message": "entity not found"},
					})
				} else {
					_ = conn.WriteJSON(map[string]any{"id": id, "type": "result", "success": true, "result": nil})
				}
			}
		}
	}))
}

func clientFor(t *testing.T, srv *httptest.Server, token string) *Client {
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return NewClient(config.HomeAssistantConfig{
		Host:                 u.Hostname(),
		Port:                 uint(port),
		AccessToken:          token,
		RequestTimeoutMillis: 2000,
	}, zap.NewNop())
}

func TestClientConnectAndListRegistries(t *testing.T) {
	srv := fakeHost(t, "secret")
	defer srv.Close()

	client := clientFor(t, srv, "secret")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, client.Connect(ctx))
	defer client.Close()

	devices, err := client.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "d1", devices[0].Id)
	assert.Equal(t, "Shelly", devices[0].Manufacturer)
	assert.Equal(t, "http://192.168.1.10", devices[0].ConfigurationURL)
	require.Len(t, devices[0].Connections, 1)
	assert.Equal(t, "mac", devices[0].Connections[0].Kind)

	entities, err := client.ListEntities(ctx)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "switch.relay", entities[0].EntityId)
	assert.Equal(t, "shelly", entities[0].Platform)
	assert.Empty(t, entities[0].EntityCategory)

	states, err := client.States(ctx)
	require.NoError(t, err)
	require.Contains(t, states, "switch.relay")
	assert.Equal(t, "on", states["switch.relay"].State)
}

func TestClientAuthRejected(t *testing.T) {
	srv := fakeHost(t, "secret")
	defer srv.Close()

	client := clientFor(t, srv, "wrong")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Connect(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth rejected")
}

func TestClientCallService(t *testing.T) {
	srv := fakeHost(t, "secret")
	defer srv.Close()

	client := clientFor(t, srv, "secret")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, client.Connect(ctx))
	defer client.Close()

	assert.NoError(t, client.InstallUpdate(ctx, "update.relay_firmware_update"))
	assert.NoError(t, client.PressButton(ctx, "button.relay_reboot"))

	err := client.InstallUpdate(ctx, "update.bad_firmware_update")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entity not found")
}

func TestClientCommandWithoutConnect(t *testing.T) {
	client := NewClient(config.HomeAssistantConfig{Host: "localhost", Port: 8123}, zap.NewNop())

	_, err := client.ListDevices(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

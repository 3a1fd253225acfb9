package ha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"shellyboard/internal/config"
	"shellyboard/internal/core/domain"
	"shellyboard/internal/core/port"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 10 * time.Second

// Client speaks the Home Assistant WebSocket API: one long-lived
// authenticated connection, request/response frames correlated by id.
// When the connection drops, every in-flight command fails and the next
// Connect starts over; reconnection policy belongs to the caller's
// supervisor.
type Client struct {
	url     string
	token   string
	timeout time.Duration
	logger  *zap.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	conn    *websocket.Conn
	nextId  int64
	pending map[int64]chan commandReply
}

type commandReply struct {
	result json.RawMessage
	err    error
}

var _ port.RegistryService = (*Client)(nil)

func NewClient(cfg config.HomeAssistantConfig, logger *zap.Logger) *Client {
	scheme := "ws"
	if cfg.TLS {
		scheme = "wss"
	}
	timeout := defaultRequestTimeout
	if cfg.RequestTimeoutMillis > 0 {
		timeout = time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond
	}
	return &Client{
		url:     fmt.Sprintf("%s://%s:%d/api/websocket", scheme, cfg.Host, cfg.Port),
		token:   cfg.AccessToken,
		timeout: timeout,
		logger:  logger.With(zap.String("component", "ha_client")),
		pending: make(map[int64]chan commandReply),
	}
}

// Connect dials the host, runs the auth handshake and starts the read
// loop.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("homeassistant dial: %w", err)
	}

	var hello serverFrame
	if err := conn.ReadJSON(&hello); err != nil {
		conn.Close()
		return fmt.Errorf("homeassistant handshake: %w", err)
	}
	if hello.Type != messageTypeAuthRequired {
		conn.Close()
		return fmt.Errorf("homeassistant handshake: unexpected frame %q", hello.Type)
	}

	if err := conn.WriteJSON(authFrame{Type: messageTypeAuth, AccessToken: c.token}); err != nil {
		conn.Close()
		return fmt.Errorf("homeassistant auth: %w", err)
	}

	var authResult serverFrame
	if err := conn.ReadJSON(&authResult); err != nil {
		conn.Close()
		return fmt.Errorf("homeassistant auth: %w", err)
	}
	if authResult.Type != messageTypeAuthOK {
		conn.Close()
		if authResult.Message != "" {
			return fmt.Errorf("homeassistant auth rejected: %s", authResult.Message)
		}
		return errors.New("homeassistant auth rejected")
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.logger.Info("connected to homeassistant", zap.String("version", authResult.HAVersion))

	go c.readLoop(conn)
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var frame serverFrame
		if err := conn.ReadJSON(&frame); err != nil {
			c.failAll(conn, err)
			return
		}
		if frame.Type != messageTypeResult {
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[frame.Id]
		if ok {
			delete(c.pending, frame.Id)
		}
		c.mu.Unlock()
		if !ok {
			continue
		}

		if !frame.Success {
			msg := "command failed"
			if frame.Error != nil {
				msg = frame.Error.Message
			}
			ch <- commandReply{err: fmt.Errorf("homeassistant: %s", msg)}
			continue
		}
		ch <- commandReply{result: frame.Result}
	}
}

func (c *Client) failAll(conn *websocket.Conn, err error) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	pending := c.pending
	c.pending = make(map[int64]chan commandReply)
	c.mu.Unlock()

	for _, ch := range pending {
		ch <- commandReply{err: fmt.Errorf("homeassistant connection lost: %w", err)}
	}
}

// command sends one frame built by frameFn with a fresh correlation id and
// waits for the matching result.
func (c *Client) command(ctx context.Context, frameFn func(id int64) any) (json.RawMessage, error) {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return nil, errors.New("homeassistant: not connected")
	}
	c.nextId++
	id := c.nextId
	ch := make(chan commandReply, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := conn.WriteJSON(frameFn(id))
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("homeassistant write: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	select {
	case reply := <-ch:
		return reply.result, reply.err
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, ctx.Err()
	}
}

func (c *Client) simpleCommand(ctx context.Context, commandType string) (json.RawMessage, error) {
	return c.command(ctx, func(id int64) any {
		return commandFrame{Id: id, Type: commandType}
	})
}

func (c *Client) ListDevices(ctx context.Context) ([]domain.DeviceRecord, error) {
	raw, err := c.simpleCommand(ctx, commandDeviceRegistryList)
	if err != nil {
		return nil, err
	}
	var wire []wireDevice
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("homeassistant device registry: %w", err)
	}
	devices := make([]domain.DeviceRecord, 0, len(wire))
	for _, w := range wire {
		devices = append(devices, w.toDomain())
	}
	return devices, nil
}

func (c *Client) ListEntities(ctx context.Context) ([]domain.EntityRecord, error) {
	raw, err := c.simpleCommand(ctx, commandEntityRegistryList)
	if err != nil {
		return nil, err
	}
	var wire []wireEntity
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("homeassistant entity registry: %w", err)
	}
	entities := make([]domain.EntityRecord, 0, len(wire))
	for _, w := range wire {
		entities = append(entities, w.toDomain())
	}
	return entities, nil
}

func (c *Client) States(ctx context.Context) (map[string]domain.StateSnapshot, error) {
	raw, err := c.simpleCommand(ctx, commandGetStates)
	if err != nil {
		return nil, err
	}
	var wire []wireState
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("homeassistant states: %w", err)
	}
	states := make(map[string]domain.StateSnapshot, len(wire))
	for _, w := range wire {
		states[w.EntityId] = domain.StateSnapshot{State: w.State, Attributes: w.Attributes}
	}
	return states, nil
}

func (c *Client) callService(ctx context.Context, serviceDomain, service, entityId string) error {
	_, err := c.command(ctx, func(id int64) any {
		return callServiceFrame{
			Id:      id,
			Type:    commandCallService,
			Domain:  serviceDomain,
			Service: service,
			Target:  serviceTarget{EntityId: entityId},
		}
	})
	return err
}

func (c *Client) InstallUpdate(ctx context.Context, entityId string) error {
	return c.callService(ctx, "update", "install", entityId)
}

func (c *Client) PressButton(ctx context.Context, entityId string) error {
	return c.callService(ctx, "button", "press", entityId)
}

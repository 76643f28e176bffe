package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"zhamesh/internal/codec"
)

// Message types of the hub's auth handshake
const (
	TypeAuthRequired = "auth_required"
	TypeAuth         = "auth"
	TypeAuthOK       = "auth_ok"
	TypeAuthInvalid  = "auth_invalid"
	TypeZHADevices   = "zha/devices"
)

// DefaultQueryTimeout bounds a single query when ctx has no deadline
const DefaultQueryTimeout = 30 * time.Second

var (
	// ErrAuthFailed means the hub rejected the access token
	ErrAuthFailed = errors.New("hub rejected access token")
	// ErrNotConnected is returned by Query before Connect succeeds
	ErrNotConnected = errors.New("not connected")
)

type authMessage struct {
	Type        string `json:"type"`
	AccessToken string `json:"access_token"`
}

type authReply struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

type queryMessage struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// Client is a single websocket connection to the hub. It is not safe for
// concurrent use.
type Client struct {
	url    string
	token  string
	dialer *websocket.Dialer
	logger zerolog.Logger

	conn   *websocket.Conn
	nextID int
	now    func() time.Time
}

// NewClient creates a client for the websocket endpoint at url
func NewClient(url, token string, logger zerolog.Logger) *Client {
	return &Client{
		url:   url,
		token: token,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logger,
		now:    time.Now,
	}
}

// Connect dials the hub and completes the auth handshake. Request ids
// restart at 1 on every successful connect.
func (c *Client) Connect(ctx context.Context) error {
	_ = c.Close()

	conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: %s: %w", c.url, resp.Status, err)
		}
		return fmt.Errorf("dial %s: %w", c.url, err)
	}

	if err := c.authenticate(ctx, conn); err != nil {
		conn.Close()
		return err
	}

	c.conn = conn
	c.nextID = 1
	c.logger.Info().Str("url", c.url).Msg("Connected to hub")
	return nil
}

func (c *Client) authenticate(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadDeadline(c.deadline(ctx))
	defer conn.SetReadDeadline(time.Time{})

	var hello authReply
	if err := conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("read auth request: %w", err)
	}
	if hello.Type != TypeAuthRequired {
		return fmt.Errorf("expected %s, got %q", TypeAuthRequired, hello.Type)
	}

	if err := conn.WriteJSON(authMessage{Type: TypeAuth, AccessToken: c.token}); err != nil {
		return fmt.Errorf("send auth: %w", err)
	}

	var reply authReply
	if err := conn.ReadJSON(&reply); err != nil {
		return fmt.Errorf("read auth reply: %w", err)
	}

	switch reply.Type {
	case TypeAuthOK:
		return nil
	case TypeAuthInvalid:
		if reply.Message != "" {
			return fmt.Errorf("%w: %s", ErrAuthFailed, reply.Message)
		}
		return ErrAuthFailed
	default:
		return fmt.Errorf("unexpected auth reply %q", reply.Type)
	}
}

// QueryDevices sends a zha/devices command and returns the raw reply with
// its capture time truncated to the second. Frames that are not the reply
// to this request are skipped.
func (c *Client) QueryDevices(ctx context.Context) ([]byte, time.Time, error) {
	if c.conn == nil {
		return nil, time.Time{}, ErrNotConnected
	}

	id := c.nextID
	c.nextID++

	if err := c.conn.WriteJSON(queryMessage{ID: id, Type: TypeZHADevices}); err != nil {
		return nil, time.Time{}, fmt.Errorf("send query %d: %w", id, err)
	}

	c.conn.SetReadDeadline(c.deadline(ctx))
	defer c.conn.SetReadDeadline(time.Time{})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("read reply %d: %w", id, err)
		}

		frame, err := codec.PeekFrame(raw)
		if err != nil {
			c.logger.Debug().Err(err).Msg("Skipping unparseable frame")
			continue
		}
		if frame.ID != id || frame.Type != codec.TypeResult {
			c.logger.Trace().Int("id", frame.ID).Str("type", frame.Type).Msg("Skipping frame")
			continue
		}

		return raw, c.now().Truncate(time.Second), nil
	}
}

// Close closes the connection, if any
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	conn := c.conn
	c.conn = nil

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return conn.Close()
}

func (c *Client) deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(DefaultQueryTimeout)
}

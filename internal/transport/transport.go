// Package transport implements the line-delimited duplex byte stream spec
// §6 requires ("Text frames, UTF-8, <=256 bytes per line, ordered,
// reliable, bidirectional. A WebSocket over TCP is the reference
// transport"). Conn is the shape both internal/controller's loop and
// internal/streamer depend on; WSConn is the reference implementation,
// grounded on the gorilla/websocket dependency declared in the pack
// (Ankit-Kulkarni-go-experiments/websockets/go.mod) — the only concrete
// transport library anywhere in the corpus.
package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// MaxLineBytes is the wire limit spec §6 sets on a single SSG or reply
// line.
const MaxLineBytes = 256

// ErrLineTooLong is returned when a peer sends a text frame over
// MaxLineBytes.
var ErrLineTooLong = errors.New("transport: line exceeds 256 bytes")

// Conn is the minimal duplex line interface both the controller's main
// loop and the host streamer need. A partial frame at disconnect is
// discarded (spec §5 "Shared-resource policy"), never returned.
type Conn interface {
	// ReadLine blocks for up to timeout for one complete line (without its
	// trailing newline). A zero timeout blocks indefinitely.
	ReadLine(timeout time.Duration) (string, error)
	// WriteLine sends one line; the implementation appends framing.
	WriteLine(line string) error
	// Close releases the underlying connection.
	Close() error
}

// WSConn adapts a *websocket.Conn to Conn. Each SSG/reply line is sent as
// one text frame: the wire grammar is already line-oriented, so framing
// doubles as line delimiting and no newline scanning is needed on either
// side.
type WSConn struct {
	ws *websocket.Conn
}

// NewWSConn wraps an already-established websocket connection.
func NewWSConn(ws *websocket.Conn) *WSConn {
	return &WSConn{ws: ws}
}

func (c *WSConn) ReadLine(timeout time.Duration) (string, error) {
	if timeout > 0 {
		if err := c.ws.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return "", err
		}
	}
	mt, data, err := c.ws.ReadMessage()
	if err != nil {
		if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
			return "", readTimeoutErr
		}
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return "", readClosedErr
		}
		return "", err
	}
	if mt != websocket.TextMessage {
		return "", fmt.Errorf("transport: unexpected websocket message type %d", mt)
	}
	if len(data) > MaxLineBytes {
		return "", ErrLineTooLong
	}
	return string(data), nil
}

func (c *WSConn) WriteLine(line string) error {
	if len(line) > MaxLineBytes {
		return ErrLineTooLong
	}
	return c.ws.WriteMessage(websocket.TextMessage, []byte(line))
}

func (c *WSConn) Close() error {
	return c.ws.Close()
}

// readTimeoutErr and readClosedErr are sentinels ReadLine returns so
// callers (controller.Run and the streamer, via IsTimeout/IsClosed) can
// distinguish "nothing arrived this tick" from "the peer is gone" without
// depending on gorilla's concrete error types.
var (
	readTimeoutErr = errors.New("transport: read timeout")
	readClosedErr  = errors.New("transport: connection closed")
)

// IsTimeout reports whether err is the sentinel ReadLine returns when its
// deadline elapses with no frame received.
func IsTimeout(err error) bool {
	return errors.Is(err, readTimeoutErr)
}

// IsClosed reports whether err is the sentinel ReadLine returns once the
// peer has performed a clean websocket close.
func IsClosed(err error) bool {
	return errors.Is(err, readClosedErr)
}

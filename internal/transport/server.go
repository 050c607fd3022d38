package transport

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The reference deployment is a controller on a LAN talking to one
	// trusted host; origin checking adds nothing a firewall doesn't
	// already provide.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Accept upgrades one incoming HTTP request to a websocket Conn. The
// controller calls this from its connection handler each time a host
// attaches (spec §2: "a reliable ordered text channel... typically a
// WebSocket over a LAN").
func Accept(w http.ResponseWriter, r *http.Request) (*WSConn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return NewWSConn(ws), nil
}

// Dial connects to a controller's websocket endpoint as the host side.
func Dial(url string) (*WSConn, error) {
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return NewWSConn(ws), nil
}

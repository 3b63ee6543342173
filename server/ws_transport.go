package server

import (
	"errors"
	"net/http"
	"sync"

	"MashFM/logger"

	"github.com/gorilla/websocket"
)

var errAssetNotFound = errors.New("asset not found")

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// transportHub fans transport state out to every connected preview client.
type transportHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func newTransportHub() *transportHub {
	return &transportHub{conns: make(map[*websocket.Conn]bool)}
}

func (hub *transportHub) add(conn *websocket.Conn) {
	hub.mu.Lock()
	hub.conns[conn] = true
	hub.mu.Unlock()
}

func (hub *transportHub) remove(conn *websocket.Conn) {
	hub.mu.Lock()
	delete(hub.conns, conn)
	hub.mu.Unlock()
}

// broadcast sends one state snapshot to all clients, dropping dead ones.
func (hub *transportHub) broadcast(state interface{}) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for conn := range hub.conns {
		if err := conn.WriteJSON(state); err != nil {
			conn.Close()
			delete(hub.conns, conn)
		}
	}
}

// transportCommand is one client message on the transport socket.
type transportCommand struct {
	Action      string  `json:"action"` // play, pause, seek, gain, mute, solo, addStream, removeStream
	StreamID    string  `json:"streamId,omitempty"`
	AssetID     string  `json:"assetId,omitempty"`
	Seconds     float64 `json:"seconds,omitempty"`
	GainPercent float64 `json:"gainPercent,omitempty"`
	Value       bool    `json:"value,omitempty"`
}

// TransportWSHandler runs the live preview transport protocol: clients send
// commands, every connected client receives the resulting state snapshot, so
// all views stay on the shared clock.
func (h *APIHandler) TransportWSHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	h.wsHub.add(conn)
	defer func() {
		h.wsHub.remove(conn)
		conn.Close()
	}()

	// New client immediately sees the current state.
	if err := conn.WriteJSON(h.transport.State()); err != nil {
		return
	}

	for {
		var cmd transportCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		if err := h.applyTransportCommand(cmd); err != nil {
			logger.Warn("transport command rejected",
				logger.String("action", cmd.Action),
				logger.ErrorField(err))
			continue
		}
		h.wsHub.broadcast(h.transport.State())
	}
}

func (h *APIHandler) applyTransportCommand(cmd transportCommand) error {
	switch cmd.Action {
	case "play":
		h.transport.PlayAll()
	case "pause":
		h.transport.PauseAll()
	case "seek":
		h.transport.SeekAll(cmd.Seconds)
	case "gain":
		return h.transport.SetTrackGain(cmd.StreamID, cmd.GainPercent)
	case "mute":
		return h.transport.SetMute(cmd.StreamID, cmd.Value)
	case "solo":
		return h.transport.SetSolo(cmd.StreamID, cmd.Value)
	case "addStream":
		asset := h.assets.Get(cmd.AssetID)
		if asset == nil {
			return errAssetNotFound
		}
		return h.transport.AddStream(cmd.StreamID, asset)
	case "removeStream":
		h.transport.RemoveStream(cmd.StreamID)
	}
	return nil
}

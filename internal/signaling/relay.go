package signaling

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Message is the decoded shape of a signaling frame. Frames are forwarded as
// raw bytes so the receiving peer sees exactly what the sender produced; this
// struct is only used to inspect the type field.
type Message struct {
	Type      string `json:"type"`
	SDP       string `json:"sdp,omitempty"`
	Candidate string `json:"candidate,omitempty"`
}

const (
	MessageOffer        = "offer"
	MessageAnswer       = "answer"
	MessageICECandidate = "ice-candidate"
)

type Role string

const (
	RoleStreamer Role = "streamer"
	RoleViewer   Role = "viewer"
)

// Relay runs the per-connection read loops and forwards frames between the
// two roles of a task's signaling pair. It holds no negotiation state: SDP
// payloads are opaque and pass through untouched.
type Relay struct {
	registry *Registry
	logger   *logrus.Logger
}

func NewRelay(registry *Registry, logger *logrus.Logger) *Relay {
	if logger == nil {
		logger = logrus.New()
	}
	return &Relay{
		registry: registry,
		logger:   logger,
	}
}

// Registry exposes the relay's connection registry.
func (r *Relay) Registry() *Registry {
	return r.registry
}

// ServeStreamer registers the peer as the task's streamer and pumps its
// frames to the viewer until the connection ends. It blocks for the lifetime
// of the connection.
func (r *Relay) ServeStreamer(taskID int64, peer Peer) {
	r.registry.RegisterStreamer(taskID, peer)
	defer r.registry.UnregisterStreamer(taskID, peer)
	r.pump(taskID, peer, RoleStreamer)
}

// ServeViewer registers the peer as the task's viewer and pumps its frames
// to the streamer until the connection ends.
func (r *Relay) ServeViewer(taskID int64, peer Peer) {
	r.registry.RegisterViewer(taskID, peer)
	defer r.registry.UnregisterViewer(taskID, peer)
	r.pump(taskID, peer, RoleViewer)
}

func (r *Relay) pump(taskID int64, peer Peer, role Role) {
	logger := r.logger.WithFields(logrus.Fields{
		"task_id": taskID,
		"role":    role,
	})

	for {
		_, data, err := peer.ReadMessage()
		if err != nil {
			logger.Infof("disconnected: %v", err)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			// protocol error on a single frame: log and keep the
			// connection alive
			logger.Warnf("dropping malformed signaling frame")
			continue
		}

		if !allowed(role, msg.Type) {
			logger.Warnf("dropping %q frame not allowed for %s", msg.Type, role)
			continue
		}

		dst, ok := r.counterpart(taskID, role)
		if !ok {
			// no peer registered: drop silently, no buffering
			continue
		}
		if err := dst.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Warnf("forward %q frame: %v", msg.Type, err)
		}
	}
}

func (r *Relay) counterpart(taskID int64, role Role) (Peer, bool) {
	if role == RoleStreamer {
		return r.registry.Viewer(taskID)
	}
	return r.registry.Streamer(taskID)
}

// allowed enforces the message-type discipline: offers originate from the
// streamer, answers from the viewer, ICE candidates from either side.
func allowed(role Role, msgType string) bool {
	switch msgType {
	case MessageOffer:
		return role == RoleStreamer
	case MessageAnswer:
		return role == RoleViewer
	case MessageICECandidate:
		return true
	default:
		return false
	}
}

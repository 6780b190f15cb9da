package signaling

import "sync"

// Peer is the transport surface of one signaling connection. It is satisfied
// by *websocket.Conn from gorilla/websocket; tests substitute fakes.
//
// Writes to a given peer only ever come from the counterpart role's single
// read loop, so Peer implementations are not required to serialize writers.
type Peer interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Registry tracks the live streamer and viewer connection for each task. It
// is the only shared mutable state in the signaling core: every access goes
// through the mutex, and all exposed operations are atomic.
type Registry struct {
	mu        sync.Mutex
	streamers map[int64]Peer
	viewers   map[int64]Peer
}

func NewRegistry() *Registry {
	return &Registry{
		streamers: make(map[int64]Peer),
		viewers:   make(map[int64]Peer),
	}
}

// RegisterStreamer stores the peer as the task's streamer. A prior streamer
// for the same task is closed so its read loop unwinds and cleans up.
func (r *Registry) RegisterStreamer(taskID int64, p Peer) {
	register(r, r.streamers, taskID, p)
}

// RegisterViewer stores the peer as the task's viewer, closing any prior one.
func (r *Registry) RegisterViewer(taskID int64, p Peer) {
	register(r, r.viewers, taskID, p)
}

// UnregisterStreamer removes the streamer entry, but only if it still refers
// to the given peer. A superseded connection's cleanup must not evict its
// replacement.
func (r *Registry) UnregisterStreamer(taskID int64, p Peer) {
	unregister(r, r.streamers, taskID, p)
}

// UnregisterViewer removes the viewer entry if it still refers to the peer.
func (r *Registry) UnregisterViewer(taskID int64, p Peer) {
	unregister(r, r.viewers, taskID, p)
}

// Streamer returns the task's current streamer connection, if any.
func (r *Registry) Streamer(taskID int64) (Peer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.streamers[taskID]
	return p, ok
}

// Viewer returns the task's current viewer connection, if any.
func (r *Registry) Viewer(taskID int64) (Peer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.viewers[taskID]
	return p, ok
}

// CloseTask closes and removes both peers of a task's signaling session.
// Used when the task itself is deleted.
func (r *Registry) CloseTask(taskID int64) {
	r.mu.Lock()
	streamer := r.streamers[taskID]
	viewer := r.viewers[taskID]
	delete(r.streamers, taskID)
	delete(r.viewers, taskID)
	r.mu.Unlock()

	if streamer != nil {
		_ = streamer.Close()
	}
	if viewer != nil {
		_ = viewer.Close()
	}
}

func register(r *Registry, m map[int64]Peer, taskID int64, p Peer) {
	r.mu.Lock()
	prev := m[taskID]
	m[taskID] = p
	r.mu.Unlock()

	if prev != nil && prev != p {
		_ = prev.Close()
	}
}

func unregister(r *Registry, m map[int64]Peer, taskID int64, p Peer) {
	r.mu.Lock()
	if m[taskID] == p {
		delete(m, taskID)
	}
	r.mu.Unlock()
}

package signaling

import (
	"errors"
	"io"
	"sync"
	"testing"
)

// fakePeer queues inbound frames and records outbound writes. ReadMessage
// returns the queued frames in order and then blocks until Close.
type fakePeer struct {
	mu     sync.Mutex
	inbox  [][]byte
	sent   [][]byte
	closed bool
	wake   chan struct{}
}

func newFakePeer(frames ...[]byte) *fakePeer {
	return &fakePeer{
		inbox: frames,
		wake:  make(chan struct{}),
	}
}

func (p *fakePeer) ReadMessage() (int, []byte, error) {
	p.mu.Lock()
	if len(p.inbox) > 0 {
		data := p.inbox[0]
		p.inbox = p.inbox[1:]
		p.mu.Unlock()
		return 1, data, nil
	}
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return 0, nil, io.EOF
	}
	<-p.wake
	return 0, nil, io.EOF
}

func (p *fakePeer) WriteMessage(messageType int, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("write on closed peer")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	p.sent = append(p.sent, cp)
	return nil
}

func (p *fakePeer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.wake)
	return nil
}

func (p *fakePeer) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePeer) writes() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.sent))
	copy(out, p.sent)
	return out
}

func TestRegistry_RegisterReplacesAndClosesPrevious(t *testing.T) {
	reg := NewRegistry()

	first := newFakePeer()
	second := newFakePeer()

	reg.RegisterStreamer(1, first)
	reg.RegisterStreamer(1, second)

	if !first.isClosed() {
		t.Fatalf("superseded streamer should be closed")
	}
	if second.isClosed() {
		t.Fatalf("replacement streamer must stay open")
	}
	got, ok := reg.Streamer(1)
	if !ok || got != second {
		t.Fatalf("registry should hold the replacement peer")
	}
}

func TestRegistry_UnregisterOnlyRemovesCurrentPeer(t *testing.T) {
	reg := NewRegistry()

	first := newFakePeer()
	second := newFakePeer()

	reg.RegisterViewer(1, first)
	reg.RegisterViewer(1, second)

	// The superseded connection's cleanup runs after the replacement is in
	// place and must not evict it.
	reg.UnregisterViewer(1, first)
	if got, ok := reg.Viewer(1); !ok || got != second {
		t.Fatalf("stale unregister evicted the live peer")
	}

	reg.UnregisterViewer(1, second)
	if _, ok := reg.Viewer(1); ok {
		t.Fatalf("viewer should be gone after its own unregister")
	}
}

func TestRegistry_RolesAndTasksAreIndependent(t *testing.T) {
	reg := NewRegistry()

	streamer := newFakePeer()
	viewer := newFakePeer()
	other := newFakePeer()

	reg.RegisterStreamer(1, streamer)
	reg.RegisterViewer(1, viewer)
	reg.RegisterStreamer(2, other)

	if got, ok := reg.Streamer(1); !ok || got != streamer {
		t.Fatalf("wrong streamer for task 1")
	}
	if got, ok := reg.Viewer(1); !ok || got != viewer {
		t.Fatalf("wrong viewer for task 1")
	}
	if got, ok := reg.Streamer(2); !ok || got != other {
		t.Fatalf("wrong streamer for task 2")
	}
	if _, ok := reg.Viewer(2); ok {
		t.Fatalf("task 2 should have no viewer")
	}
}

func TestRegistry_CloseTaskClosesBothPeers(t *testing.T) {
	reg := NewRegistry()

	streamer := newFakePeer()
	viewer := newFakePeer()
	reg.RegisterStreamer(1, streamer)
	reg.RegisterViewer(1, viewer)

	reg.CloseTask(1)

	if !streamer.isClosed() || !viewer.isClosed() {
		t.Fatalf("both peers should be closed")
	}
	if _, ok := reg.Streamer(1); ok {
		t.Fatalf("streamer entry should be removed")
	}
	if _, ok := reg.Viewer(1); ok {
		t.Fatalf("viewer entry should be removed")
	}
}

package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	name string
}

func (f *fakeConn) WriteJSON(any) error { return nil }
func (f *fakeConn) Close() error        { return nil }

func TestRegisterAndLookup(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	conn := &fakeConn{name: "alice-1"}
	r.Register("alice", conn)

	got, ok := r.Lookup("alice")
	req.True(ok)
	req.Same(conn, got)

	_, ok = r.Lookup("bob")
	req.False(ok)
}

func TestRegisterLastWins(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	first := &fakeConn{name: "alice-1"}
	second := &fakeConn{name: "alice-2"}
	r.Register("alice", first)
	r.Register("alice", second)

	got, ok := r.Lookup("alice")
	req.True(ok)
	req.Same(second, got)
	req.Equal(1, r.Len())
}

func TestUnregisterRemovesOwnEntry(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	conn := &fakeConn{name: "alice-1"}
	r.Register("alice", conn)
	r.Unregister(conn)

	_, ok := r.Lookup("alice")
	req.False(ok)
	req.Equal(0, r.Len())
}

// A reconnect can replace the entry before the old connection's close fires.
// The stale close must not evict the replacement.
func TestUnregisterIgnoresSupersededConnection(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	stale := &fakeConn{name: "alice-1"}
	fresh := &fakeConn{name: "alice-2"}
	r.Register("alice", stale)
	r.Register("alice", fresh)

	r.Unregister(stale)

	got, ok := r.Lookup("alice")
	req.True(ok)
	req.Same(fresh, got)
}

func TestUnregisterUnknownConnectionIsNoOp(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	r.Register("alice", &fakeConn{name: "alice-1"})
	r.Unregister(&fakeConn{name: "never-registered"})

	req.Equal(1, r.Len())
}

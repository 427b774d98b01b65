package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type nopConn struct {
	closed bool
}

func (c *nopConn) Send(payload []byte) bool { return true }
func (c *nopConn) Close()                   { c.closed = true }

func TestBindResolveUnbind(t *testing.T) {
	r := NewRegistry()
	c1 := &nopConn{}

	_, ok := r.Resolve("u-1")
	require.False(t, ok)

	require.Nil(t, r.Bind("u-1", c1))
	got, ok := r.Resolve("u-1")
	require.True(t, ok)
	require.Same(t, c1, got)

	require.True(t, r.Unbind("u-1", c1))
	_, ok = r.Resolve("u-1")
	require.False(t, ok)

	// unbinding an absent user is a no-op
	require.False(t, r.Unbind("u-1", c1))
}

func TestBindReturnsDisplacedConn(t *testing.T) {
	r := NewRegistry()
	c1 := &nopConn{}
	c2 := &nopConn{}

	require.Nil(t, r.Bind("u-1", c1))
	displaced := r.Bind("u-1", c2)
	require.Same(t, c1, displaced)

	got, ok := r.Resolve("u-1")
	require.True(t, ok)
	require.Same(t, c2, got)

	// rebinding the same conn displaces nothing
	require.Nil(t, r.Bind("u-1", c2))
}

func TestUnbindIgnoresStaleConn(t *testing.T) {
	r := NewRegistry()
	old := &nopConn{}
	replacement := &nopConn{}

	r.Bind("u-1", old)
	r.Bind("u-1", replacement)

	// the displaced connection disconnecting must not evict the
	// replacement binding
	require.False(t, r.Unbind("u-1", old))
	got, ok := r.Resolve("u-1")
	require.True(t, ok)
	require.Same(t, replacement, got)
}

func TestResolveAll(t *testing.T) {
	r := NewRegistry()
	cA := &nopConn{}
	cB := &nopConn{}
	r.Bind("a", cA)
	r.Bind("b", cB)

	resolved := r.ResolveAll([]string{"b", "offline", "a"})
	require.Len(t, resolved, 2)
	require.Same(t, cB, resolved[0])
	require.Same(t, cA, resolved[1])

	require.Empty(t, r.ResolveAll(nil))
	require.Empty(t, r.ResolveAll([]string{"offline"}))
}

func TestConcurrentBindUnbind(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("u-%d", n)
			c := &nopConn{}
			for j := 0; j < 200; j++ {
				r.Bind(id, c)
				r.Resolve(id)
				r.ResolveAll([]string{id, "u-0", "u-15"})
				r.Unbind(id, c)
			}
			r.Bind(id, c)
		}(i)
	}
	wg.Wait()

	// the last operation per user was a bind, so all must resolve
	require.Equal(t, 16, r.Len())
	for i := 0; i < 16; i++ {
		_, ok := r.Resolve(fmt.Sprintf("u-%d", i))
		require.True(t, ok)
	}
}

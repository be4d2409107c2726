package proxy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, proxies ...string) (*Pool, *time.Time) {
	t.Helper()
	p, err := New(proxies, time.Minute)
	require.NoError(t, err)
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }
	return p, &clock
}

func TestPoolRotation(t *testing.T) {
	p, _ := newTestPool(t, "http://p1:1", "http://p2:1", "http://p3:1")

	require.Equal(t, "http://p1:1", p.Next())
	require.Equal(t, "http://p2:1", p.Next())
	require.Equal(t, "http://p3:1", p.Next())
	require.Equal(t, "http://p1:1", p.Next())
}

func TestPoolSkipsFailed(t *testing.T) {
	p, clock := newTestPool(t, "http://p1:1", "http://p2:1", "http://p3:1")
	p.MarkFailed("http://p2:1")

	require.Equal(t, "http://p1:1", p.Next())
	require.Equal(t, "http://p3:1", p.Next())
	require.Equal(t, "http://p1:1", p.Next())

	// Cooldown expires.
	*clock = clock.Add(2 * time.Minute)
	require.Equal(t, "http://p2:1", p.Next())
}

func TestPoolMarkHealthy(t *testing.T) {
	p, _ := newTestPool(t, "http://p1:1", "http://p2:1")
	p.MarkFailed("http://p1:1")
	p.MarkHealthy("http://p1:1")

	require.Equal(t, "http://p1:1", p.Next())
}

func TestPoolAllFailedReturnsOldest(t *testing.T) {
	p, clock := newTestPool(t, "http://p1:1", "http://p2:1")
	p.MarkFailed("http://p2:1")
	*clock = clock.Add(10 * time.Second)
	p.MarkFailed("http://p1:1")

	require.Equal(t, "http://p2:1", p.Next())
}

func TestNilPool(t *testing.T) {
	var p *Pool
	require.Equal(t, "", p.Next())
	require.Equal(t, 0, p.Len())
	p.MarkFailed("http://p1:1")
	p.MarkHealthy("http://p1:1")
}

func TestNewNormalizes(t *testing.T) {
	p, err := New([]string{"p1:3128", " http://p1:3128 ", "socks5://p2:1080", ""}, 0)
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())
	require.Equal(t, DefaultCooldown, p.cooldown)
	require.Equal(t, "http://p1:3128", p.Next())
	require.Equal(t, "socks5://p2:1080", p.Next())
}

func TestNewRejectsInvalid(t *testing.T) {
	_, err := New([]string{"ftp://p1:21"}, 0)
	require.Error(t, err)

	_, err = New([]string{"http://"}, 0)
	require.Error(t, err)
}

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHostKey(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.wildberries.ru/catalog/1/feedbacks", "wildberries.ru"},
		{"https://WILDBERRIES.ru:443/catalog/1", "wildberries.ru"},
		{"http://localhost:8080/x", "localhost"},
		{"not a url", ""},
		{"://broken", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			require.Equal(t, tt.want, HostKey(tt.url))
		})
	}
}

func TestAllowSharesBucketAcrossWWW(t *testing.T) {
	dl := NewDomainLimiter(0.001, 1)

	require.True(t, dl.Allow("https://www.wildberries.ru/catalog/1"))
	require.False(t, dl.Allow("https://wildberries.ru/catalog/2"))

	// Other hosts have their own bucket.
	require.True(t, dl.Allow("https://example.com/"))
}

func TestAllowWithoutHost(t *testing.T) {
	dl := NewDomainLimiter(0.001, 1)
	require.True(t, dl.Allow("relative/path"))
	require.True(t, dl.Allow("relative/path"))
}

func TestWaitHonorsContext(t *testing.T) {
	dl := NewDomainLimiter(0.001, 1)
	require.NoError(t, dl.Wait(context.Background(), "https://wildberries.ru/a"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, dl.Wait(ctx, "https://wildberries.ru/b"))
}

func TestSetLimit(t *testing.T) {
	dl := NewDomainLimiter(0.001, 1)
	dl.SetLimit("www.wildberries.ru", 1000, 5)

	for i := 0; i < 5; i++ {
		require.True(t, dl.Allow("https://wildberries.ru/catalog/1"))
	}
}

func TestNewDomainLimiterDefaults(t *testing.T) {
	dl := NewDomainLimiter(0, 0)
	require.EqualValues(t, 1, dl.perHost)
	require.Equal(t, 1, dl.burst)
}

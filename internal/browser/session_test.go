package browser

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/kutoven/wbreviews/internal/config"
	"github.com/kutoven/wbreviews/internal/engine"
	"github.com/stretchr/testify/require"
)

func TestStartMissingChromeFailsCleanly(t *testing.T) {
	opts := Options{ChromePath: filepath.Join(t.TempDir(), "no-such-chrome"), Headless: true}

	s, err := Start(context.Background(), opts)
	require.Nil(t, s)
	require.ErrorIs(t, err, engine.ErrDriverInitialization)
}

func TestLauncherPropagatesDriverError(t *testing.T) {
	cfg := config.Default()
	cfg.ChromePath = filepath.Join(t.TempDir(), "missing")

	_, err := NewLauncher(cfg).Launch(context.Background(), "http://proxy:3128")
	require.ErrorIs(t, err, engine.ErrDriverInitialization)
}

func TestResolveExecPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	dir := t.TempDir()

	plain := filepath.Join(dir, "chrome.txt")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o644))
	_, err := resolveExecPath(plain)
	require.Error(t, err)

	exe := filepath.Join(dir, "chrome")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	got, err := resolveExecPath(exe)
	require.NoError(t, err)
	require.Equal(t, exe, got)

	_, err = resolveExecPath(dir)
	require.Error(t, err)
}

func TestStopIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	allocCalls := 0
	s := &Session{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: func() { allocCalls++ },
	}

	s.Stop()
	s.Stop()
	require.NoError(t, s.Close())
	require.Equal(t, 1, allocCalls)
	require.Error(t, ctx.Err())

	_, err := s.HTML(context.Background())
	require.ErrorIs(t, err, ErrSessionStopped)
	require.ErrorIs(t, s.ScrollToBottom(context.Background()), ErrSessionStopped)
}

func TestAllocatorOptions(t *testing.T) {
	opts := OptionsFromConfig(config.Default())
	require.Equal(t, 1920, opts.WindowWidth)
	require.Equal(t, 1080, opts.WindowHeight)
	require.True(t, opts.Headless)

	base := allocatorOptions("", opts)
	withExec := allocatorOptions("/usr/bin/chromium", opts)
	require.Len(t, withExec, len(base)+1)

	opts.Proxy = "socks5://127.0.0.1:1080"
	require.Len(t, allocatorOptions("", opts), len(base)+1)
}

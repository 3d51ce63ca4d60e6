package formatter_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/akhuoa/console-formatter/pkg/formatter"
	"github.com/akhuoa/console-formatter/pkg/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for one writer and one reader
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func appendTo(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(text)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestFollower(t *testing.T) {
	logs := &syncBuffer{}
	saved, level := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(logs)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	t.Cleanup(func() {
		log.Logger = saved
		zerolog.SetGlobalLevel(level)
	})

	path := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, os.WriteFile(path, []byte("first\npart"), 0644))

	out := &syncBuffer{}
	f := formatter.New(nil, render.HTML{})
	follower := formatter.NewFollower(path, f, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- follower.Run(ctx) }()

	assert.Eventually(t, func() bool { return out.String() == "first\n" }, 2*time.Second, 10*time.Millisecond,
		"existing complete lines are printed, the partial line waits")

	appendTo(t, path, "ial ✓\nsecond")
	assert.Eventually(t, func() bool {
		return out.String() == "first\npartial <span class=\"ansi-green\">✓</span>\n"
	}, 2*time.Second, 10*time.Millisecond)

	// Truncate and write fresh content
	require.NoError(t, os.WriteFile(path, []byte("new\n"), 0644))
	assert.Eventually(t, func() bool {
		return bytes.HasSuffix([]byte(out.String()), []byte("new\n"))
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, logs.String(), "File truncated, reading from start")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("follower did not stop")
	}
}

func TestFollowerMissingFile(t *testing.T) {
	follower := formatter.NewFollower(filepath.Join(t.TempDir(), "nope.log"), formatter.New(nil, nil), &syncBuffer{})

	err := follower.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}

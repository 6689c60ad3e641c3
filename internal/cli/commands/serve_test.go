package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommand_StopsOnCancel(t *testing.T) {
	useConfig(t, "text")
	dir := t.TempDir()

	cmd := NewServeCommand()
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0", "--watch", dir})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestServeCommand_Errors(t *testing.T) {
	t.Run("missing watch path", func(t *testing.T) {
		useConfig(t, "text")
		_, _, err := execute(t, NewServeCommand(), "", "--watch", "does-not-exist")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to watch")
	})

	t.Run("bad address", func(t *testing.T) {
		useConfig(t, "text")
		_, _, err := execute(t, NewServeCommand(), "", "--addr", "not-an-address")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to listen on")
	})
}

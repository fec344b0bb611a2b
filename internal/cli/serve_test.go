package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_StopsOnContextCancel(t *testing.T) {
	w := newWorkspace(t, twoScenes, "")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	cmd := NewServeCommand(w.rootOpts("text"))
	cmd.SetContext(ctx)

	done := make(chan error, 1)
	var out string
	go func() {
		var err error
		out, err = execute(t, cmd, "--listen", "127.0.0.1:0")
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
		assert.Contains(t, out, "Serving on http://127.0.0.1:0")
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after context cancellation")
	}
}

func TestServe_BadListenAddress(t *testing.T) {
	w := newWorkspace(t, twoScenes, "")

	_, err := execute(t, NewServeCommand(w.rootOpts("text")), "--listen", "not-an-address")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")
}

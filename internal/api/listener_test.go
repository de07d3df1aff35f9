package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListenAndServeDrainsOnContextCancel(t *testing.T) {
	a, _, err := setupAPIForTest()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.ListenAndServe(ctx, "localhost:0")
		close(done)
	}()

	// let the listener come up before asking it to stop
	time.Sleep(50 * time.Millisecond)
	cancel()
	WaitForShutdown()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after context cancel")
	}
}

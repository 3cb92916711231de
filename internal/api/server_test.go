package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/cardboard/internal/api"
	"github.com/mcoot/cardboard/internal/testutil"
)

func TestServerAddr(t *testing.T) {
	cfg := api.DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 9090

	server := api.NewServer(http.NotFoundHandler(), cfg, testutil.NopLogger())

	assert.Equal(t, "127.0.0.1:9090", server.Addr())
}

func TestServerShutdownRunsHooks(t *testing.T) {
	cfg := api.DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	server := api.NewServer(http.NotFoundHandler(), cfg, testutil.NopLogger())

	called := make(chan struct{})
	server.OnShutdown(func() { close(called) })

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	require.NoError(t, server.Shutdown(context.Background()))

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown hook was not called")
	}
	require.NoError(t, <-errCh)
}

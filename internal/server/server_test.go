package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/snaptop/client/internal/identity"
)

func TestCallbackServer(t *testing.T) {
	log, _ := test.NewNullLogger()
	widget := identity.NewGoogleWidget("client-123", log)
	srv := NewCallbackServer("127.0.0.1:0", widget, log)
	assert.Empty(t, srv.URL())

	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, srv.Shutdown(ctx))
	})
	assert.Error(t, srv.Start())

	resp, err := http.Get(srv.URL() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.LoginURL())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), srv.URL()+"/auth/google/callback"))
}

func TestCallbackServer_ShutdownBeforeStart(t *testing.T) {
	srv := NewCallbackServer("127.0.0.1:0", nil, nil)
	assert.NoError(t, srv.Shutdown(context.Background()))
}

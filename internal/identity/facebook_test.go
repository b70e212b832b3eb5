package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/snaptop/client/internal/models"
)

// fakeGraph mimics the Graph API endpoints used by the loader and device login
type fakeGraph struct {
	appCalls    int32
	statusCalls int32
	// pendingPolls is how many login_status polls answer "pending" before the
	// final answer in statusSubcode (0 means authorized)
	pendingPolls  int32
	statusSubcode int
	// statusError, when set, is the final login_status error body
	statusError string
	appDelay      time.Duration
	appStatus     int
}

func (g *fakeGraph) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v18.0/app-1", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&g.appCalls, 1)
		time.Sleep(g.appDelay)
		if r.URL.Query().Get("access_token") != "app-1|client-token" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`)
			return
		}
		if g.appStatus != 0 {
			w.WriteHeader(g.appStatus)
			fmt.Fprint(w, `{"error":{"message":"Unsupported get request","type":"GraphMethodException","code":100}}`)
			return
		}
		fmt.Fprint(w, `{"id":"app-1","name":"Snap Top"}`)
	})
	mux.HandleFunc("/v18.0/device/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "app-1|client-token", r.PostForm.Get("access_token"))
		fmt.Fprint(w, `{"code":"dev-code","user_code":"ABCD-1234","verification_uri":"https://www.facebook.com/device","expires_in":420,"interval":5}`)
	})
	mux.HandleFunc("/v18.0/device/login_status", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&g.statusCalls, 1)
		if n <= g.pendingPolls {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"message":"authorization pending","type":"OAuthException","code":31,"error_subcode":1349174}}`)
			return
		}
		if g.statusError != "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, g.statusError)
			return
		}
		if g.statusSubcode != 0 {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"error":{"message":"login failed","type":"OAuthException","code":31,"error_subcode":%d}}`, g.statusSubcode)
			return
		}
		fmt.Fprint(w, `{"access_token":"user-token","expires_in":5183944}`)
	})
	mux.HandleFunc("/v18.0/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "user-token", r.URL.Query().Get("access_token"))
		fmt.Fprint(w, `{"id":"fb-user-9"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newLoader(t *testing.T, srv *httptest.Server, clientToken string) *Loader {
	t.Helper()
	log, _ := test.NewNullLogger()
	return NewLoader(FacebookConfig{
		AppID:       "app-1",
		ClientToken: clientToken,
		GraphURL:    srv.URL,
		APIVersion:  "v18.0",
	}, srv.Client(), log)
}

func TestLoader_Load(t *testing.T) {
	t.Run("concurrent callers share one load", func(t *testing.T) {
		graph := &fakeGraph{appDelay: 50 * time.Millisecond}
		loader := newLoader(t, graph.server(t), "client-token")
		assert.Equal(t, StateNotLoaded, loader.State())

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, loader.Load(context.Background()))
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&graph.appCalls))
		assert.True(t, loader.IsReady())
		assert.Equal(t, "Snap Top", loader.App().Name)
		select {
		case <-loader.Ready():
		default:
			t.Fatal("ready channel not closed")
		}

		require.NoError(t, loader.Load(context.Background()))
		assert.Equal(t, int32(1), atomic.LoadInt32(&graph.appCalls))
	})

	t.Run("failure is terminal", func(t *testing.T) {
		graph := &fakeGraph{}
		loader := newLoader(t, graph.server(t), "wrong-token")

		err := loader.Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid OAuth access token")
		assert.Equal(t, StateFailed, loader.State())

		assert.Equal(t, err, loader.Load(context.Background()))
		assert.Equal(t, int32(1), atomic.LoadInt32(&graph.appCalls))
		assert.False(t, loader.IsReady())
	})

	t.Run("missing app config fails without a request", func(t *testing.T) {
		graph := &fakeGraph{}
		loader := newLoader(t, graph.server(t), "")
		assert.Error(t, loader.Load(context.Background()))
		assert.Zero(t, atomic.LoadInt32(&graph.appCalls))
	})

	t.Run("a cancelled caller does not cancel the load", func(t *testing.T) {
		graph := &fakeGraph{appDelay: 50 * time.Millisecond}
		loader := newLoader(t, graph.server(t), "client-token")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, loader.Load(ctx), context.Canceled)

		require.NoError(t, loader.Load(context.Background()))
		assert.True(t, loader.IsReady())
	})
}

func newFacebook(t *testing.T, graph *fakeGraph) (*FacebookSDK, *[]DevicePrompt) {
	t.Helper()
	loader := newLoader(t, graph.server(t), "client-token")
	require.NoError(t, loader.Load(context.Background()))
	prompts := &[]DevicePrompt{}
	prompt := func(_ context.Context, p DevicePrompt) error {
		*prompts = append(*prompts, p)
		return nil
	}
	return NewFacebookSDK(loader, prompt, WithPollInterval(time.Millisecond)), prompts
}

func TestFacebookSDK_SignIn(t *testing.T) {
	t.Run("before ready", func(t *testing.T) {
		graph := &fakeGraph{}
		loader := newLoader(t, graph.server(t), "client-token")
		sdk := NewFacebookSDK(loader, nil)

		o := sdk.SignIn(context.Background())
		assert.ErrorIs(t, o.Err, ErrNotReady)
	})

	t.Run("authorized after pending polls", func(t *testing.T) {
		graph := &fakeGraph{pendingPolls: 2}
		sdk, prompts := newFacebook(t, graph)

		o := sdk.SignIn(context.Background())
		require.NoError(t, o.Err)
		assert.Equal(t, &models.ProviderCredential{
			Provider:    models.ProviderFacebook,
			AccessToken: "user-token",
			UserID:      "fb-user-9",
		}, o.Credential)
		require.Len(t, *prompts, 1)
		assert.Equal(t, "ABCD-1234", (*prompts)[0].UserCode)
		assert.Equal(t, 7*time.Minute, (*prompts)[0].ExpiresIn)
		assert.Equal(t, int32(3), atomic.LoadInt32(&graph.statusCalls))
	})

	t.Run("expired code is a cancellation", func(t *testing.T) {
		graph := &fakeGraph{pendingPolls: 1, statusSubcode: subcodeCodeExpired}
		sdk, _ := newFacebook(t, graph)

		o := sdk.SignIn(context.Background())
		assert.True(t, o.Cancelled)
		assert.NoError(t, o.Err)
	})

	t.Run("declined login is a cancellation", func(t *testing.T) {
		graph := &fakeGraph{
			pendingPolls: 1,
			statusError:  `{"error":{"message":"The user declined the login request","type":"access_denied","code":31}}`,
		}
		sdk, _ := newFacebook(t, graph)

		o := sdk.SignIn(context.Background())
		assert.True(t, o.Cancelled)
		assert.NoError(t, o.Err)
		assert.Equal(t, int32(2), atomic.LoadInt32(&graph.statusCalls))
	})

	t.Run("context cancellation while polling", func(t *testing.T) {
		graph := &fakeGraph{pendingPolls: 1 << 20}
		sdk, _ := newFacebook(t, graph)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		o := sdk.SignIn(ctx)
		assert.True(t, o.Cancelled)
	})

	t.Run("other graph errors fail", func(t *testing.T) {
		graph := &fakeGraph{statusSubcode: 1}
		sdk, _ := newFacebook(t, graph)

		o := sdk.SignIn(context.Background())
		assert.False(t, o.Cancelled)
		var gerr *GraphError
		require.ErrorAs(t, o.Err, &gerr)
		assert.Equal(t, 1, gerr.Subcode)
	})
}

func TestLoadState_String(t *testing.T) {
	assert.Equal(t, "not_loaded", StateNotLoaded.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
}

package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/snaptop/client/internal/models"
)

const testClientID = "client-123.apps.googleusercontent.com"

func idToken(t *testing.T, aud string, exp time.Time) string {
	t.Helper()
	claims := GoogleClaims{
		Email: "ada@example.com",
		Name:  "Ada",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://accounts.google.com",
			Subject:   "1234",
			Audience:  jwt.ClaimStrings{aud},
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-google"))
	require.NoError(t, err)
	return signed
}

func newWidget(t *testing.T) *GoogleWidget {
	t.Helper()
	log, _ := test.NewNullLogger()
	return NewGoogleWidget(testClientID, log)
}

// signInAsync starts SignIn and waits until it is pending
func signInAsync(t *testing.T, ctx context.Context, w *GoogleWidget) <-chan Outcome {
	t.Helper()
	out := make(chan Outcome, 1)
	go func() { out <- w.SignIn(ctx) }()
	require.Eventually(t, w.Pending, time.Second, 5*time.Millisecond)
	return out
}

func TestGoogleWidget_Complete(t *testing.T) {
	t.Run("valid credential succeeds", func(t *testing.T) {
		w := newWidget(t)
		out := signInAsync(t, context.Background(), w)
		token := idToken(t, testClientID, time.Now().Add(time.Hour))

		assert.True(t, w.Complete(token, nil))
		o := <-out
		require.NoError(t, o.Err)
		assert.Equal(t, &models.ProviderCredential{Provider: models.ProviderGoogle, Credential: token}, o.Credential)
		assert.False(t, w.Pending())
	})

	t.Run("completes exactly once", func(t *testing.T) {
		w := newWidget(t)
		out := signInAsync(t, context.Background(), w)

		assert.True(t, w.Complete("", nil))
		assert.False(t, w.Complete(idToken(t, testClientID, time.Now().Add(time.Hour)), nil))
		o := <-out
		assert.ErrorIs(t, o.Err, ErrNoCredential)
		assert.Equal(t, "no credential received from google", o.Err.Error())
	})

	t.Run("rejects unusable credentials", func(t *testing.T) {
		cases := []struct {
			name  string
			token func(t *testing.T) string
			want  error
		}{
			{"expired", func(t *testing.T) string { return idToken(t, testClientID, time.Now().Add(-time.Minute)) }, ErrCredentialExpired},
			{"other audience", func(t *testing.T) string { return idToken(t, "someone-else", time.Now().Add(time.Hour)) }, ErrWrongAudience},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				w := newWidget(t)
				out := signInAsync(t, context.Background(), w)
				w.Complete(tc.token(t), nil)
				assert.ErrorIs(t, (<-out).Err, tc.want)
			})
		}

		w := newWidget(t)
		out := signInAsync(t, context.Background(), w)
		w.Complete("not.a.jwt", nil)
		assert.Error(t, (<-out).Err)
	})

	t.Run("widget error is a failure", func(t *testing.T) {
		w := newWidget(t)
		out := signInAsync(t, context.Background(), w)
		w.Complete("", errors.New("popup_failed_to_open"))
		o := <-out
		assert.False(t, o.Cancelled)
		assert.EqualError(t, o.Err, "popup_failed_to_open")
	})

	t.Run("callback without sign-in is ignored", func(t *testing.T) {
		w := newWidget(t)
		assert.False(t, w.Complete("anything", nil))
	})
}

func TestGoogleWidget_SignIn(t *testing.T) {
	t.Run("context cancellation is a cancellation", func(t *testing.T) {
		w := newWidget(t)
		ctx, cancel := context.WithCancel(context.Background())
		out := signInAsync(t, ctx, w)
		cancel()

		o := <-out
		assert.True(t, o.Cancelled)
		_, err := o.Result()
		assert.ErrorIs(t, err, ErrCancelled)
		assert.False(t, w.Complete(idToken(t, testClientID, time.Now().Add(time.Hour)), nil))
	})

	t.Run("one sign-in at a time", func(t *testing.T) {
		w := newWidget(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		_ = signInAsync(t, ctx, w)

		o := w.SignIn(context.Background())
		assert.ErrorIs(t, o.Err, ErrSignInInProgress)
	})
}

func TestSource(t *testing.T) {
	w := newWidget(t)
	src := Source{Provider: w}
	assert.Equal(t, models.ProviderGoogle, src.Name())

	go func() {
		for !w.Pending() {
			time.Sleep(time.Millisecond)
		}
		w.Complete(idToken(t, testClientID, time.Now().Add(time.Hour)), nil)
	}()
	cred, err := src.Credential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGoogle, cred.Provider)
}

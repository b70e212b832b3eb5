package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/snaptop/client/internal/models"
)

// LoginService runs a sign-in from provider credential to stored session
type LoginService struct {
	exchanger CredentialExchanger
	sessions  SessionWriter
	log       logrus.FieldLogger
}

// NewLoginService creates a LoginService
func NewLoginService(exchanger CredentialExchanger, sessions SessionWriter, log logrus.FieldLogger) *LoginService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LoginService{exchanger: exchanger, sessions: sessions, log: log.WithField("component", "login")}
}

// SignIn obtains a credential from source, exchanges it with the backend and
// stores the resulting session. Cancellation returns ErrProviderCancelled.
func (s *LoginService) SignIn(ctx context.Context, source CredentialSource) (*models.AuthResponse, error) {
	log := s.log.WithField("provider", source.Name())

	cred, err := source.Credential(ctx)
	if err != nil {
		if errors.Is(err, models.ErrSignInCancelled) {
			log.Info("sign-in cancelled by user")
			return nil, ErrProviderCancelled
		}
		log.WithError(err).Error("provider sign-in failed")
		return nil, err
	}

	resp, err := s.exchanger.Authenticate(ctx, *cred)
	if err != nil {
		log.WithError(err).Error("credential exchange failed")
		return nil, err
	}

	if err := s.sessions.Login(ctx, resp.User, resp.Token); err != nil {
		// the process is signed in even if the snapshot could not be written
		log.WithError(err).Warn("failed to persist session")
	}
	log.WithField("user_id", resp.User.UserID).Info("signed in")
	return resp, nil
}

// SignOut ends the current session
func (s *LoginService) SignOut(ctx context.Context) error {
	if err := s.sessions.Logout(ctx); err != nil {
		return errors.Wrap(err, "failed to clear session")
	}
	s.log.Info("signed out")
	return nil
}

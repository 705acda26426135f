package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/cryptox"
	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/auth"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/config"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/notify"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Session is the result of a completed login.
type Session struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      *models.UserView `json:"user"`
}

// AuthDeps are the collaborators of AuthService.
type AuthDeps struct {
	DB          *sql.DB
	Repos       repomanager.RepositoryManager
	OTPs        *OTPManager
	ResetTokens *ResetTokenManager
	Issuer      *auth.Issuer
	Notifier    notify.Notifier
	// Dispatcher sends welcome emails in the background. Nil sends them
	// inline and only logs failures.
	Dispatcher *notify.Dispatcher
}

// AuthService drives the account flows: register, password login followed
// by an emailed one-time code, and password reset by emailed link. Sessions
// are stateless signed tokens.
type AuthService struct {
	deps                    AuthDeps
	repoTimeout             time.Duration
	notifyTimeout           time.Duration
	frontendURL             string
	hideUnknownEmailOnReset bool

	hasher *cryptox.Hasher
	log    logging.Logger
}

func NewAuthService(deps AuthDeps, cfg *config.Config, opts ...Option) *AuthService {
	o := buildOptions(opts)
	return &AuthService{
		deps:                    deps,
		repoTimeout:             cfg.RepoTimeout,
		notifyTimeout:           cfg.NotifyTimeout,
		frontendURL:             strings.TrimRight(cfg.FrontendURL, "/"),
		hideUnknownEmailOnReset: cfg.HideUnknownEmailOnReset,
		hasher:                  o.hasher,
		log:                     o.log.With("module", "auth"),
	}
}

// Register creates an account. The welcome email is queued afterwards and
// its failure never undoes the registration.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.UserView, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if email, err = validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	repo := s.deps.Repos.Users(s.deps.DB)

	err = bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		_, err := repo.FindByEmail(ctx, email)
		return err
	})
	switch {
	case err == nil:
		return nil, common.ErrEmailTaken
	case !errors.Is(err, common.ErrorNotFound):
		return nil, storageErr(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, common.Internal(err)
	}

	var user *models.User
	err = bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		var err error
		user, err = repo.Create(ctx, &models.User{
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			Role:         common.RoleUser,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrEmailTaken
		}
		return nil, storageErr(err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	s.welcome(ctx, user)

	return user.View(), nil
}

func (s *AuthService) welcome(ctx context.Context, user *models.User) {
	if s.deps.Dispatcher != nil {
		if !s.deps.Dispatcher.Welcome(ctx, s.deps.Notifier, user.Email, user.Name) {
			s.log.Warn(ctx, "welcome email not queued", "user_id", user.ID)
		}
		return
	}
	err := bounded(ctx, s.notifyTimeout, func(ctx context.Context) error {
		return s.deps.Notifier.SendWelcome(ctx, user.Email, user.Name)
	})
	if err != nil {
		s.log.Error(ctx, "welcome email failed", "user_id", user.ID, "error", err)
	}
}

// Login checks the password and emails a fresh one-time code. It returns the
// user id the code must be verified against, never the code. Unknown email
// and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		s.hasher.CompareDummy(password)
		return "", common.ErrInvalidCredentials
	}

	var user *models.User
	err := bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		var err error
		user, err = s.deps.Repos.Users(s.deps.DB).FindByEmail(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.CompareDummy(password)
			return "", common.ErrInvalidCredentials
		}
		return "", storageErr(err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return "", common.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}

	var code string
	err = bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		var err error
		code, err = s.deps.OTPs.Issue(ctx, user.ID)
		return err
	})
	if err != nil {
		return "", err
	}

	err = bounded(ctx, s.notifyTimeout, func(ctx context.Context) error {
		return s.deps.Notifier.SendOTP(ctx, user.Email, user.Name, code)
	})
	if err != nil {
		s.log.Error(ctx, "otp email failed", "user_id", user.ID, "error", err)
		// The caller never received this code; leave no live record behind.
		if derr := bounded(context.WithoutCancel(ctx), s.repoTimeout, func(ctx context.Context) error {
			return s.deps.OTPs.Discard(ctx, user.ID)
		}); derr != nil {
			s.log.Warn(ctx, "failed to discard undelivered otp", "user_id", user.ID, "error", derr)
		}
		return "", deliveryErr(err)
	}

	s.log.Info(ctx, "otp sent", "user_id", user.ID)
	return user.ID, nil
}

func (s *AuthService) rehash(ctx context.Context, userID, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
			return s.deps.Repos.Users(s.deps.DB).SetPassword(ctx, userID, hash)
		})
	}
	if err != nil {
		s.log.Warn(ctx, "password rehash failed", "user_id", userID, "error", err)
		return
	}
	s.log.Info(ctx, "password hash upgraded", "user_id", userID)
}

// VerifyOTP completes a login. Any failure leaves the user awaiting a code;
// once the code expires a new Login is required.
func (s *AuthService) VerifyOTP(ctx context.Context, userID, code string) (*Session, error) {
	userID = strings.TrimSpace(userID)
	code = strings.TrimSpace(code)
	if userID == "" {
		return nil, common.Validation("User id is required")
	}
	if err := validateCode(code); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		return s.deps.OTPs.Verify(ctx, user.ID, code)
	})
	if err != nil {
		s.log.Info(ctx, "otp verification failed", "user_id", user.ID, "reason", common.AsAppError(err).Code)
		return nil, err
	}

	token, exp, err := s.deps.Issuer.Mint(user.ID)
	if err != nil {
		return nil, common.Internal(err)
	}

	s.log.Info(ctx, "login completed", "user_id", user.ID)
	return &Session{Token: token, ExpiresAt: exp, User: user.View()}, nil
}

// ForgotPassword emails a reset link. With hideUnknownEmailOnReset an
// unknown address succeeds silently, otherwise it is ErrUserNotFound.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = models.NormalizeEmail(email)
	if email == "" {
		return common.Validation("Email is required")
	}

	var user *models.User
	err := bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		var err error
		user, err = s.deps.Repos.Users(s.deps.DB).FindByEmail(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			if s.hideUnknownEmailOnReset {
				return nil
			}
			return common.ErrUserNotFound
		}
		return storageErr(err)
	}

	var token string
	err = bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		var err error
		token, err = s.deps.ResetTokens.Issue(ctx, user.ID)
		return err
	})
	if err != nil {
		return err
	}

	err = bounded(ctx, s.notifyTimeout, func(ctx context.Context) error {
		return s.deps.Notifier.SendPasswordReset(ctx, user.Email, user.Name, s.ResetURL(token))
	})
	if err != nil {
		s.log.Error(ctx, "reset email failed", "user_id", user.ID, "error", err)
		if rerr := bounded(context.WithoutCancel(ctx), s.repoTimeout, func(ctx context.Context) error {
			return s.deps.ResetTokens.Revoke(ctx, user.ID)
		}); rerr != nil {
			s.log.Warn(ctx, "failed to revoke undelivered reset token", "user_id", user.ID, "error", rerr)
		}
		return deliveryErr(err)
	}

	s.log.Info(ctx, "reset email sent", "user_id", user.ID)
	return nil
}

// ResetURL is the frontend page a reset token is redeemed on.
func (s *AuthService) ResetURL(token string) string {
	return s.frontendURL + "/reset-password/" + token
}

// ResetPassword redeems token. It succeeds at most once per token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return common.Validation("Token is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	var userID string
	err := bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		var err error
		userID, err = s.deps.ResetTokens.Consume(ctx, token, newPassword)
		return err
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "password reset", "user_id", userID)
	return nil
}

// Logout has nothing to revoke: sessions are self-contained. Transports
// clear the session cookie.
func (s *AuthService) Logout(ctx context.Context) {
	s.log.Debug(ctx, "logout")
}

// Authenticate resolves a session token to its user. Every failure, including
// a token for a deleted account, is ErrNotAuthorized; the reason is logged.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.UserView, error) {
	if token == "" {
		return nil, common.ErrNotAuthorized
	}

	userID, err := s.deps.Issuer.Validate(token)
	if err != nil {
		s.log.Debug(ctx, "session rejected", "reason", err.Error())
		return nil, common.ErrNotAuthorized.WithCause(err)
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, common.ErrNotAuthorized.WithCause(err)
		}
		return nil, err
	}
	return user.View(), nil
}

func (s *AuthService) findUser(ctx context.Context, id string) (*models.User, error) {
	// ids are UUIDs in every backend; anything else cannot match
	if uuid.Validate(id) != nil {
		return nil, common.ErrUserNotFound
	}

	var user *models.User
	err := bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		var err error
		user, err = s.deps.Repos.Users(s.deps.DB).FindByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, storageErr(err)
	}
	return user, nil
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/cryptox"
	"github.com/Silas-Hakuzwimana/streamforge/internal/dbx"
	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/config"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/repomanager"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/storage"
)

// ProfileInput is a profile edit. Nil or blank fields are left unchanged.
type ProfileInput struct {
	Name    *string
	Bio     *string
	Picture *Upload
}

// ProfileService lets an authenticated user manage their own account.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.Store
	repoTimeout time.Duration

	now    func() time.Time
	hasher *cryptox.Hasher
	log    logging.Logger
}

func NewProfileService(db *sql.DB, rm repomanager.RepositoryManager, store storage.Store, cfg *config.Config, opts ...Option) *ProfileService {
	o := buildOptions(opts)
	return &ProfileService{
		db:          db,
		repomanager: rm,
		store:       store,
		repoTimeout: cfg.RepoTimeout,
		now:         o.now,
		hasher:      o.hasher,
		log:         o.log.With("module", "profile"),
	}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, in ProfileInput) (*models.Profile, error) {
	var upd models.ProfileUpdate

	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		name, err := validateName(*in.Name)
		if err != nil {
			return nil, err
		}
		upd.Name = &name
	}
	if in.Bio != nil && strings.TrimSpace(*in.Bio) != "" {
		bio := strings.TrimSpace(*in.Bio)
		if utf8.RuneCountInString(bio) > maxBioLen {
			return nil, common.Validation("Bio is too long")
		}
		upd.Bio = &bio
	}

	if in.Picture != nil {
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(in.Picture.ContentType)), "image/") {
			return nil, common.Validation("Only image files are allowed")
		}
		key := storage.Key(userID, in.Picture.FileName, s.now())
		url, err := s.store.Put(ctx, key, in.Picture.ContentType, in.Picture.Body, in.Picture.Size)
		if err != nil {
			return nil, common.Transient("Profile picture upload failed", err)
		}
		upd.ProfilePic = &url
	}

	var user *models.User
	err := bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		var err error
		user, err = s.repomanager.Users(s.db).UpdateProfile(ctx, userID, upd)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, storageErr(err)
	}

	s.log.Info(ctx, "profile updated", "user_id", userID)
	return user.Profile(), nil
}

// ChangePassword replaces the password after checking the current one.
func (s *ProfileService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" {
		return common.Validation("Current password is required")
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(user.PasswordHash, current) {
		return common.ErrWrongPassword
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return common.Internal(err)
	}
	err = bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		return s.repomanager.Users(s.db).SetPassword(ctx, userID, hash)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return storageErr(err)
	}

	s.log.Info(ctx, "password changed", "user_id", userID)
	return nil
}

// DeleteAccount removes the user together with their login code and media
// records. Stored objects are left in the bucket.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	err := bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		return s.repomanager.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
			if err := s.repomanager.OTPs(tx).DeleteByOwner(ctx, userID); err != nil {
				return err
			}
			if _, err := s.repomanager.Media(tx).DeleteByOwner(ctx, userID); err != nil {
				return err
			}
			return s.repomanager.Users(tx).DeleteByID(ctx, userID)
		})
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return storageErr(err)
	}

	s.log.Info(ctx, "account deleted", "user_id", userID)
	return nil
}

func (s *ProfileService) find(ctx context.Context, userID string) (*models.User, error) {
	var user *models.User
	err := bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		var err error
		user, err = s.repomanager.Users(s.db).FindByID(ctx, userID)
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

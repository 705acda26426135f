package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/config"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/repositories/repomanager"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/storage"
)

// HistoryLimit caps the number of records History returns.
const HistoryLimit = 100

// MediaItem is a media record with a short-lived download link.
type MediaItem struct {
	*models.Media
	DownloadURL string `json:"downloadUrl"`
}

// MediaService stores user uploads and lists them back.
type MediaService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.Store
	repoTimeout time.Duration

	now func() time.Time
	log logging.Logger
}

func NewMediaService(db *sql.DB, rm repomanager.RepositoryManager, store storage.Store, cfg *config.Config, opts ...Option) *MediaService {
	o := buildOptions(opts)
	return &MediaService{
		db:          db,
		repomanager: rm,
		store:       store,
		repoTimeout: cfg.RepoTimeout,
		now:         o.now,
		log:         o.log.With("module", "media"),
	}
}

// Upload puts the file in object storage and records it for userID.
func (s *MediaService) Upload(ctx context.Context, userID string, up Upload) (*models.Media, error) {
	if up.Body == nil || strings.TrimSpace(up.FileName) == "" {
		return nil, common.Validation("No file provided")
	}

	typ := MediaType(up.ContentType)
	key := storage.Key(userID, up.FileName, s.now())

	url, err := s.store.Put(ctx, key, up.ContentType, up.Body, up.Size)
	if err != nil {
		return nil, common.Transient("Upload failed", err)
	}

	var m *models.Media
	err = bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		var err error
		m, err = s.repomanager.Media(s.db).Create(ctx, &models.Media{
			UserID:     userID,
			Type:       typ,
			CloudURL:   url,
			FileName:   up.FileName,
			Source:     models.SourceUpload,
			StorageKey: key,
		})
		return err
	})
	if err != nil {
		if derr := s.store.Delete(context.WithoutCancel(ctx), key); derr != nil {
			s.log.Warn(ctx, "failed to remove orphaned object", "key", key, "error", derr)
		}
		return nil, storageErr(err)
	}

	s.log.Info(ctx, "media uploaded", "user_id", userID, "media_id", m.ID, "type", typ)
	return m, nil
}

// History lists the newest uploads of userID with presigned download links.
func (s *MediaService) History(ctx context.Context, userID string) ([]*MediaItem, error) {
	var list []*models.Media
	err := bounded(ctx, s.repoTimeout, func(ctx context.Context) error {
		var err error
		list, err = s.repomanager.Media(s.db).ListByOwner(ctx, userID, HistoryLimit)
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}

	items := make([]*MediaItem, 0, len(list))
	for _, m := range list {
		item := &MediaItem{Media: m}
		if m.StorageKey != "" {
			link, err := s.store.PresignGet(ctx, m.StorageKey, storage.PresignTTL)
			if err != nil {
				s.log.Warn(ctx, "presign failed", "media_id", m.ID, "error", err)
			} else {
				item.DownloadURL = link
			}
		}
		items = append(items, item)
	}
	return items, nil
}

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"primetime/internal/config"
	"primetime/internal/logging"
	"primetime/internal/mediastore"
	"primetime/internal/metadata"
	"primetime/internal/platform"
	"primetime/internal/queue"
	"primetime/internal/services"
)

// Submission is one incoming video, either a locally downloaded file or an
// already staged share link.
type Submission struct {
	LocalPath string
	Link      string
	Filename  string
	Caption   string
	Platform  string
	Channel   string
}

// QuotaSnapshot reports how much of a platform's daily quota is consumed.
type QuotaSnapshot struct {
	Platform  string
	Date      string
	Used      int
	Quota     int
	Remaining int
}

// Service stages submissions into the object store and appends them to the
// queue at pending.
type Service struct {
	cfg      *config.Config
	store    *queue.Store
	media    mediastore.ObjectStore
	metadata metadata.Generator
	location *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes the service.
type Option func(*Service)

// WithClock overrides the quota-day clock (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the front door against its collaborators.
func NewService(cfg *config.Config, store *queue.Store, media mediastore.ObjectStore, generator metadata.Generator, logger *slog.Logger, opts ...Option) *Service {
	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		location = time.UTC
	}
	service := &Service{
		cfg:      cfg,
		store:    store,
		media:    media,
		metadata: generator,
		location: location,
		logger:   logging.NewComponentLogger(logger, "ingest"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Enqueue validates a submission, stages its file if needed, and appends the
// queue row at pending. Metadata is generated eagerly so an operator caption
// is not lost; the returned snapshot tells the caller how much quota the
// bucket has left today.
func (s *Service) Enqueue(ctx context.Context, sub Submission) (*queue.Item, QuotaSnapshot, error) {
	var snapshot QuotaSnapshot

	platformName, err := s.resolvePlatform(sub.Platform)
	if err != nil {
		return nil, snapshot, err
	}
	channel, err := s.resolveChannel(platformName, sub.Channel)
	if err != nil {
		return nil, snapshot, err
	}
	filename := strings.TrimSpace(sub.Filename)
	if filename == "" {
		filename = filepath.Base(strings.TrimSpace(sub.LocalPath))
	}
	if filename == "" || filename == "." {
		return nil, snapshot, services.Wrap(services.ErrValidation, "ingest", "enqueue", "filename required", nil)
	}

	sourceLink, err := s.resolveSourceLink(ctx, sub)
	if err != nil {
		return nil, snapshot, err
	}

	item, err := s.store.NewItem(ctx, filename, sourceLink, platformName, channel)
	if err != nil {
		return nil, snapshot, fmt.Errorf("append queue item: %w", err)
	}

	s.generateMetadata(ctx, item, sub.Caption)
	s.removeLocalFile(sub.LocalPath)

	snapshot, err = s.Quota(ctx, platformName)
	if err != nil {
		return item, QuotaSnapshot{}, err
	}
	s.logger.Info("item queued",
		logging.Int64("item_id", item.ID),
		logging.String("filename", item.Filename),
		logging.String("platform", platformName),
	)
	return item, snapshot, nil
}

// Quota reports the platform's daily usage for today in the publish timezone.
func (s *Service) Quota(ctx context.Context, platformName string) (QuotaSnapshot, error) {
	today := s.now().In(s.location).Format(queue.DateFormat)
	used, err := s.store.CountUploaded(ctx, platformName, today)
	if err != nil {
		return QuotaSnapshot{}, fmt.Errorf("count uploaded: %w", err)
	}
	quota := s.dailyQuota(platformName)
	remaining := quota - used
	if remaining < 0 {
		remaining = 0
	}
	return QuotaSnapshot{
		Platform:  platformName,
		Date:      today,
		Used:      used,
		Quota:     quota,
		Remaining: remaining,
	}, nil
}

func (s *Service) resolvePlatform(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", services.Wrap(services.ErrValidation, "ingest", "enqueue", "platform required", nil)
	}
	for _, enabled := range s.cfg.EnabledPlatforms() {
		if name == enabled {
			return name, nil
		}
	}
	return "", services.Wrap(services.ErrValidation, "ingest", "enqueue", fmt.Sprintf("platform %q is not enabled", name), nil)
}

func (s *Service) resolveChannel(platformName, channel string) (string, error) {
	if platformName != platform.YouTube {
		return "", nil
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = s.cfg.Platform.YouTube.DefaultChannel
	}
	for _, known := range s.cfg.Platform.YouTube.Channels {
		if strings.EqualFold(channel, known) {
			return known, nil
		}
	}
	return "", services.Wrap(services.ErrValidation, "ingest", "enqueue", fmt.Sprintf("unknown channel %q", channel), nil)
}

func (s *Service) resolveSourceLink(ctx context.Context, sub Submission) (string, error) {
	if local := strings.TrimSpace(sub.LocalPath); local != "" {
		return s.stageLocalFile(ctx, local)
	}
	link := strings.TrimSpace(sub.Link)
	if link == "" {
		return "", services.Wrap(services.ErrValidation, "ingest", "enqueue", "a file or staged link is required", nil)
	}
	if _, ok := mediastore.ExtractKey(link); !ok {
		return "", services.Wrap(services.ErrValidation, "ingest", "enqueue", fmt.Sprintf("unrecognized media link %q", link), nil)
	}
	return link, nil
}

// stageLocalFile uploads a downloaded chat file into the bucket under a fresh
// key. The key keeps the original extension so materialized copies stay
// playable by name.
func (s *Service) stageLocalFile(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "ingest", "stage", "open submitted file", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "ingest", "stage", "stat submitted file", err)
	}

	key := uuid.NewString() + strings.ToLower(filepath.Ext(localPath))
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.media.Put(ctx, key, file, info.Size(), contentType); err != nil {
		return "", services.Wrap(services.ErrExternalService, "ingest", "stage", "upload to media store", err)
	}
	return s.media.ShareLink(key), nil
}

func (s *Service) generateMetadata(ctx context.Context, item *queue.Item, caption string) {
	if s.metadata == nil || item.HasMetadata() {
		return
	}
	meta, err := s.metadata.Generate(ctx, item.Filename, caption)
	if err != nil {
		s.logger.Warn("eager metadata generation failed",
			logging.Int64("item_id", item.ID),
			logging.Error(err),
		)
		return
	}
	item.SetMetadata(meta.Title, meta.Description, meta.Tags)
	if err := s.store.Update(ctx, item); err != nil {
		s.logger.Warn("persist generated metadata failed",
			logging.Int64("item_id", item.ID),
			logging.Error(err),
		)
	}
}

func (s *Service) removeLocalFile(localPath string) {
	localPath = strings.TrimSpace(localPath)
	if localPath == "" {
		return
	}
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("remove submitted temp file failed",
			logging.String("path", localPath),
			logging.Error(err),
		)
	}
}

func (s *Service) dailyQuota(platformName string) int {
	switch platformName {
	case platform.YouTube:
		return s.cfg.Platform.YouTube.DailyQuota
	case platform.Reels:
		return s.cfg.Platform.Reels.DailyQuota
	default:
		return 0
	}
}

package metadata

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"primetime/internal/logging"
)

const generationPrompt = `You generate publishing metadata for short social videos.
Given a source filename, respond with a single JSON object:
{"title": "...", "description": "...", "tags": ["...", "..."]}
The title must be engaging and at most 100 characters. The description should
be one or two sentences. Provide three to six short lowercase tags. Respond
with JSON only.`

// Metadata is the generated publishing copy for one video.
type Metadata struct {
	Title       string
	Description string
	Tags        string
}

// Generator produces publishing metadata for a source filename. The hint is
// optional operator-supplied context such as a chat caption.
type Generator interface {
	Generate(ctx context.Context, filename, hint string) (Metadata, error)
}

var titleCaser = cases.Title(language.English)

// Fallback derives deterministic metadata from the filename alone. It is the
// result when no LLM is configured or the model call fails: the title is the
// base name with underscores flattened and title-cased, the description names
// the file, and the tags are a single generic marker.
func Fallback(filename string) Metadata {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	cleaned := strings.ReplaceAll(base, "_", " ")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	title := titleCaser.String(cleaned)
	if title == "" {
		title = filepath.Base(filename)
	}
	return Metadata{
		Title:       title,
		Description: "Video: " + filepath.Base(filename),
		Tags:        "video",
	}
}

// Service generates metadata through the configured client and falls back to
// filename-derived copy when the model is unavailable.
type Service struct {
	client *Client
	logger *slog.Logger
}

// NewService builds a metadata service. A nil client means every request is
// served by the fallback.
func NewService(client *Client, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		logger: logging.NewComponentLogger(logger, "metadata"),
	}
}

// Generate returns publishing metadata for the filename. Model failures are
// logged and absorbed; the caller always receives usable metadata.
func (s *Service) Generate(ctx context.Context, filename, hint string) (Metadata, error) {
	if s.client == nil {
		return Fallback(filename), nil
	}
	generated, err := s.client.Generate(ctx, filename, hint)
	if err != nil {
		if ctx.Err() != nil {
			return Metadata{}, ctx.Err()
		}
		s.logger.Warn("metadata generation failed, using fallback",
			logging.String("filename", filename),
			logging.Error(err),
		)
		return Fallback(filename), nil
	}
	return generated, nil
}

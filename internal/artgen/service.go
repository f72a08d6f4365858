// Package artgen orchestrates themed asset generation: build the prompt, run
// the provider job, then resolve, download or post-process the outputs.
package artgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bingoart/internal/infra"
	"bingoart/internal/prompt"
	"bingoart/internal/providers/scenario"
)

// ErrCredentialsMissing is returned before any provider call when the key
// pair is not configured.
var ErrCredentialsMissing = errors.New("Scenario API credentials are not set")

// ErrNoResult means the provider produced no job at all.
var ErrNoResult = errors.New("generation returned no result")

// CredentialsError names the configuration keys that still need a value.
type CredentialsError struct {
	Missing []string
}

func (e *CredentialsError) Error() string {
	if len(e.Missing) == 0 {
		return ErrCredentialsMissing.Error() + " in environment variables."
	}
	return fmt.Sprintf("%s in environment variables: missing %s", ErrCredentialsMissing, strings.Join(e.Missing, ", "))
}

func (e *CredentialsError) Unwrap() error { return ErrCredentialsMissing }

// Generator is the provider surface the service needs.
type Generator interface {
	HasCredentials() bool
	Generate(ctx context.Context, modelID string, req scenario.GenerationRequest) (*scenario.Job, error)
	ResolveURL(ctx context.Context, assetID string) (string, error)
	Download(ctx context.Context, assetID, destDir string) (string, error)
}

// BackgroundRemover turns an image URL into a transparent data URI.
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, imageURL string) (string, error)
}

// Settings carries the generation parameters resolved from configuration.
type Settings struct {
	VideoModelID    string
	ImageModelID    string
	VideoResolution string
	DownloadAssets  bool
	DownloadDir     string
	// MissingCredentials lists unset keys, used in the error message.
	MissingCredentials []string
}

// SettingsFromConfig copies the relevant fields out of cfg.
func SettingsFromConfig(cfg *infra.Config) Settings {
	return Settings{
		VideoModelID:       cfg.VideoModelID,
		ImageModelID:       cfg.ImageModelID,
		VideoResolution:    cfg.VideoResolution,
		DownloadAssets:     cfg.DownloadAssets,
		DownloadDir:        cfg.DownloadDir,
		MissingCredentials: cfg.MissingCredentials(),
	}
}

// VideoResult is the outcome of a background-video generation.
type VideoResult struct {
	Job        *scenario.Job
	AssetIDs   []string
	AssetURLs  []string
	Downloaded []string
}

// ImageResult is the outcome of an image generation. AssetURLs prefers the
// background-removed data URI and falls back to the original URL per asset.
type ImageResult struct {
	Job          *scenario.Job
	AssetIDs     []string
	AssetURLs    []string
	OriginalURLs []string
}

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	gen      Generator
	remover  BackgroundRemover
	settings Settings
	logger   *infra.Logger
}

func NewService(gen Generator, remover BackgroundRemover, settings Settings, logger *infra.Logger) *Service {
	if settings.VideoModelID == "" {
		settings.VideoModelID = "model_veo3-1"
	}
	if settings.ImageModelID == "" {
		settings.ImageModelID = "flux.1-dev"
	}
	if settings.VideoResolution == "" {
		settings.VideoResolution = "1080p"
	}
	if settings.DownloadDir == "" {
		settings.DownloadDir = "./video"
	}
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Service{gen: gen, remover: remover, settings: settings, logger: logger}
}

func (s *Service) ensureCredentials() error {
	if s.gen == nil || !s.gen.HasCredentials() {
		missing := s.settings.MissingCredentials
		if len(missing) == 0 {
			missing = []string{"SCENARIO_API_KEY", "SCENARIO_API_SECRET"}
		}
		return &CredentialsError{Missing: missing}
	}
	return nil
}

// GenerateBackground renders the looping background video for theme. When
// download is set, or downloads are enabled in configuration, every asset is
// also saved under the download directory.
func (s *Service) GenerateBackground(ctx context.Context, theme string, download bool) (*VideoResult, error) {
	if err := s.ensureCredentials(); err != nil {
		return nil, err
	}
	noAudio := false
	job, err := s.run(ctx, s.settings.VideoModelID, scenario.GenerationRequest{
		Prompt:        prompt.Build(prompt.KindBackgroundVideo, theme),
		GenerateAudio: &noAudio,
		AspectRatio:   "16:9",
		Duration:      8,
		Resolution:    s.settings.VideoResolution,
	})
	if err != nil {
		return nil, err
	}

	result := &VideoResult{
		Job:        job,
		AssetIDs:   job.AssetIDs(),
		AssetURLs:  []string{},
		Downloaded: []string{},
	}
	if job.Status != scenario.StatusSuccess {
		return result, nil
	}
	result.AssetURLs = s.resolveAll(ctx, result.AssetIDs)

	if download || s.settings.DownloadAssets {
		for _, id := range result.AssetIDs {
			path, err := s.gen.Download(ctx, id, s.settings.DownloadDir)
			if err != nil {
				s.logger.Warn().Err(err).Str("asset_id", id).Msg("artgen: download skipped")
				continue
			}
			result.Downloaded = append(result.Downloaded, path)
		}
	}
	return result, nil
}

// GenerateCard renders square bingo card art for theme.
func (s *Service) GenerateCard(ctx context.Context, theme string) (*ImageResult, error) {
	return s.generateImage(ctx, prompt.KindBingoCard, theme, "1:1")
}

// GenerateBallCaller renders the widescreen ball-caller panel for theme.
func (s *Service) GenerateBallCaller(ctx context.Context, theme string) (*ImageResult, error) {
	return s.generateImage(ctx, prompt.KindBallCaller, theme, "16:9")
}

func (s *Service) generateImage(ctx context.Context, kind prompt.Kind, theme, aspect string) (*ImageResult, error) {
	if err := s.ensureCredentials(); err != nil {
		return nil, err
	}
	job, err := s.run(ctx, s.settings.ImageModelID, scenario.GenerationRequest{
		Prompt:      prompt.Build(kind, theme),
		AspectRatio: aspect,
	})
	if err != nil {
		return nil, err
	}

	result := &ImageResult{
		Job:          job,
		AssetIDs:     job.AssetIDs(),
		AssetURLs:    []string{},
		OriginalURLs: []string{},
	}
	if job.Status != scenario.StatusSuccess {
		return result, nil
	}
	result.OriginalURLs = s.resolveAll(ctx, result.AssetIDs)
	for _, original := range result.OriginalURLs {
		result.AssetURLs = append(result.AssetURLs, s.removeBackground(ctx, original))
	}
	return result, nil
}

func (s *Service) run(ctx context.Context, modelID string, req scenario.GenerationRequest) (*scenario.Job, error) {
	job, err := s.gen.Generate(ctx, modelID, req)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrNoResult
	}
	if job.Status != scenario.StatusSuccess {
		s.logger.Warn().
			Str("job_id", job.ID).
			Str("status", string(job.Status)).
			Str("error", job.ErrorMessage()).
			Msg("artgen: job did not succeed")
	}
	return job, nil
}

func (s *Service) resolveAll(ctx context.Context, ids []string) []string {
	urls := make([]string, 0, len(ids))
	for _, id := range ids {
		u, err := s.gen.ResolveURL(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Str("asset_id", id).Msg("artgen: asset url unresolved")
			continue
		}
		urls = append(urls, u)
	}
	return urls
}

func (s *Service) removeBackground(ctx context.Context, original string) string {
	if s.remover == nil {
		return original
	}
	processed, err := s.remover.RemoveBackground(ctx, original)
	if err != nil || processed == "" {
		s.logger.Warn().Err(err).Str("url", original).Msg("artgen: background removal failed, keeping original")
		return original
	}
	return processed
}

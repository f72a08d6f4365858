// Package chromakey converts solid-backdrop icon videos into transparent
// VP9 WebM files using ffmpeg.
package chromakey

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"bingoart/internal/infra"
)

// DefaultDir is where the game keeps its icon videos.
const DefaultDir = "assets/videos"

// ErrFFmpegMissing is returned when the ffmpeg binary cannot be run.
var ErrFFmpegMissing = errors.New("chromakey: ffmpeg is not installed")

// Job describes one conversion. Color is an ffmpeg color such as 0x5a3a4f.
type Job struct {
	Input      string
	Output     string
	Color      string
	Similarity float64
	Blend      float64
}

// Name is the input file name.
func (j Job) Name() string {
	return filepath.Base(j.Input)
}

// DefaultJobs returns the navigation icon batch rooted at dir.
func DefaultJobs(dir string) []Job {
	if dir == "" {
		dir = DefaultDir
	}
	icons := []struct {
		name  string
		color string
	}{
		{"fire-icon", "0x5a3a4f"},
		{"bingo-card-icon", "0x4a4a3f"},
		{"dice-icon", "0x5a4a5f"},
	}
	jobs := make([]Job, 0, len(icons))
	for _, icon := range icons {
		jobs = append(jobs, Job{
			Input:      filepath.Join(dir, icon.name+".mp4"),
			Output:     filepath.Join(dir, icon.name+"-transparent.webm"),
			Color:      icon.color,
			Similarity: 0.4,
			Blend:      0.15,
		})
	}
	return jobs
}

// Args builds the ffmpeg argument list for j.
func (j Job) Args() []string {
	filter := fmt.Sprintf("chromakey=%s:%s:%s,format=yuva420p", j.Color, formatFloat(j.Similarity), formatFloat(j.Blend))
	return []string{
		"-i", j.Input,
		"-vf", filter,
		"-c:v", "libvpx-vp9",
		"-b:v", "0",
		"-crf", "30",
		"-pix_fmt", "yuva420p",
		"-an",
		"-y",
		j.Output,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Result is the outcome of one job.
type Result struct {
	Job     Job
	Missing bool
	Err     error
	// Output holds ffmpeg's combined output when the job failed.
	Output string
}

// OK reports whether the job produced its output.
func (r Result) OK() bool {
	return !r.Missing && r.Err == nil
}

// Summary collects the results of a batch.
type Summary struct {
	Results   []Result
	Succeeded int
}

// Total is the number of jobs attempted or skipped.
func (s Summary) Total() int {
	return len(s.Results)
}

type runFunc func(ctx context.Context, bin string, args ...string) ([]byte, error)

// Runner executes ffmpeg jobs sequentially.
type Runner struct {
	bin    string
	logger *infra.Logger
	run    runFunc
}

// NewRunner returns a runner for the given ffmpeg binary (default "ffmpeg").
func NewRunner(bin string, logger *infra.Logger) *Runner {
	if bin == "" {
		bin = "ffmpeg"
	}
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Runner{bin: bin, logger: logger, run: combinedOutput}
}

func combinedOutput(ctx context.Context, bin string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, bin, args...).CombinedOutput()
}

// Check verifies that ffmpeg can be executed.
func (r *Runner) Check(ctx context.Context) error {
	if _, err := r.run(ctx, r.bin, "-version"); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrFFmpegMissing, err)
	}
	return nil
}

// Process runs every job in order. Missing inputs and failed conversions are
// recorded and the batch continues; only cancellation stops it early.
func (r *Runner) Process(ctx context.Context, jobs []Job) (Summary, error) {
	var summary Summary
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if _, err := os.Stat(job.Input); err != nil {
			r.logger.Warn().Str("input", job.Input).Msg("chromakey: input not found")
			summary.Results = append(summary.Results, Result{Job: job, Missing: true})
			continue
		}

		r.logger.Info().Str("input", job.Name()).Str("color", job.Color).Msg("chromakey: processing")
		out, err := r.run(ctx, r.bin, job.Args()...)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			r.logger.Error().Err(err).Str("input", job.Input).Msg("chromakey: ffmpeg failed")
			summary.Results = append(summary.Results, Result{
				Job:    job,
				Err:    fmt.Errorf("ffmpeg: couldn't key %s: %w", job.Name(), err),
				Output: string(out),
			})
			continue
		}
		r.logger.Info().Str("output", job.Output).Msg("chromakey: created")
		summary.Results = append(summary.Results, Result{Job: job})
		summary.Succeeded++
	}
	return summary, nil
}

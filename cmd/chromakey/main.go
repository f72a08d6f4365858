package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v3"

	"bingoart/internal/chromakey"
	"bingoart/internal/infra"
)

func main() {
	fs := flag.NewFlagSet("chromakey", flag.ExitOnError)
	var (
		dir    = fs.String("dir", chromakey.DefaultDir, "directory holding the icon videos")
		ffmpeg = fs.String("ffmpeg", "ffmpeg", "path to the ffmpeg binary")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("CHROMAKEY")); err != nil {
		fmt.Fprintf(os.Stderr, "invalid flags: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := infra.NewLogger("cli").With().Str("cmd", "chromakey").Logger()
	runner := chromakey.NewRunner(*ffmpeg, &logger)

	if err := run(ctx, runner, *dir); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			fmt.Println("\nProcess cancelled by user")
		case errors.Is(err, chromakey.ErrFFmpegMissing):
			printInstallInstructions()
		default:
			fmt.Fprintf(os.Stderr, "\nUnexpected error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, runner *chromakey.Runner, dir string) error {
	if err := runner.Check(ctx); err != nil {
		return err
	}

	jobs := chromakey.DefaultJobs(dir)
	fmt.Println("\nStarting background removal process...")
	fmt.Println()

	summary, err := runner.Process(ctx, jobs)
	for _, res := range summary.Results {
		switch {
		case res.Missing:
			fmt.Printf("File not found: %s\n", res.Job.Input)
		case res.Err != nil:
			fmt.Printf("Error processing %s\n", res.Job.Input)
			if out := strings.TrimSpace(res.Output); out != "" {
				fmt.Printf("Error: %s\n", out)
			}
		default:
			fmt.Printf("Created: %s\n", filepath.Base(res.Job.Output))
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nProcessed %d out of %d videos\n", summary.Succeeded, len(jobs))
	if summary.Succeeded > 0 {
		printNextSteps(jobs)
	}
	return nil
}

func printInstallInstructions() {
	fmt.Println("\nFFmpeg is not installed!")
	fmt.Println("\nTo install FFmpeg:")
	fmt.Println("  macOS:   brew install ffmpeg")
	fmt.Println("  Debian:  sudo apt-get install ffmpeg")
	fmt.Println("  Other:   https://ffmpeg.org/download.html")
}

func printNextSteps(jobs []chromakey.Job) {
	fmt.Println("\nNext steps:")
	fmt.Println("1. Check the generated *-transparent.webm files")
	fmt.Println("2. If backgrounds aren't fully removed, adjust the key color or thresholds")
	fmt.Println("3. Rename files to:")
	for _, job := range jobs {
		fmt.Printf("   - %s\n", strings.TrimSuffix(job.Name(), filepath.Ext(job.Name()))+".webm")
	}
	fmt.Println("4. Refresh your browser to see the changes!")
}

// Package bgremove turns generated artwork into transparent PNGs served as
// data URIs.
package bgremove

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"

	"bingoart/internal/infra"
)

const defaultMaxBytes = 32 << 20

// ErrNotImage is returned when the fetched body is not a decodable image.
var ErrNotImage = errors.New("bgremove: content is not an image")

// Options configures a Processor.
type Options struct {
	HTTPClient *http.Client
	// Authorize may attach credentials to the image request.
	Authorize func(*http.Request)
	Segmenter Segmenter
	MaxBytes  int64
	Logger    *infra.Logger
}

// Processor fetches an image, segments it and re-encodes it as PNG.
type Processor struct {
	httpClient *http.Client
	authorize  func(*http.Request)
	segmenter  Segmenter
	maxBytes   int64
	logger     *infra.Logger
}

func New(opts Options) *Processor {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Minute}
	}
	segmenter := opts.Segmenter
	if segmenter == nil {
		segmenter = NewChromaKey(0.3, 0.1)
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Processor{
		httpClient: httpClient,
		authorize:  opts.Authorize,
		segmenter:  segmenter,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// RemoveBackground returns imageURL's content with the background made
// transparent, as a data:image/png;base64 URI.
func (p *Processor) RemoveBackground(ctx context.Context, imageURL string) (string, error) {
	raw, err := p.fetch(ctx, imageURL)
	if err != nil {
		return "", err
	}
	if !filetype.IsImage(raw) {
		return "", ErrNotImage
	}
	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	start := time.Now()
	fg, err := p.segmenter.Segment(src)
	if err != nil {
		return "", fmt.Errorf("bgremove: segment: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, fg); err != nil {
		return "", fmt.Errorf("bgremove: encode png: %w", err)
	}
	p.logger.Debug().
		Str("format", format).
		Int("width", fg.Bounds().Dx()).
		Int("height", fg.Bounds().Dy()).
		Dur("took", time.Since(start)).
		Msg("bgremove: background removed")
	return EncodeDataURI("image/png", buf.Bytes()), nil
}

func (p *Processor) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("bgremove: build request: %w", err)
	}
	if p.authorize != nil {
		p.authorize(req)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bgremove: fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("bgremove: fetch image: status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("bgremove: read image: %w", err)
	}
	if int64(len(raw)) > p.maxBytes {
		return nil, fmt.Errorf("bgremove: image exceeds %d bytes", p.maxBytes)
	}
	return raw, nil
}

// EncodeDataURI renders data as a base64 data URI.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

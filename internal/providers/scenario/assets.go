package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ResolveURL finds a directly usable URL for assetID. The direct-download
// endpoint is probed with HEAD first; metadata is only consulted when that
// probe yields neither a redirect nor a 200. Every failure is wrapped in
// ErrAssetUnresolved.
func (c *Client) ResolveURL(ctx context.Context, assetID string) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingCredentials
	}
	direct, err := c.headDirect(ctx, assetID)
	if err == nil {
		return direct, nil
	}
	c.logger.Debug().Err(err).Str("asset_id", assetID).Msg("scenario: direct asset probe failed, trying metadata")

	meta, err := c.fetchMetadata(ctx, assetID)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrAssetUnresolved, assetID, err)
	}
	if u, ok := URLFromMetadata(meta, DefaultURLStrategies()...); ok {
		return u, nil
	}
	return "", fmt.Errorf("%w: %s: metadata has no url", ErrAssetUnresolved, assetID)
}

func (c *Client) headDirect(ctx context.Context, assetID string) (string, error) {
	endpoint := c.endpoint("assets", assetID, "download")
	req, err := c.newRequest(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.headClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if loc := strings.TrimSpace(resp.Header.Get("Location")); loc != "" && (resp.StatusCode == http.StatusOK || isRedirect(resp.StatusCode)) {
		resolved, err := req.URL.Parse(loc)
		if err != nil {
			return "", fmt.Errorf("invalid location %q: %w", loc, err)
		}
		return resolved.String(), nil
	}
	if resp.StatusCode == http.StatusOK {
		return endpoint, nil
	}
	return "", fmt.Errorf("head status %d", resp.StatusCode)
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func (c *Client) fetchMetadata(ctx context.Context, assetID string) (map[string]any, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("assets", assetID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := readBody(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if meta == nil {
		return nil, errors.New("metadata is not an object")
	}
	return meta, nil
}

// Download stores assetID under destDir and returns the file path. The
// direct-download endpoint is tried first, then every URL found in the asset
// metadata. Signed URLs are fetched without credentials.
func (c *Client) Download(ctx context.Context, assetID, destDir string) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingCredentials
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("scenario: ensure download dir: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("assets", assetID, "download"), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrAssetUnresolved, assetID, err)
	}
	req.Header.Del("Accept")
	path, err := c.fetchToFile(req, destDir, assetID)
	if err == nil {
		return path, nil
	}
	c.logger.Debug().Err(err).Str("asset_id", assetID).Msg("scenario: direct download failed, trying metadata")

	meta, err := c.fetchMetadata(ctx, assetID)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrAssetUnresolved, assetID, err)
	}
	for _, candidate := range CandidateURLs(meta) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidate, nil)
		if err != nil {
			continue
		}
		path, err := c.fetchToFile(req, destDir, assetID)
		if err == nil {
			return path, nil
		}
		c.logger.Warn().Err(err).Str("asset_id", assetID).Msg("scenario: download via signed url failed")
	}
	return "", fmt.Errorf("%w: %s: no downloadable source", ErrAssetUnresolved, assetID)
}

func (c *Client) fetchToFile(req *http.Request, destDir, assetID string) (string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download status %d", resp.StatusCode)
	}

	ext := ExtensionForContentType(resp.Header.Get("Content-Type"))
	path := filepath.Join(destDir, fileSafe(assetID)+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	c.logger.Info().Str("asset_id", assetID).Str("path", path).Msg("scenario: asset saved")
	return path, nil
}

// ExtensionForContentType maps a response content type to a file extension.
func ExtensionForContentType(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "mp4"):
		return ".mp4"
	case strings.Contains(ct, "webm"):
		return ".webm"
	case strings.Contains(ct, "quicktime"):
		return ".mov"
	default:
		return ".bin"
	}
}

func fileSafe(id string) string {
	id = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(id))
	if id == "" || id == "." || id == ".." {
		return "asset"
	}
	return id
}

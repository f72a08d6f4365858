package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"bingoart/internal/artgen"
)

const maxRequestBody = 1 << 20

type generateRequest struct {
	Theme string `json:"theme"`
}

type videoResponse struct {
	Job        json.RawMessage `json:"job"`
	AssetIDs   []string        `json:"asset_ids"`
	AssetURLs  []string        `json:"asset_urls"`
	Downloaded []string        `json:"downloaded"`
}

type imageResponse struct {
	Job          json.RawMessage `json:"job"`
	AssetIDs     []string        `json:"asset_ids"`
	AssetURLs    []string        `json:"asset_urls"`
	OriginalURLs []string        `json:"original_urls"`
}

func decodeGenerateRequest(w http.ResponseWriter, r *http.Request) (generateRequest, error) {
	var req generateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, errors.New("request body is required")
		}
		return req, errors.New("invalid JSON body")
	}
	return req, nil
}

// GenerateVideo handles POST /scenario/generate.
func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGenerateRequest(w, r)
	if err != nil {
		a.error(w, http.StatusBadRequest, err.Error())
		return
	}
	download, _ := strconv.ParseBool(r.URL.Query().Get("download"))

	res, err := a.Art.GenerateBackground(r.Context(), req.Theme, download)
	if err != nil {
		a.fail(w, r, "generate video", err)
		return
	}
	a.json(w, http.StatusOK, videoResponse{
		Job:        res.Job.Payload(),
		AssetIDs:   nonNil(res.AssetIDs),
		AssetURLs:  nonNil(res.AssetURLs),
		Downloaded: nonNil(res.Downloaded),
	})
}

// GenerateCard handles POST /scenario/generate-card.
func (a *App) GenerateCard(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGenerateRequest(w, r)
	if err != nil {
		a.error(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := a.Art.GenerateCard(r.Context(), req.Theme)
	a.writeImage(w, r, "generate card", res, err)
}

// GenerateBallCaller handles POST /scenario/generate-ball-caller.
func (a *App) GenerateBallCaller(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGenerateRequest(w, r)
	if err != nil {
		a.error(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := a.Art.GenerateBallCaller(r.Context(), req.Theme)
	a.writeImage(w, r, "generate ball caller", res, err)
}

func (a *App) writeImage(w http.ResponseWriter, r *http.Request, op string, res *artgen.ImageResult, err error) {
	if err != nil {
		a.fail(w, r, op, err)
		return
	}
	a.json(w, http.StatusOK, imageResponse{
		Job:          res.Job.Payload(),
		AssetIDs:     nonNil(res.AssetIDs),
		AssetURLs:    nonNil(res.AssetURLs),
		OriginalURLs: nonNil(res.OriginalURLs),
	})
}

func (a *App) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	code, detail := statusForError(err)
	a.Logger.Error().Err(err).Str("op", op).Int("status", code).Str("path", r.URL.Path).Msg("scenario request failed")
	a.error(w, code, detail)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

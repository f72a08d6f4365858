package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"bingoart/internal/artgen"
	"bingoart/internal/infra"
)

// ArtService is the generation surface behind the scenario endpoints.
type ArtService interface {
	GenerateBackground(ctx context.Context, theme string, download bool) (*artgen.VideoResult, error)
	GenerateCard(ctx context.Context, theme string) (*artgen.ImageResult, error)
	GenerateBallCaller(ctx context.Context, theme string) (*artgen.ImageResult, error)
}

type App struct {
	Art    ArtService
	Logger *infra.Logger
}

func NewApp(art ArtService, logger *infra.Logger) *App {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &App{Art: art, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, detail string) {
	a.json(w, code, map[string]string{"detail": detail})
}

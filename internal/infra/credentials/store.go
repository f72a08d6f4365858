package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"bingoart/internal/infra"
	"bingoart/internal/sqlinline"
)

const (
	ProviderScenario = "scenario"
)

// KeyPair is a Basic-auth credential pair for a provider.
type KeyPair struct {
	Key    string
	Secret string
}

// Complete reports whether both halves are present.
func (k KeyPair) Complete() bool {
	return k.Key != "" && k.Secret != ""
}

// Store reads and writes provider credentials kept in integration_tokens.
// The key lives in the token column, the secret under properties.secret.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) ScenarioKeyPair(ctx context.Context) (KeyPair, error) {
	return s.KeyPair(ctx, ProviderScenario)
}

// KeyPair returns an empty pair without error when the provider has no row.
func (s *Store) KeyPair(ctx context.Context, provider string) (KeyPair, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var pair KeyPair
	if err := row.Scan(&pair.Key, &pair.Secret); err != nil {
		if infra.IsNoRows(err) {
			return KeyPair{}, nil
		}
		return KeyPair{}, err
	}
	pair.Key = strings.TrimSpace(pair.Key)
	pair.Secret = strings.TrimSpace(pair.Secret)
	return pair, nil
}

func (s *Store) SetScenarioKeyPair(ctx context.Context, pair KeyPair) error {
	pair.Key = strings.TrimSpace(pair.Key)
	pair.Secret = strings.TrimSpace(pair.Secret)
	if pair.Key == "" {
		return errors.New("scenario api key is required")
	}
	if pair.Secret == "" {
		return errors.New("scenario api secret is required")
	}
	return s.upsert(ctx, ProviderScenario, pair.Key, map[string]any{"secret": pair.Secret})
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}

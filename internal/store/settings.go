package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gocql/gocql"

	"coupon_forge/internal/database"
	"coupon_forge/internal/models"
)

const displaySettingsKey = "display"

// ScyllaSettingsStore persiste les réglages du plugin (blob JSON par clé)
type ScyllaSettingsStore struct{}

func NewSettingsStore() *ScyllaSettingsStore {
	return &ScyllaSettingsStore{}
}

// GetDisplaySettings retourne les réglages d'affichage, ou les valeurs
// par défaut si rien n'a jamais été enregistré
func (s *ScyllaSettingsStore) GetDisplaySettings(ctx context.Context) (models.DisplaySettings, error) {
	settings := models.DefaultDisplaySettings()

	session, err := database.GetCouponsSession()
	if err != nil {
		return settings, fmt.Errorf("connexion base de données: %w", err)
	}

	var raw string
	err = session.Query(`SELECT value FROM settings WHERE name = ?`, displaySettingsKey).
		WithContext(ctx).Scan(&raw)
	if errors.Is(err, gocql.ErrNotFound) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("lecture des réglages: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return models.DefaultDisplaySettings(), fmt.Errorf("réglages corrompus: %w", err)
	}
	return settings, nil
}

// SaveDisplaySettings enregistre les réglages d'affichage
func (s *ScyllaSettingsStore) SaveDisplaySettings(ctx context.Context, settings models.DisplaySettings) error {
	session, err := database.GetCouponsSession()
	if err != nil {
		return fmt.Errorf("connexion base de données: %w", err)
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("sérialisation des réglages: %w", err)
	}

	if err := session.Query(`INSERT INTO settings (name, value) VALUES (?, ?)`,
		displaySettingsKey, string(raw)).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("écriture des réglages: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gocql/gocql"

	"coupon_forge/internal/database"
	"coupon_forge/internal/models"
)

var ErrTemplateNotFound = errors.New("template d'e-mail introuvable")

// ScyllaTemplateStore gère les templates d'e-mails du back-office
type ScyllaTemplateStore struct{}

func NewTemplateStore() *ScyllaTemplateStore {
	return &ScyllaTemplateStore{}
}

const templateColumns = `id, name, subject, heading, message, footer_text, primary_color, background_color, is_default, created_at, updated_at`

func scanTemplate(iter *gocql.Iter, t *models.EmailTemplate) bool {
	return iter.Scan(&t.ID, &t.Name, &t.Subject, &t.Heading, &t.Message, &t.FooterText,
		&t.PrimaryColor, &t.BackgroundColor, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt)
}

// List retourne tous les templates
func (s *ScyllaTemplateStore) List(ctx context.Context) ([]models.EmailTemplate, error) {
	session, err := database.GetCouponsSession()
	if err != nil {
		return nil, fmt.Errorf("connexion base de données: %w", err)
	}

	iter := session.Query(`SELECT ` + templateColumns + ` FROM email_templates`).WithContext(ctx).Iter()

	var templates []models.EmailTemplate
	var t models.EmailTemplate
	for scanTemplate(iter, &t) {
		templates = append(templates, t)
		t = models.EmailTemplate{}
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture des templates: %w", err)
	}
	return templates, nil
}

// GetByID retourne un template, ou ErrTemplateNotFound
func (s *ScyllaTemplateStore) GetByID(ctx context.Context, id gocql.UUID) (*models.EmailTemplate, error) {
	session, err := database.GetCouponsSession()
	if err != nil {
		return nil, fmt.Errorf("connexion base de données: %w", err)
	}

	iter := session.Query(`SELECT `+templateColumns+` FROM email_templates WHERE id = ?`, id).WithContext(ctx).Iter()
	var t models.EmailTemplate
	found := scanTemplate(iter, &t)
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture du template %s: %w", id, err)
	}
	if !found {
		return nil, ErrTemplateNotFound
	}
	return &t, nil
}

// ResolveForRule applique la chaîne de repli: template lié à la règle,
// puis template par défaut, puis template câblé en dur
func (s *ScyllaTemplateStore) ResolveForRule(ctx context.Context, templateID *gocql.UUID) models.EmailTemplate {
	if templateID != nil {
		if t, err := s.GetByID(ctx, *templateID); err == nil {
			return *t
		} else if !errors.Is(err, ErrTemplateNotFound) {
			log.Printf("⚠️ Lecture du template %s échouée, repli sur le défaut: %v", templateID, err)
		}
	}

	templates, err := s.List(ctx)
	if err == nil {
		for _, t := range templates {
			if t.IsDefault {
				return t
			}
		}
	}

	return models.FallbackTemplate()
}

// Save crée ou met à jour un template. Au plus un template est marqué
// par défaut: en poser un nouveau démarque les autres.
func (s *ScyllaTemplateStore) Save(ctx context.Context, t *models.EmailTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}

	session, err := database.GetCouponsSession()
	if err != nil {
		return fmt.Errorf("connexion base de données: %w", err)
	}

	now := time.Now()
	if (t.ID == gocql.UUID{}) {
		t.ID = gocql.TimeUUID()
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	if t.IsDefault {
		if err := s.unsetOtherDefaults(ctx, session, t.ID); err != nil {
			return err
		}
	}

	if err := session.Query(`INSERT INTO email_templates (`+templateColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Subject, t.Heading, t.Message, t.FooterText,
		t.PrimaryColor, t.BackgroundColor, t.IsDefault, t.CreatedAt, t.UpdatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("écriture du template: %w", err)
	}
	return nil
}

func (s *ScyllaTemplateStore) unsetOtherDefaults(ctx context.Context, session *gocql.Session, keep gocql.UUID) error {
	templates, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, t := range templates {
		if t.IsDefault && t.ID != keep {
			if err := session.Query(`UPDATE email_templates SET is_default = false WHERE id = ?`, t.ID).WithContext(ctx).Exec(); err != nil {
				return fmt.Errorf("démarquage du template par défaut %s: %w", t.ID, err)
			}
		}
	}
	return nil
}

// Delete supprime un template. Les règles qui y sont liées retombent sur
// le template par défaut à l'envoi (vérification applicative, pas de
// contrainte d'intégrité en base).
func (s *ScyllaTemplateStore) Delete(ctx context.Context, id gocql.UUID) error {
	session, err := database.GetCouponsSession()
	if err != nil {
		return fmt.Errorf("connexion base de données: %w", err)
	}

	if err := session.Query(`DELETE FROM email_templates WHERE id = ?`, id).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("suppression du template %s: %w", id, err)
	}
	return nil
}

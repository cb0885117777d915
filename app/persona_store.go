package app

import (
	"database/sql"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

var (
	// ErrPersonaNotFound is returned when no persona has the requested code.
	ErrPersonaNotFound = errors.New("persona not found")
	// ErrInvalidPersona is returned when a persona fails validation.
	ErrInvalidPersona = errors.New("invalid persona")
)

var personaCodePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

var personaCategories = []string{"personal", "general", "operation"}

func migrate(db *sql.DB) error {
	personasStmt := `
	CREATE TABLE IF NOT EXISTS personas (
		persona_code TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		description_en TEXT NOT NULL DEFAULT '',
		welcome_msg TEXT NOT NULL DEFAULT '',
		system_prompt TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL
	);`
	conversationsStmt := `
	CREATE TABLE IF NOT EXISTS conversations (
		conversation_id TEXT PRIMARY KEY,
		persona_code TEXT NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		user_query TEXT NOT NULL,
		ai_response TEXT NOT NULL,
		created TIMESTAMP NOT NULL
	);`
	indexStmt := `
	CREATE INDEX IF NOT EXISTS conversations_persona_created
		ON conversations (persona_code, created);`

	for _, stmt := range []string{personasStmt, conversationsStmt, indexStmt} {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, "migrate")
		}
	}

	// Stores created before conversations carried a user ID.
	if _, err := db.Exec(`SELECT user_id FROM conversations LIMIT 0`); err != nil {
		if _, err := db.Exec(`ALTER TABLE conversations ADD COLUMN user_id TEXT NOT NULL DEFAULT ''`); err != nil {
			return errors.Wrap(err, "migrate conversations.user_id")
		}
	}
	return nil
}

// seedPersonas inserts the bundled personas into an empty store.
func seedPersonas(db *sql.DB, personas []*Persona) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM personas`).Scan(&count); err != nil {
		return errors.Wrap(err, "count personas")
	}
	if count > 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, p := range personas {
		seeded := *p
		seeded.UpdatedAt = now
		if err := savePersona(db, &seeded); err != nil {
			return errors.Wrapf(err, "seed persona %s", p.Code)
		}
	}
	log.WithField("count", len(personas)).Info("Seeded personas")
	return nil
}

const personaColumns = `persona_code, category, title, description, description_en, welcome_msg, system_prompt, updated_at`

func scanPersona(row interface{ Scan(...any) error }) (*Persona, error) {
	var p Persona
	if err := row.Scan(&p.Code, &p.Category, &p.Title, &p.Description, &p.DescriptionEn,
		&p.WelcomeMsg, &p.SystemPrompt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func getAllPersonas(db *sql.DB) ([]*Persona, error) {
	rows, err := db.Query(`SELECT ` + personaColumns + ` FROM personas ORDER BY category, persona_code`)
	if err != nil {
		return nil, errors.Wrap(err, "query personas")
	}
	defer rows.Close()

	personas := []*Persona{}
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan persona")
		}
		personas = append(personas, p)
	}
	return personas, errors.Wrap(rows.Err(), "iterate personas")
}

func getPersona(db *sql.DB, code string) (*Persona, error) {
	row := db.QueryRow(`SELECT `+personaColumns+` FROM personas WHERE persona_code = $1`, code)
	p, err := scanPersona(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrPersonaNotFound, "persona %q", code)
		}
		return nil, errors.Wrapf(err, "get persona %q", code)
	}
	return p, nil
}

// savePersona validates p and inserts or replaces it.
func savePersona(db *sql.DB, p *Persona) error {
	if err := normalizePersona(p); err != nil {
		return err
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	_, err := db.Exec(
		`INSERT INTO personas (`+personaColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT(persona_code) DO UPDATE SET
			category = excluded.category,
			title = excluded.title,
			description = excluded.description,
			description_en = excluded.description_en,
			welcome_msg = excluded.welcome_msg,
			system_prompt = excluded.system_prompt,
			updated_at = excluded.updated_at`,
		p.Code, p.Category, p.Title, p.Description, p.DescriptionEn, p.WelcomeMsg, p.SystemPrompt, p.UpdatedAt,
	)
	return errors.Wrapf(err, "save persona %q", p.Code)
}

// deletePersona removes a persona together with its conversation history.
func deletePersona(db *sql.DB, code string) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin delete persona")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM conversations WHERE persona_code = $1`, code); err != nil {
		return errors.Wrapf(err, "delete conversations of %q", code)
	}
	result, err := tx.Exec(`DELETE FROM personas WHERE persona_code = $1`, code)
	if err != nil {
		return errors.Wrapf(err, "delete persona %q", code)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(ErrPersonaNotFound, "persona %q", code)
	}
	return errors.Wrap(tx.Commit(), "commit delete persona")
}

func getCategories(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT DISTINCT category FROM personas ORDER BY category`)
	if err != nil {
		return nil, errors.Wrap(err, "query categories")
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, errors.Wrap(err, "scan category")
		}
		categories = append(categories, c)
	}
	return categories, errors.Wrap(rows.Err(), "iterate categories")
}

func normalizePersona(p *Persona) error {
	p.Code = strings.ToLower(strings.TrimSpace(p.Code))
	p.Title = strings.TrimSpace(p.Title)
	p.Category = normalizeCategory(p.Category)
	if !personaCodePattern.MatchString(p.Code) {
		return errors.Wrapf(ErrInvalidPersona, "persona code %q must be 1-64 lowercase letters, digits or underscores", p.Code)
	}
	if p.Title == "" {
		return errors.Wrap(ErrInvalidPersona, "title is required")
	}
	return nil
}

func normalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "ops" || category == "operations" {
		return "operation"
	}
	if slices.Contains(personaCategories, category) {
		return category
	}
	return "general"
}

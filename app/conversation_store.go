package app

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

const conversationColumns = `conversation_id, persona_code, user_id, user_query, ai_response, created`

func scanConversations(rows *sql.Rows) ([]*Conversation, error) {
	defer rows.Close()
	conversations := []*Conversation{}
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.PersonaCode, &c.UserID, &c.UserQuery, &c.AIResponse, &c.Created); err != nil {
			return nil, errors.Wrap(err, "scan conversation")
		}
		conversations = append(conversations, &c)
	}
	return conversations, errors.Wrap(rows.Err(), "iterate conversations")
}

// saveConversation stores c and drops the persona's oldest exchanges beyond
// limit. A limit of zero or less keeps everything.
func saveConversation(db *sql.DB, c *Conversation, limit int) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin save conversation")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO conversations (`+conversationColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.PersonaCode, c.UserID, c.UserQuery, c.AIResponse, c.Created,
	); err != nil {
		return errors.Wrapf(err, "insert conversation %s", c.ID)
	}

	if limit > 0 {
		if _, err := tx.Exec(
			`DELETE FROM conversations
			WHERE persona_code = $1 AND conversation_id NOT IN (
				SELECT conversation_id FROM conversations
				WHERE persona_code = $1
				ORDER BY created DESC
				LIMIT $2
			)`,
			c.PersonaCode, limit,
		); err != nil {
			return errors.Wrapf(err, "trim history of %q", c.PersonaCode)
		}
	}
	return errors.Wrap(tx.Commit(), "commit conversation")
}

// getConversations returns a persona's history, oldest first.
func getConversations(db *sql.DB, personaCode string) ([]*Conversation, error) {
	rows, err := db.Query(
		`SELECT `+conversationColumns+` FROM conversations WHERE persona_code = $1 ORDER BY created ASC`,
		personaCode,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "query conversations of %q", personaCode)
	}
	return scanConversations(rows)
}

// getRecentConversations returns one page of exchanges across all personas,
// newest first, narrowed by f.
func getRecentConversations(db *sql.DB, f ConversationFilter) (*ConversationPage, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where = append(where, strings.Replace(clause, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if f.PersonaCode != "" {
		add("persona_code = ?", f.PersonaCode)
	}
	if f.UserID != "" {
		add("user_id = ?", f.UserID)
	}
	if !f.Start.IsZero() {
		add("created >= ?", f.Start.UTC())
	}
	if !f.End.IsZero() {
		add("created < ?", f.End.UTC())
	}
	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	page := &ConversationPage{CurrentPage: f.Page, PageSize: f.Size}
	if err := db.QueryRow(`SELECT COUNT(*) FROM conversations`+filter, args...).Scan(&page.TotalElements); err != nil {
		return nil, errors.Wrap(err, "count conversations")
	}

	n := len(args)
	rows, err := db.Query(
		`SELECT `+conversationColumns+` FROM conversations`+filter+
			` ORDER BY created DESC, conversation_id DESC LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
		append(args, f.Size, f.Page*f.Size)...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query conversations page")
	}
	if page.Conversations, err = scanConversations(rows); err != nil {
		return nil, err
	}

	if f.Size > 0 {
		page.TotalPages = int((page.TotalElements + int64(f.Size) - 1) / int64(f.Size))
	}
	page.First = f.Page == 0
	page.Last = f.Page >= page.TotalPages-1
	page.HasNext = f.Page < page.TotalPages-1
	page.HasPrevious = f.Page > 0
	return page, nil
}

func deleteConversations(db *sql.DB, personaCode string) (int64, error) {
	result, err := db.Exec(`DELETE FROM conversations WHERE persona_code = $1`, personaCode)
	if err != nil {
		return 0, errors.Wrapf(err, "delete conversations of %q", personaCode)
	}
	n, err := result.RowsAffected()
	return n, errors.Wrap(err, "count deleted conversations")
}

package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tutorbill/internal/model"
)

// sqliteStore implements Store on a SQLite database file.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the registration database at dbPath.
func NewSQLiteStore(dbPath string) (Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &sqliteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS registrations (
		recipient TEXT PRIMARY KEY,
		feed_url TEXT NOT NULL,
		roster_url TEXT NOT NULL,
		teacher_email TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *sqliteStore) Get(ctx context.Context, recipient string) (model.Registration, bool, error) {
	var reg model.Registration
	err := s.db.QueryRowContext(ctx, `
		SELECT recipient, feed_url, roster_url, teacher_email, created_at, updated_at
		FROM registrations WHERE recipient = ?
	`, recipient).Scan(&reg.Recipient, &reg.FeedURL, &reg.RosterURL, &reg.TeacherEmail, &reg.CreatedAt, &reg.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Registration{}, false, nil
	}
	if err != nil {
		return model.Registration{}, false, err
	}
	return reg, true, nil
}

func (s *sqliteStore) Upsert(ctx context.Context, reg model.Registration) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registrations (recipient, feed_url, roster_url, teacher_email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(recipient) DO UPDATE SET
			feed_url = excluded.feed_url,
			roster_url = excluded.roster_url,
			teacher_email = excluded.teacher_email,
			updated_at = excluded.updated_at
	`, reg.Recipient, reg.FeedURL, reg.RosterURL, reg.TeacherEmail, now, now)
	return err
}

func (s *sqliteStore) Delete(ctx context.Context, recipient string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM registrations WHERE recipient = ?`, recipient)
	return err
}

func (s *sqliteStore) List(ctx context.Context) ([]model.Registration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT recipient, feed_url, roster_url, teacher_email, created_at, updated_at
		FROM registrations ORDER BY recipient
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.Recipient, &reg.FeedURL, &reg.RosterURL, &reg.TeacherEmail, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

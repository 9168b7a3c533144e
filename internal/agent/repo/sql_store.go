package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "embed"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/frontdesk/internal/core/error"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const (
	defaultMaxOpenConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	dirPermissions         = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

//go:embed migrations_postgres.sql
var postgresMigrations string

// SQLStore is a TurnLog and ProfileStore on SQLite or Postgres. Queries are
// written with ? placeholders and rebound for Postgres.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore opens the database and applies the embedded migrations.
func NewSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	var migrations string
	switch driver {
	case DriverSQLite:
		migrations = sqliteMigrations
		if dir := filepath.Dir(dsn); dir != "." && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(dir, dirPermissions); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	case DriverPostgres:
		migrations = postgresMigrations
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(defaultMaxOpenConns)
		db.SetConnMaxLifetime(defaultConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logx.Debug().Str("driver", driver).Msg("SQL store migrations applied")

	return &SQLStore{db: db, driver: driver}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Append(ctx context.Context, t model.TurnRecord) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO turns
		(session_id, user_id, role, content, response_type, prompt_tokens, completion_tokens, cost_usd, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.SessionID, t.UserID, string(t.Role), t.Content, string(t.ResponseType),
		t.PromptTokens, t.CompletionTokens, t.CostUSD, t.CreatedAt.UTC())
	if err != nil {
		logx.Error().Err(err).Str("session_id", t.SessionID).Msg("failed to insert turn")
		return errx.WrapSQL(err)
	}
	return nil
}

func (s *SQLStore) BySession(ctx context.Context, sessionID string) ([]model.TurnRecord, error) {
	return s.queryTurns(ctx, `WHERE session_id = ?`, sessionID)
}

func (s *SQLStore) ByUser(ctx context.Context, userID string) ([]model.TurnRecord, error) {
	return s.queryTurns(ctx, `WHERE user_id = ?`, userID)
}

func (s *SQLStore) queryTurns(ctx context.Context, where string, arg string) ([]model.TurnRecord, error) {
	q := `SELECT session_id, user_id, role, content, response_type, prompt_tokens, completion_tokens, cost_usd, created_at
		FROM turns ` + where + ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, s.rebind(q), arg)
	if err != nil {
		logx.Error().Err(err).Msg("failed to query turns")
		return nil, errx.WrapSQL(err)
	}
	defer rows.Close()

	turns := []model.TurnRecord{}
	for rows.Next() {
		var t model.TurnRecord
		var role, rtype string
		if err := rows.Scan(&t.SessionID, &t.UserID, &role, &t.Content, &rtype,
			&t.PromptTokens, &t.CompletionTokens, &t.CostUSD, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		t.Role = model.Role(role)
		t.ResponseType = model.ResponseType(rtype)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows: %w", err)
	}
	return turns, nil
}

func (s *SQLStore) Get(ctx context.Context, userID, sessionID string) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT name, email, phone, updated_at
		FROM profiles WHERE user_id = ? AND session_id = ?`), userID, sessionID)

	p := model.Profile{UserID: userID, SessionID: sessionID}
	if err := row.Scan(&p.Name, &p.Email, &p.Phone, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logx.Error().Err(err).Str("user_id", userID).Msg("failed to load profile")
		return nil, errx.WrapSQL(err)
	}
	return &p, nil
}

// Upsert keeps stored values for fields p leaves empty.
func (s *SQLStore) Upsert(ctx context.Context, p model.Profile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO profiles (user_id, session_id, name, email, phone, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, session_id) DO UPDATE SET
			name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE profiles.name END,
			email = CASE WHEN excluded.email <> '' THEN excluded.email ELSE profiles.email END,
			phone = CASE WHEN excluded.phone <> '' THEN excluded.phone ELSE profiles.phone END,
			updated_at = excluded.updated_at`),
		p.UserID, p.SessionID, p.Name, p.Email, p.Phone, p.UpdatedAt.UTC())
	if err != nil {
		logx.Error().Err(err).Str("user_id", p.UserID).Msg("failed to upsert profile")
		return errx.WrapSQL(err)
	}
	return nil
}

var (
	_ model.TurnLog      = (*SQLStore)(nil)
	_ model.ProfileStore = (*SQLStore)(nil)
)

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/deal-desk/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS deals (
	id         TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'draft',
	approval   TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_deals_status ON deals(status);
CREATE INDEX IF NOT EXISTS idx_deals_created_at ON deals(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateDeal(ctx context.Context, deal model.Deal) (*model.Deal, error) {
	now := time.Now().UTC()
	deal.ID = uuid.New().String()
	if deal.Status == "" {
		deal.Status = model.DealStatusDraft
	}
	deal.CreatedAt = now
	deal.UpdatedAt = now

	payload, approval, err := encodeDeal(&deal)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO deals (id, payload, status, approval, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		deal.ID, payload, string(deal.Status), approval, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert deal")
	}
	return &deal, nil
}

// CreateDeals inserts a batch of deals in a single transaction.
func (s *SQLiteStore) CreateDeals(ctx context.Context, deals []model.Deal) (int64, error) {
	if len(deals) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin batch insert")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO deals (id, payload, status, approval, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare batch insert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	for i := range deals {
		deals[i].ID = uuid.New().String()
		if deals[i].Status == "" {
			deals[i].Status = model.DealStatusDraft
		}
		deals[i].CreatedAt = now
		deals[i].UpdatedAt = now

		payload, approval, err := encodeDeal(&deals[i])
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx,
			deals[i].ID, payload, string(deals[i].Status), approval, now, now,
		); err != nil {
			return 0, eris.Wrap(err, "sqlite: batch insert deal")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit batch insert")
	}
	return int64(len(deals)), nil
}

func (s *SQLiteStore) GetDeal(ctx context.Context, dealID string) (*model.Deal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, payload, status, approval, created_at, updated_at FROM deals WHERE id = ?`,
		dealID,
	)
	return scanDeal(row)
}

func (s *SQLiteStore) ListDeals(ctx context.Context, filter DealFilter) ([]model.Deal, error) {
	query := `SELECT id, payload, status, approval, created_at, updated_at FROM deals WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Customer != "" {
		query += ` AND json_extract(payload, '$.customer') = ? COLLATE NOCASE`
		args = append(args, filter.Customer)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list deals")
	}
	defer rows.Close()

	var deals []model.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, *d)
	}
	return deals, eris.Wrap(rows.Err(), "sqlite: list deals iterate")
}

func (s *SQLiteStore) UpdateDeal(ctx context.Context, deal *model.Deal) error {
	deal.UpdatedAt = time.Now().UTC()

	payload, approval, err := encodeDeal(deal)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE deals SET payload = ?, status = ?, approval = ?, updated_at = ? WHERE id = ?`,
		payload, string(deal.Status), approval, deal.UpdatedAt, deal.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update deal %s", deal.ID)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) UpdateDealStatus(ctx context.Context, dealID string, status model.DealStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE deals SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), dealID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update deal status %s", dealID)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) SetApproval(ctx context.Context, dealID string, approval *model.DealApproval) error {
	approvalJSON, err := encodeApproval(approval)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE deals SET approval = ?, updated_at = ? WHERE id = ?`,
		approvalJSON, time.Now().UTC(), dealID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set approval %s", dealID)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) DeleteDeal(ctx context.Context, dealID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM deals WHERE id = ?`, dealID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete deal %s", dealID)
	}
	return checkRowsAffected(res)
}

// helpers

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// encodeDeal splits a deal into its payload and approval JSON columns. The
// approval lives in its own column so it can be replaced without
// rewriting the payload.
func encodeDeal(deal *model.Deal) (payload string, approval sql.NullString, err error) {
	stripped := *deal
	stripped.Approval = nil
	b, err := json.Marshal(&stripped)
	if err != nil {
		return "", sql.NullString{}, eris.Wrap(err, "store: marshal deal")
	}
	approval, err = encodeApproval(deal.Approval)
	if err != nil {
		return "", sql.NullString{}, err
	}
	return string(b), approval, nil
}

func encodeApproval(approval *model.DealApproval) (sql.NullString, error) {
	if approval == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(approval)
	if err != nil {
		return sql.NullString{}, eris.Wrap(err, "store: marshal approval")
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDeal(row scannable) (*model.Deal, error) {
	var d model.Deal
	var payload string
	var status string
	var approvalJSON sql.NullString

	err := row.Scan(&d.ID, &payload, &status, &approvalJSON, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan deal")
	}

	id, createdAt, updatedAt := d.ID, d.CreatedAt, d.UpdatedAt
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal deal")
	}
	// Columns are authoritative over the payload snapshot.
	d.ID, d.CreatedAt, d.UpdatedAt = id, createdAt, updatedAt
	d.Status = model.DealStatus(status)

	if approvalJSON.Valid {
		d.Approval = &model.DealApproval{}
		if err := json.Unmarshal([]byte(approvalJSON.String), d.Approval); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal approval")
		}
	} else {
		d.Approval = nil
	}
	return &d, nil
}

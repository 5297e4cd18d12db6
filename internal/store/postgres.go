package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/deal-desk/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_deal":        `INSERT INTO deals (id, payload, status, approval, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"get_deal":           `SELECT id, payload, status, approval, created_at, updated_at FROM deals WHERE id = $1`,
	"update_deal":        `UPDATE deals SET payload = $1, status = $2, approval = $3, updated_at = $4 WHERE id = $5`,
	"update_deal_status": `UPDATE deals SET status = $1, updated_at = $2 WHERE id = $3`,
	"set_approval":       `UPDATE deals SET approval = $1, updated_at = $2 WHERE id = $3`,
	"delete_deal":        `DELETE FROM deals WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS deals (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	payload    JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'draft',
	approval   JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_deals_status ON deals(status);
CREATE INDEX IF NOT EXISTS idx_deals_created_at ON deals(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_deals_customer ON deals((payload->>'customer'));
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateDeal(ctx context.Context, deal model.Deal) (*model.Deal, error) {
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

	_, err = s.pool.Exec(ctx,
		`INSERT INTO deals (id, payload, status, approval, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		deal.ID, payload, string(deal.Status), nullString(approval.String, approval.Valid), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert deal")
	}
	return &deal, nil
}

// CreateDeals bulk-inserts deals through the COPY protocol, which is far
// faster than row-at-a-time inserts for large import batches.
func (s *PostgresStore) CreateDeals(ctx context.Context, deals []model.Deal) (int64, error) {
	if len(deals) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(deals))
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
		rows = append(rows, []any{
			deals[i].ID, payload, string(deals[i].Status),
			nullString(approval.String, approval.Valid), now, now,
		})
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"deals"},
		[]string{"id", "payload", "status", "approval", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: copy deals")
	}
	return n, nil
}

func (s *PostgresStore) GetDeal(ctx context.Context, dealID string) (*model.Deal, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, payload, status, approval, created_at, updated_at FROM deals WHERE id = $1`,
		dealID,
	)
	d, err := scanPgDeal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *PostgresStore) ListDeals(ctx context.Context, filter DealFilter) ([]model.Deal, error) {
	query := `SELECT id, payload, status, approval, created_at, updated_at FROM deals WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Customer != "" {
		args = append(args, filter.Customer)
		query += ` AND lower(payload->>'customer') = lower($` + strconv.Itoa(len(args)) + `)`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list deals")
	}
	defer rows.Close()

	var deals []model.Deal
	for rows.Next() {
		d, err := scanPgDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, *d)
	}
	return deals, eris.Wrap(rows.Err(), "postgres: list deals iterate")
}

func (s *PostgresStore) UpdateDeal(ctx context.Context, deal *model.Deal) error {
	deal.UpdatedAt = time.Now().UTC()

	payload, approval, err := encodeDeal(deal)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE deals SET payload = $1, status = $2, approval = $3, updated_at = $4 WHERE id = $5`,
		payload, string(deal.Status), nullString(approval.String, approval.Valid), deal.UpdatedAt, deal.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update deal %s", deal.ID)
	}
	return checkTag(tag)
}

func (s *PostgresStore) UpdateDealStatus(ctx context.Context, dealID string, status model.DealStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE deals SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), dealID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update deal status %s", dealID)
	}
	return checkTag(tag)
}

func (s *PostgresStore) SetApproval(ctx context.Context, dealID string, approval *model.DealApproval) error {
	approvalJSON, err := encodeApproval(approval)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE deals SET approval = $1, updated_at = $2 WHERE id = $3`,
		nullString(approvalJSON.String, approvalJSON.Valid), time.Now().UTC(), dealID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set approval %s", dealID)
	}
	return checkTag(tag)
}

func (s *PostgresStore) DeleteDeal(ctx context.Context, dealID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM deals WHERE id = $1`, dealID)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete deal %s", dealID)
	}
	return checkTag(tag)
}

// helpers

func checkTag(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// nullString maps a sql.NullString-shaped pair onto a pgx-friendly value.
func nullString(s string, valid bool) any {
	if !valid {
		return nil
	}
	return s
}

func scanPgDeal(row pgx.Row) (*model.Deal, error) {
	var d model.Deal
	var payload string
	var status string
	var approvalJSON *string

	err := row.Scan(&d.ID, &payload, &status, &approvalJSON, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "postgres: scan deal")
	}

	id, createdAt, updatedAt := d.ID, d.CreatedAt, d.UpdatedAt
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal deal")
	}
	d.ID, d.CreatedAt, d.UpdatedAt = id, createdAt, updatedAt
	d.Status = model.DealStatus(status)

	if approvalJSON != nil {
		d.Approval = &model.DealApproval{}
		if err := json.Unmarshal([]byte(*approvalJSON), d.Approval); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal approval")
		}
	} else {
		d.Approval = nil
	}
	return &d, nil
}

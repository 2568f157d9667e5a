package curriculum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresRepository reads and writes modules in the modules table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a PostgreSQL-backed module repository.
func NewPostgresRepository(pool *pgxpool.Pool) (*PostgresRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) GetModule(ctx context.Context, id string) (Module, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx,
		`SELECT id, title, description, xp_reward, sections
		 FROM modules
		 WHERE id = $1`,
		id,
	)
	m, err := scanModule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Module{}, fmt.Errorf("%w: %s", ErrModuleNotFound, id)
	}
	if err != nil {
		return Module{}, fmt.Errorf("get module %s: %w", id, err)
	}
	return m, nil
}

func (r *PostgresRepository) ListModules(ctx context.Context) ([]Module, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, xp_reward, sections
		 FROM modules
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query modules: %w", err)
	}
	defer rows.Close()

	modules := []Module{}
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate modules: %w", err)
	}
	return modules, nil
}

// PutModule normalizes, validates and upserts a module. It reports whether the
// stored content changed.
func (r *PostgresRepository) PutModule(ctx context.Context, m Module) (bool, error) {
	m = m.Normalize()
	if err := m.Validate(); err != nil {
		return false, err
	}

	sections, err := json.Marshal(m.Sections)
	if err != nil {
		return false, fmt.Errorf("marshal sections: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := r.pool.Exec(ctx,
		`INSERT INTO modules (id, title, description, xp_reward, sections, fingerprint, updated_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6, NOW())
		 ON CONFLICT (id) DO UPDATE SET
		     title = EXCLUDED.title,
		     description = EXCLUDED.description,
		     xp_reward = EXCLUDED.xp_reward,
		     sections = EXCLUDED.sections,
		     fingerprint = EXCLUDED.fingerprint,
		     updated_at = NOW()
		 WHERE modules.fingerprint <> EXCLUDED.fingerprint`,
		m.ID,
		m.Title,
		m.Description,
		m.XPReward,
		string(sections),
		m.Fingerprint(),
	)
	if err != nil {
		return false, fmt.Errorf("upsert module %s: %w", m.ID, err)
	}
	return cmd.RowsAffected() > 0, nil
}

func scanModule(row pgx.Row) (Module, error) {
	var m Module
	var sections []byte
	if err := row.Scan(&m.ID, &m.Title, &m.Description, &m.XPReward, &sections); err != nil {
		return Module{}, err
	}
	if err := json.Unmarshal(sections, &m.Sections); err != nil {
		return Module{}, fmt.Errorf("decode sections of %s: %w", m.ID, err)
	}
	return m, nil
}

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fantabuilder/fantasta/internal/models"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, team, role, valuation FROM players WHERE id = $1`, id)

	var p models.Player
	if err := row.Scan(&p.ID, &p.Name, &p.Team, &p.Role, &p.Valuation); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &p, nil
}

func (r *Repository) ListPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, team, role, valuation FROM players ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (r *Repository) ListPlayersByRole(ctx context.Context, role models.Role) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, team, role, valuation FROM players WHERE role = $1 ORDER BY id`, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list players by role: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (r *Repository) CreatePlayersBatch(ctx context.Context, players []models.Player) error {
	if len(players) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO players (id, name, team, role, valuation) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET name = $2, team = $3, role = $4, valuation = $5`)
	if err != nil {
		return fmt.Errorf("failed to prepare player insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Team, p.Role, p.Valuation); err != nil {
			return fmt.Errorf("failed to insert player %d: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func scanPlayers(rows *sql.Rows) ([]models.Player, error) {
	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Team, &p.Role, &p.Valuation); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}
	return players, nil
}

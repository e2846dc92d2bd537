package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"delivery-marketplace/internal/domain"
	"delivery-marketplace/internal/interfaces"
)

const riderColumns = `id, name, phone, zone, approval_status, is_online, current_order_id, created_at`

type riderRepository struct {
	db DB
}

func NewRiderRepository(db DB) interfaces.RiderRepository {
	return &riderRepository{db: db}
}

func (r *riderRepository) Create(ctx context.Context, rider *domain.Rider) error {
	query := `
		INSERT INTO riders (id, name, phone, zone, approval_status, is_online, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		rider.ID, rider.Name, rider.Phone, rider.Zone, rider.Approval, rider.IsOnline, rider.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create rider: %w", err)
	}
	return nil
}

func (r *riderRepository) GetByID(ctx context.Context, id string) (*domain.Rider, error) {
	query := `SELECT ` + riderColumns + ` FROM riders WHERE id = $1`

	rider, err := scanRider(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRiderNotFound
		}
		return nil, fmt.Errorf("failed to get rider: %w", err)
	}
	return rider, nil
}

func (r *riderRepository) List(ctx context.Context, filter interfaces.RiderFilter) ([]*domain.Rider, error) {
	var where []string
	var args []any

	if filter.Approval != "" {
		args = append(args, filter.Approval)
		where = append(where, fmt.Sprintf("approval_status = $%d", len(args)))
	}
	if filter.IsOnline != nil {
		args = append(args, *filter.IsOnline)
		where = append(where, fmt.Sprintf("is_online = $%d", len(args)))
	}

	query := `SELECT ` + riderColumns + ` FROM riders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name"

	return r.queryRiders(ctx, query, args...)
}

func (r *riderRepository) ListAvailable(ctx context.Context) ([]*domain.Rider, error) {
	query := `SELECT ` + riderColumns + ` FROM riders WHERE approval_status = $1 AND is_online = TRUE ORDER BY name`
	return r.queryRiders(ctx, query, domain.ApprovalApproved)
}

func (r *riderRepository) SetOnline(ctx context.Context, id string, online bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE riders SET is_online = $1 WHERE id = $2`, online, id)
	if err != nil {
		return fmt.Errorf("failed to update rider online flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRiderNotFound
	}
	return nil
}

func (r *riderRepository) queryRiders(ctx context.Context, query string, args ...any) ([]*domain.Rider, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list riders: %w", err)
	}
	defer rows.Close()

	var riders []*domain.Rider
	for rows.Next() {
		rider, err := scanRider(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rider: %w", err)
		}
		riders = append(riders, rider)
	}
	return riders, rows.Err()
}

func scanRider(row Row) (*domain.Rider, error) {
	var rider domain.Rider
	err := row.Scan(
		&rider.ID, &rider.Name, &rider.Phone, &rider.Zone,
		&rider.Approval, &rider.IsOnline, &rider.CurrentOrderID, &rider.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rider, nil
}

package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Blurjp/pathavana/internal/api"
	"github.com/Blurjp/pathavana/internal/types"
)

// ErrItemNotFound is returned when an item ID resolves to nothing.
var ErrItemNotFound = errors.New("itinerary item not found")

var _ Repository = (*PostgresRepository)(nil)

// Repository is the persistence contract for itinerary items.
type Repository interface {
	CreateItem(ctx context.Context, item types.ItineraryItem) error
	GetItem(ctx context.Context, itemID uuid.UUID) (*types.ItineraryItem, error)
	ListSessionItems(ctx context.Context, sessionID uuid.UUID) ([]types.ItineraryItem, error)
	ListSessionItemsByKind(ctx context.Context, sessionID uuid.UUID, kind types.ItineraryItemKind) ([]types.ItineraryItem, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, params types.UpdateItineraryItemParams) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool api.PgxPool
}

func NewPostgresRepository(pgpool api.PgxPool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

const itemColumns = `id, session_id, day, kind, title, location, start_time, end_time, cost, currency, notes, created_at, updated_at`

func (r *PostgresRepository) CreateItem(ctx context.Context, item types.ItineraryItem) error {
	query := `
        INSERT INTO itinerary_items (
            id, session_id, day, kind, title, location, start_time, end_time, cost, currency, notes
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err := r.pgpool.Exec(ctx, query,
		item.ID, item.SessionID, item.Day, item.Kind, item.Title, item.Location,
		item.StartTime, item.EndTime, item.Cost, item.Currency, item.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert itinerary item: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetItem(ctx context.Context, itemID uuid.UUID) (*types.ItineraryItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM itinerary_items WHERE id = $1`, itemColumns)
	var item types.ItineraryItem
	err := r.pgpool.QueryRow(ctx, query, itemID).Scan(
		&item.ID, &item.SessionID, &item.Day, &item.Kind, &item.Title, &item.Location,
		&item.StartTime, &item.EndTime, &item.Cost, &item.Currency, &item.Notes,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find itinerary item: %w", err)
	}
	return &item, nil
}

func (r *PostgresRepository) ListSessionItems(ctx context.Context, sessionID uuid.UUID) ([]types.ItineraryItem, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM itinerary_items
        WHERE session_id = $1
        ORDER BY day ASC, start_time ASC NULLS LAST, created_at ASC
    `, itemColumns)
	rows, err := r.pgpool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *PostgresRepository) ListSessionItemsByKind(ctx context.Context, sessionID uuid.UUID, kind types.ItineraryItemKind) ([]types.ItineraryItem, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM itinerary_items
        WHERE session_id = $1 AND kind = $2
        ORDER BY day ASC, start_time ASC NULLS LAST, created_at ASC
    `, itemColumns)
	rows, err := r.pgpool.Query(ctx, query, sessionID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary items by kind: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows pgx.Rows) ([]types.ItineraryItem, error) {
	var items []types.ItineraryItem
	for rows.Next() {
		var item types.ItineraryItem
		if err := rows.Scan(
			&item.ID, &item.SessionID, &item.Day, &item.Kind, &item.Title, &item.Location,
			&item.StartTime, &item.EndTime, &item.Cost, &item.Currency, &item.Notes,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read itinerary items: %w", err)
	}
	return items, nil
}

// UpdateItem applies only the fields set in params.
func (r *PostgresRepository) UpdateItem(ctx context.Context, itemID uuid.UUID, params types.UpdateItineraryItemParams) error {
	var sets []string
	var args []interface{}
	args = append(args, itemID)

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if params.Day != nil {
		addSet("day", *params.Day)
	}
	if params.Title != nil {
		addSet("title", *params.Title)
	}
	if params.Location != nil {
		addSet("location", *params.Location)
	}
	if params.StartTime != nil {
		addSet("start_time", *params.StartTime)
	}
	if params.EndTime != nil {
		addSet("end_time", *params.EndTime)
	}
	if params.Cost != nil {
		addSet("cost", *params.Cost)
	}
	if params.Currency != nil {
		addSet("currency", *params.Currency)
	}
	if params.Notes != nil {
		addSet("notes", *params.Notes)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE itinerary_items SET %s WHERE id = $1", strings.Join(sets, ", "))
	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update itinerary item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM itinerary_items WHERE id = $1", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete itinerary item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/qrave1/RoomMeet/internal/domain/models"
)

type CallRepository interface {
	// GetOrCreate вставляет звонок, если его ещё нет, и возвращает сохранённую запись.
	// created = true, если звонок был создан этим вызовом.
	GetOrCreate(ctx context.Context, call *models.Call) (stored *models.Call, created bool, err error)
	GetByID(ctx context.Context, callType, id string) (*models.Call, error)
	MarkEnded(ctx context.Context, callType, id string, at time.Time) error

	UpsertMembers(ctx context.Context, callType, id string, userIDs []uuid.UUID) error
	ListMembers(ctx context.Context, callType, id string) ([]models.CallMember, error)

	// ListUpcoming возвращает незавершённые звонки пользователя, начинающиеся после now.
	ListUpcoming(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Call, error)
}

type callRepo struct {
	db *sqlx.DB
}

func NewCallRepo(db *sqlx.DB) CallRepository {
	return &callRepo{db: db}
}

func (r *callRepo) GetOrCreate(ctx context.Context, call *models.Call) (*models.Call, bool, error) {
	query := `
		INSERT INTO calls (type, id, creator_id, starts_at, description, custom, created_at, updated_at)
		VALUES (:type, :id, :creator_id, :starts_at, :description, :custom, :created_at, :updated_at)
		ON CONFLICT (type, id) DO NOTHING
	`

	res, err := r.db.NamedExecContext(ctx, query, call)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return nil, false, ErrUserNotFound
		}

		return nil, false, fmt.Errorf("insert call: %w", err)
	}

	aff, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	stored, err := r.GetByID(ctx, call.Type, call.ID)
	if err != nil {
		return nil, false, err
	}

	return stored, aff == 1, nil
}

func (r *callRepo) GetByID(ctx context.Context, callType, id string) (*models.Call, error) {
	var call models.Call

	err := r.db.GetContext(ctx, &call, "SELECT * FROM calls WHERE type = $1 AND id = $2", callType, id)
	if err != nil {
		return nil, notFound(err, ErrCallNotFound)
	}

	return &call, nil
}

func (r *callRepo) MarkEnded(ctx context.Context, callType, id string, at time.Time) error {
	_, err := r.db.ExecContext(
		ctx,
		"UPDATE calls SET ended_at = $1, updated_at = $1 WHERE type = $2 AND id = $3 AND ended_at IS NULL",
		at,
		callType,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark call ended: %w", err)
	}

	return nil
}

func (r *callRepo) UpsertMembers(ctx context.Context, callType, id string, userIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO call_members (call_type, call_id, user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`

	for _, userID := range userIDs {
		if _, err = tx.ExecContext(ctx, query, callType, id, userID); err != nil {
			if pgCode(err) == foreignKeyViolation {
				return fmt.Errorf("add member %s: %w", userID, ErrUserNotFound)
			}

			return fmt.Errorf("add member %s: %w", userID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (r *callRepo) ListMembers(ctx context.Context, callType, id string) ([]models.CallMember, error) {
	members := make([]models.CallMember, 0)

	query := `
		SELECT m.call_type, m.call_id, m.user_id, u.username, u.image, m.created_at
		FROM call_members m
		INNER JOIN users u ON u.id = m.user_id
		WHERE m.call_type = $1 AND m.call_id = $2
		ORDER BY m.created_at, u.username
	`

	if err := r.db.SelectContext(ctx, &members, query, callType, id); err != nil {
		return nil, fmt.Errorf("select members: %w", err)
	}

	return members, nil
}

func (r *callRepo) ListUpcoming(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Call, error) {
	calls := make([]*models.Call, 0)

	query := `
		SELECT c.*
		FROM calls c
		INNER JOIN call_members m ON m.call_type = c.type AND m.call_id = c.id
		WHERE m.user_id = $1
		  AND c.ended_at IS NULL
		  AND c.starts_at > $2
		ORDER BY c.starts_at
	`

	if err := r.db.SelectContext(ctx, &calls, query, userID, now); err != nil {
		return nil, fmt.Errorf("select upcoming calls: %w", err)
	}

	return calls, nil
}

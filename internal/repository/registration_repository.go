package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/repository/base"
)

type RegistrationRepository struct {
	*base.Repository
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{Repository: base.NewRepository(pool)}
}

// Add записывает пользователя на событие. Повторная запись не является ошибкой.
func (r *RegistrationRepository) Add(ctx context.Context, eventID, userID int64) error {
	query := `
		INSERT INTO registrations (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`
	if _, err := r.ExecAffected(ctx, query, eventID, userID); err != nil {
		return fmt.Errorf("add registration: %w", err)
	}
	return nil
}

// Remove снимает пользователя с события
func (r *RegistrationRepository) Remove(ctx context.Context, eventID, userID int64) (bool, error) {
	affected, err := r.ExecAffected(ctx,
		`DELETE FROM registrations WHERE event_id = $1 AND user_id = $2`,
		eventID, userID)
	if err != nil {
		return false, fmt.Errorf("remove registration: %w", err)
	}
	return affected > 0, nil
}

// IsRegistered записан ли пользователь на событие
func (r *RegistrationRepository) IsRegistered(ctx context.Context, eventID, userID int64) (bool, error) {
	var registered bool
	err := r.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID).Scan(&registered)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return registered, nil
}

// Count количество участников события
func (r *RegistrationRepository) Count(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.QueryRow(ctx,
		`SELECT count(*) FROM registrations WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

// Participants участники события в порядке записи
func (r *RegistrationRepository) Participants(ctx context.Context, eventID int64) ([]model.Participant, error) {
	query := `
		SELECT u.id, u.telegram_id, u.username, u.first_name, u.last_name, u.role, u.created_at,
		       r.created_at
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.created_at, r.id
	`

	rows, err := r.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []model.Participant
	for rows.Next() {
		var p model.Participant
		err := rows.Scan(
			&p.User.ID,
			&p.User.TelegramID,
			&p.User.Username,
			&p.User.FirstName,
			&p.User.LastName,
			&p.User.Role,
			&p.User.CreatedAt,
			&p.RegisteredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}

	return participants, nil
}

// ParticipantTelegramIDs telegram_id участников (для уведомлений об изменениях)
func (r *RegistrationRepository) ParticipantTelegramIDs(ctx context.Context, eventID int64) ([]int64, error) {
	query := `
		SELECT u.telegram_id
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.id
	`

	rows, err := r.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participant ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participant ids: %w", err)
	}

	return ids, nil
}

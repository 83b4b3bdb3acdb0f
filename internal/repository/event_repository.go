package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velobro/event_bot/internal/model"
	"github.com/velobro/event_bot/internal/repository/base"
)

type EventRepository struct {
	*base.Repository
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{Repository: base.NewRepository(pool)}
}

const eventColumns = `
	e.id, e.title, e.event_date, e.end_date, e.event_time, e.event_end_time,
	e.place, e.description, e.cost, e.max_participants,
	e.reminder_3days, e.reminder_1day, e.reminder_3days_sent_at, e.reminder_1day_sent_at,
	e.status, e.created_by, e.created_at,
	COALESCE(
		(SELECT array_agg(i.file_id ORDER BY i.position) FROM event_images i WHERE i.event_id = e.id),
		'{}'
	)`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		ev        model.Event
		eventTime pgtype.Time
		endTime   pgtype.Time
		cost      pgtype.Numeric
		createdBy *int64
	)
	err := row.Scan(
		&ev.ID,
		&ev.Title,
		&ev.Date,
		&ev.EndDate,
		&eventTime,
		&endTime,
		&ev.Place,
		&ev.Description,
		&cost,
		&ev.Limit,
		&ev.Reminder3Days,
		&ev.Reminder1Day,
		&ev.Reminder3DaysSentAt,
		&ev.Reminder1DaySentAt,
		&ev.Status,
		&createdBy,
		&ev.CreatedAt,
		&ev.Images,
	)
	if err != nil {
		return nil, err
	}
	ev.Time = timeOfDay(eventTime)
	ev.EndTime = timeOfDay(endTime)
	ev.Cost = decimalOf(cost)
	if createdBy != nil {
		ev.CreatedBy = *createdBy
	}
	return &ev, nil
}

// Create сохраняет событие вместе с фотографиями одной транзакцией
func (r *EventRepository) Create(ctx context.Context, ev *model.Event) error {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create event: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO events (
			title, event_date, end_date, event_time, event_end_time,
			place, description, cost, max_participants,
			reminder_3days, reminder_1day, status, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`

	status := ev.Status
	if status == "" {
		status = model.EventStatusActive
	}

	err = tx.QueryRow(ctx, query,
		ev.Title,
		ev.Date,
		ev.EndDate,
		pgTime(ev.Time),
		pgTime(ev.EndTime),
		ev.Place,
		ev.Description,
		numericArg(ev.Cost),
		ev.Limit,
		ev.Reminder3Days,
		ev.Reminder1Day,
		status,
		ev.CreatedBy,
	).Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	ev.Status = status

	for i, fileID := range ev.Images {
		_, err = tx.Exec(ctx,
			`INSERT INTO event_images (event_id, file_id, position) VALUES ($1, $2, $3)`,
			ev.ID, fileID, i)
		if err != nil {
			return fmt.Errorf("create event image: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create event: %w", err)
	}
	return nil
}

// GetByID получает событие с фотографиями
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`

	ev, err := scanEvent(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	return ev, nil
}

// ListUpcoming активные события, которые ещё не закончились к дате onOrAfter
func (r *EventRepository) ListUpcoming(ctx context.Context, onOrAfter time.Time) ([]model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		WHERE e.status = $1 AND COALESCE(e.end_date, e.event_date) >= $2::date
		ORDER BY e.event_date, e.id
	`

	rows, err := r.Query(ctx, query, model.EventStatusActive, onOrAfter)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ReminderCandidates активные события с включёнными, но ещё не отправленными напоминаниями
func (r *EventRepository) ReminderCandidates(ctx context.Context) ([]model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		WHERE e.status = $1
		  AND ((e.reminder_3days AND e.reminder_3days_sent_at IS NULL)
		    OR (e.reminder_1day AND e.reminder_1day_sent_at IS NULL))
		ORDER BY e.event_date, e.id
	`

	rows, err := r.Query(ctx, query, model.EventStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list reminder candidates: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Update частичное обновление: пишутся только поля с флажком Set*.
// Возвращает обновлённое событие, nil если события нет.
func (r *EventRepository) Update(ctx context.Context, id int64, upd model.EventUpdate) (*model.Event, error) {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update event: %w", err)
	}
	defer tx.Rollback(ctx)

	set, args := buildEventSet(upd)
	if len(set) > 0 {
		args = append(args, id)
		query := fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d`,
			strings.Join(set, ", "), len(args))
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("update event: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, nil
		}
	} else {
		var exists bool
		err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check event exists: %w", err)
		}
		if !exists {
			return nil, nil
		}
	}

	if upd.SetImages {
		if _, err := tx.Exec(ctx, `DELETE FROM event_images WHERE event_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear event images: %w", err)
		}
		for i, fileID := range upd.Images {
			_, err := tx.Exec(ctx,
				`INSERT INTO event_images (event_id, file_id, position) VALUES ($1, $2, $3)`,
				id, fileID, i)
			if err != nil {
				return nil, fmt.Errorf("update event image: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update event: %w", err)
	}

	return r.GetByID(ctx, id)
}

func buildEventSet(upd model.EventUpdate) ([]string, []any) {
	var (
		set  []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addCast := func(column, cast string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d%s", column, len(args), cast))
	}

	if upd.SetTitle {
		add("title", upd.Title)
	}
	if upd.SetDate {
		add("event_date", upd.Date)
		add("end_date", upd.EndDate)
	}
	if upd.SetTime {
		add("event_time", pgTime(upd.Time))
	}
	if upd.SetEndTime {
		add("event_end_time", pgTime(upd.EndTime))
	}
	if upd.SetPlace {
		add("place", upd.Place)
	}
	if upd.SetDescription {
		add("description", upd.Description)
	}
	if upd.SetCost {
		addCast("cost", "::numeric", numericArg(upd.Cost))
	}
	if upd.SetLimit {
		add("max_participants", upd.Limit)
	}
	if upd.SetReminders {
		add("reminder_3days", upd.Reminder3Days)
		add("reminder_1day", upd.Reminder1Day)
	}
	if upd.SetReminder3DaysSentAt {
		add("reminder_3days_sent_at", upd.Reminder3DaysSentAt)
	}
	if upd.SetReminder1DaySentAt {
		add("reminder_1day_sent_at", upd.Reminder1DaySentAt)
	}
	if upd.SetStatus {
		add("status", upd.Status)
	}
	return set, args
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/maayanhealth/clinic-api/internal/model"
	"github.com/maayanhealth/clinic-api/internal/repository"
)

type roomRepository struct {
	db *sqlx.DB
}

func NewRoomRepository(db *sqlx.DB) repository.RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) CreateRoom(ctx context.Context, room *model.Room) error {
	query := `INSERT INTO rooms (id, name, location) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, room.ID, room.Name, room.Location); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (r *roomRepository) ListRooms(ctx context.Context) ([]*model.Room, error) {
	var rooms []*model.Room
	if err := r.db.SelectContext(ctx, &rooms, `SELECT * FROM rooms ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (r *roomRepository) CreateBooking(ctx context.Context, booking *model.RoomBooking) error {
	query := `
		INSERT INTO room_bookings (id, room_id, date, start_time, end_time, therapist_id,
			is_blocked, notes, created_at, created_by, updated_at, updated_by)
		VALUES (:id, :room_id, :date, :start_time, :end_time, :therapist_id,
			:is_blocked, :notes, :created_at, :created_by, :updated_at, :updated_by)
	`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("failed to create room booking: %w", err)
	}
	return nil
}

func (r *roomRepository) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM room_bookings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete room booking: %w", err)
	}
	return nil
}

func (r *roomRepository) ListBookings(ctx context.Context, roomID uuid.UUID, date time.Time) ([]*model.RoomBooking, error) {
	query := `SELECT * FROM room_bookings WHERE room_id = $1 AND date = $2 ORDER BY start_time`
	var bookings []*model.RoomBooking
	if err := r.db.SelectContext(ctx, &bookings, query, roomID, date); err != nil {
		return nil, fmt.Errorf("failed to list room bookings: %w", err)
	}
	return bookings, nil
}

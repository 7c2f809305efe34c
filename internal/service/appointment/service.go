package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/maayanhealth/clinic-api/internal/model"
	"github.com/maayanhealth/clinic-api/internal/repository"
	apperrors "github.com/maayanhealth/clinic-api/pkg/errors"
)

type AppointmentService interface {
	CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest, actor string) (*model.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	CancelAppointment(ctx context.Context, id uuid.UUID, actor string) (*model.Appointment, error)
	CheckIn(ctx context.Context, id uuid.UUID, actor string) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
	CreateRoom(ctx context.Context, name, location string) (*model.Room, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
	BookRoom(ctx context.Context, req *model.CreateRoomBookingRequest, actor string) (*model.RoomBooking, error)
	CancelBooking(ctx context.Context, id uuid.UUID) error
	ListBookings(ctx context.Context, roomID uuid.UUID, date time.Time) ([]*model.RoomBooking, error)
}

type Service struct {
	appointments repository.AppointmentRepository
	rooms        repository.RoomRepository
}

func NewService(appointments repository.AppointmentRepository, rooms repository.RoomRepository) *Service {
	return &Service{appointments: appointments, rooms: rooms}
}

func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest, actor string) (*model.Appointment, error) {
	if !req.AllDay && !req.EndTime.After(req.StartTime) {
		return nil, apperrors.BadRequest("appointment must end after it starts", nil)
	}

	appointment := &model.Appointment{
		Base:        model.Base{ID: uuid.New()},
		Title:       req.Title,
		PatientID:   req.PatientID,
		TherapistID: req.TherapistID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		AllDay:      req.AllDay,
		Status:      model.AppointmentStatusScheduled,
		Notes:       req.Notes,
	}
	appointment.Touch(actor, time.Now())

	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return appointment, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}
	return appointment, nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID, actor string) (*model.Appointment, error) {
	appointment, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	appointment.Status = model.AppointmentStatusCancelled
	appointment.Touch(actor, time.Now())
	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}
	return appointment, nil
}

func (s *Service) CheckIn(ctx context.Context, id uuid.UUID, actor string) (*model.Appointment, error) {
	appointment, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.BadRequest("cannot check in to a cancelled appointment", nil)
	}
	appointment.CheckedIn = true
	appointment.Touch(actor, time.Now())
	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to check in: %w", err)
	}
	return appointment, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if _, err := s.appointments.Get(ctx, id); err != nil {
		return apperrors.NotFound("appointment", err)
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

func (s *Service) CreateRoom(ctx context.Context, name, location string) (*model.Room, error) {
	if name == "" {
		return nil, apperrors.BadRequest("room name is required", nil)
	}
	room := &model.Room{ID: uuid.New(), Name: name, Location: location}
	if err := s.rooms.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return room, nil
}

func (s *Service) ListRooms(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// BookRoom rejects any booking whose slot overlaps an existing booking
// for the same room on the same date. Touching edges do not overlap.
func (s *Service) BookRoom(ctx context.Context, req *model.CreateRoomBookingRequest, actor string) (*model.RoomBooking, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.BadRequest("booking must end after it starts", nil)
	}

	existing, err := s.rooms.ListBookings(ctx, req.RoomID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to check room availability: %w", err)
	}
	for _, b := range existing {
		if req.StartTime.Before(b.EndTime) && b.StartTime.Before(req.EndTime) {
			return nil, apperrors.Conflict("room is already booked for this slot", nil)
		}
	}

	booking := &model.RoomBooking{
		Base:        model.Base{ID: uuid.New()},
		RoomID:      req.RoomID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		TherapistID: req.TherapistID,
		IsBlocked:   req.IsBlocked,
		Notes:       req.Notes,
	}
	booking.Touch(actor, time.Now())

	if err := s.rooms.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create room booking: %w", err)
	}
	return booking, nil
}

func (s *Service) CancelBooking(ctx context.Context, id uuid.UUID) error {
	if err := s.rooms.DeleteBooking(ctx, id); err != nil {
		return fmt.Errorf("failed to cancel room booking: %w", err)
	}
	return nil
}

func (s *Service) ListBookings(ctx context.Context, roomID uuid.UUID, date time.Time) ([]*model.RoomBooking, error) {
	bookings, err := s.rooms.ListBookings(ctx, roomID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list room bookings: %w", err)
	}
	return bookings, nil
}

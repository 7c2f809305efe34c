package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maayanhealth/clinic-api/internal/model"
	apperrors "github.com/maayanhealth/clinic-api/pkg/errors"
)

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (f *fakeAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	stored := *a
	f.appointments[a.ID] = &stored
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, assert.AnError
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	stored := *a
	f.appointments[a.ID] = &stored
	return nil
}

func (f *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.appointments, id)
	return nil
}

func (f *fakeAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range f.appointments {
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

type fakeRoomRepo struct {
	rooms    []*model.Room
	bookings map[uuid.UUID]*model.RoomBooking
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{bookings: make(map[uuid.UUID]*model.RoomBooking)}
}

func (f *fakeRoomRepo) CreateRoom(_ context.Context, room *model.Room) error {
	f.rooms = append(f.rooms, room)
	return nil
}

func (f *fakeRoomRepo) ListRooms(_ context.Context) ([]*model.Room, error) {
	return f.rooms, nil
}

func (f *fakeRoomRepo) CreateBooking(_ context.Context, booking *model.RoomBooking) error {
	stored := *booking
	f.bookings[booking.ID] = &stored
	return nil
}

func (f *fakeRoomRepo) DeleteBooking(_ context.Context, id uuid.UUID) error {
	delete(f.bookings, id)
	return nil
}

func (f *fakeRoomRepo) ListBookings(_ context.Context, roomID uuid.UUID, date time.Time) ([]*model.RoomBooking, error) {
	var out []*model.RoomBooking
	for _, b := range f.bookings {
		if b.RoomID == roomID && b.Date.Equal(date) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func newTestService() (*Service, *fakeAppointmentRepo, *fakeRoomRepo) {
	appointments := newFakeAppointmentRepo()
	rooms := newFakeRoomRepo()
	return NewService(appointments, rooms), appointments, rooms
}

func slot(hour, minute int) time.Time {
	return time.Date(2024, time.March, 5, hour, minute, 0, 0, time.UTC)
}

var bookingDate = time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

func TestCreateAppointment(t *testing.T) {
	svc, _, _ := newTestService()
	therapist := uuid.New()

	a, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		Title:       "intake session",
		TherapistID: therapist,
		StartTime:   slot(10, 0),
		EndTime:     slot(11, 0),
	}, "secretary")
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusScheduled, a.Status)
	assert.False(t, a.CheckedIn)
	assert.Equal(t, "secretary", a.CreatedBy)
}

func TestCreateAppointment_RejectsInvertedSlot(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		Title:       "bad slot",
		TherapistID: uuid.New(),
		StartTime:   slot(11, 0),
		EndTime:     slot(10, 0),
	}, "secretary")
	require.Error(t, err)
}

func TestCancelThenCheckInFails(t *testing.T) {
	svc, _, _ := newTestService()

	a, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		Title:       "session",
		TherapistID: uuid.New(),
		StartTime:   slot(10, 0),
		EndTime:     slot(11, 0),
	}, "secretary")
	require.NoError(t, err)

	cancelled, err := svc.CancelAppointment(context.Background(), a.ID, "secretary")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)

	_, err = svc.CheckIn(context.Background(), a.ID, "secretary")
	require.Error(t, err)
}

func TestCheckIn(t *testing.T) {
	svc, _, _ := newTestService()

	a, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		Title:       "session",
		TherapistID: uuid.New(),
		StartTime:   slot(10, 0),
		EndTime:     slot(11, 0),
	}, "secretary")
	require.NoError(t, err)

	checked, err := svc.CheckIn(context.Background(), a.ID, "therapist")
	require.NoError(t, err)
	assert.True(t, checked.CheckedIn)
}

func TestBookRoom_RejectsOverlap(t *testing.T) {
	svc, _, _ := newTestService()
	room, err := svc.CreateRoom(context.Background(), "room 1", "ground floor")
	require.NoError(t, err)

	_, err = svc.BookRoom(context.Background(), &model.CreateRoomBookingRequest{
		RoomID:    room.ID,
		Date:      bookingDate,
		StartTime: slot(10, 0),
		EndTime:   slot(11, 0),
	}, "secretary")
	require.NoError(t, err)

	overlapping := []struct {
		name       string
		start, end time.Time
	}{
		{"identical", slot(10, 0), slot(11, 0)},
		{"straddles start", slot(9, 30), slot(10, 30)},
		{"straddles end", slot(10, 30), slot(11, 30)},
		{"contained", slot(10, 15), slot(10, 45)},
		{"contains", slot(9, 0), slot(12, 0)},
	}
	for _, tc := range overlapping {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.BookRoom(context.Background(), &model.CreateRoomBookingRequest{
				RoomID:    room.ID,
				Date:      bookingDate,
				StartTime: tc.start,
				EndTime:   tc.end,
			}, "secretary")
			require.Error(t, err)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrConflict, appErr.Code)
		})
	}
}

func TestBookRoom_TouchingEdgesAllowed(t *testing.T) {
	svc, _, _ := newTestService()
	room, err := svc.CreateRoom(context.Background(), "room 1", "")
	require.NoError(t, err)

	_, err = svc.BookRoom(context.Background(), &model.CreateRoomBookingRequest{
		RoomID:    room.ID,
		Date:      bookingDate,
		StartTime: slot(10, 0),
		EndTime:   slot(11, 0),
	}, "secretary")
	require.NoError(t, err)

	_, err = svc.BookRoom(context.Background(), &model.CreateRoomBookingRequest{
		RoomID:    room.ID,
		Date:      bookingDate,
		StartTime: slot(11, 0),
		EndTime:   slot(12, 0),
	}, "secretary")
	require.NoError(t, err)

	_, err = svc.BookRoom(context.Background(), &model.CreateRoomBookingRequest{
		RoomID:    room.ID,
		Date:      bookingDate,
		StartTime: slot(9, 0),
		EndTime:   slot(10, 0),
	}, "secretary")
	require.NoError(t, err)
}

func TestBookRoom_OtherRoomUnaffected(t *testing.T) {
	svc, _, _ := newTestService()
	first, err := svc.CreateRoom(context.Background(), "room 1", "")
	require.NoError(t, err)
	second, err := svc.CreateRoom(context.Background(), "room 2", "")
	require.NoError(t, err)

	_, err = svc.BookRoom(context.Background(), &model.CreateRoomBookingRequest{
		RoomID:    first.ID,
		Date:      bookingDate,
		StartTime: slot(10, 0),
		EndTime:   slot(11, 0),
	}, "secretary")
	require.NoError(t, err)

	_, err = svc.BookRoom(context.Background(), &model.CreateRoomBookingRequest{
		RoomID:    second.ID,
		Date:      bookingDate,
		StartTime: slot(10, 0),
		EndTime:   slot(11, 0),
	}, "secretary")
	require.NoError(t, err)
}

func TestCancelBooking_FreesSlot(t *testing.T) {
	svc, _, _ := newTestService()
	room, err := svc.CreateRoom(context.Background(), "room 1", "")
	require.NoError(t, err)

	booking, err := svc.BookRoom(context.Background(), &model.CreateRoomBookingRequest{
		RoomID:    room.ID,
		Date:      bookingDate,
		StartTime: slot(10, 0),
		EndTime:   slot(11, 0),
	}, "secretary")
	require.NoError(t, err)

	require.NoError(t, svc.CancelBooking(context.Background(), booking.ID))

	_, err = svc.BookRoom(context.Background(), &model.CreateRoomBookingRequest{
		RoomID:    room.ID,
		Date:      bookingDate,
		StartTime: slot(10, 0),
		EndTime:   slot(11, 0),
	}, "secretary")
	require.NoError(t, err)
}

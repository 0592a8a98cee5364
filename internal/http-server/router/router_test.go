package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/http-server/middleware/actor"
	"github.com/Freeeeeet/tutorbook/internal/http-server/response"
	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/Freeeeeet/tutorbook/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	slots    *mockSlots
	bookings *mockBookings
	sessions *mockSessions
	payments *mockPayments
	handler  http.Handler
}

func setupRouter(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		slots:    &mockSlots{},
		bookings: &mockBookings{},
		sessions: &mockSessions{},
		payments: &mockPayments{},
	}

	ts.handler = New(zap.NewNop(), Services{
		Slots:    ts.slots,
		Bookings: ts.bookings,
		Sessions: ts.sessions,
		Payments: ts.payments,
	})

	t.Cleanup(func() {
		ts.slots.AssertExpectations(t)
		ts.bookings.AssertExpectations(t)
		ts.sessions.AssertExpectations(t)
		ts.payments.AssertExpectations(t)
	})

	return ts
}

func (ts *testServer) do(method, path string, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(actor.HeaderUserID, userID)
	}

	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ResponseError {
	t.Helper()

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ResponseError
}

func TestCreateBooking_FromSlot(t *testing.T) {
	ts := setupRouter(t)

	slotID := int64(5)
	ts.bookings.On("CreateFromSlot", mock.Anything, service.CreateFromSlotInput{
		StudentID: 10,
		TutorID:   20,
		SlotID:    slotID,
		Topic:     "Algebra",
	}).Return(&model.Booking{ID: 1, StudentID: 10, TutorID: 20, SlotID: &slotID, Status: model.BookingStatusPending, Topic: "Algebra"}, nil)

	w := ts.do(http.MethodPost, "/bookings", "10", map[string]any{"tutor_id": 20, "slot_id": slotID, "topic": "Algebra"})

	assert.Equal(t, http.StatusCreated, w.Code)

	var got model.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, model.BookingStatusPending, got.Status)
}

func TestCreateBooking_Instant(t *testing.T) {
	ts := setupRouter(t)

	start := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	ts.bookings.On("CreateInstant", mock.Anything, service.CreateInstantInput{
		StudentID: 10,
		TutorID:   20,
		Window:    model.Window{Start: start, End: end},
	}).Return(&model.Booking{ID: 2, StartTime: start, EndTime: end}, nil)

	w := ts.do(http.MethodPost, "/bookings", "10", map[string]any{"tutor_id": 20, "start_time": start, "end_time": end})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateBooking_RequiresSlotOrWindow(t *testing.T) {
	ts := setupRouter(t)

	w := ts.do(http.MethodPost, "/bookings", "10", map[string]any{"tutor_id": 20})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.BAD_REQUEST, decodeError(t, w).Code)
}

func TestCreateBooking_Unauthenticated(t *testing.T) {
	ts := setupRouter(t)

	w := ts.do(http.MethodPost, "/bookings", "", map[string]any{"tutor_id": 20, "slot_id": 1})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.UNAUTHORIZED, decodeError(t, w).Code)
}

func TestCreateBooking_SlotAlreadyBooked(t *testing.T) {
	ts := setupRouter(t)

	ts.bookings.On("CreateFromSlot", mock.Anything, mock.Anything).Return(nil, model.ErrSlotAlreadyBooked)

	w := ts.do(http.MethodPost, "/bookings", "10", map[string]any{"tutor_id": 20, "slot_id": 3})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, response.CONFLICT, decodeError(t, w).Code)
}

func TestTransition(t *testing.T) {
	ts := setupRouter(t)

	ts.bookings.On("Transition", mock.Anything, int64(7), "Confirmed", int64(20), false).
		Return(&model.Booking{ID: 7, Status: model.BookingStatusConfirmed}, nil)

	w := ts.do(http.MethodPatch, "/bookings/7/status", "20", map[string]string{"status": "Confirmed"})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTransition_Forbidden(t *testing.T) {
	ts := setupRouter(t)

	ts.bookings.On("Transition", mock.Anything, int64(7), "Cancelled", int64(99), false).
		Return(nil, model.ErrNotParticipant)

	w := ts.do(http.MethodPatch, "/bookings/7/status", "99", map[string]string{"status": "Cancelled"})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTransition_InvalidID(t *testing.T) {
	ts := setupRouter(t)

	w := ts.do(http.MethodPatch, "/bookings/abc/status", "20", map[string]string{"status": "Confirmed"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBooking_HiddenFromOutsiders(t *testing.T) {
	ts := setupRouter(t)

	ts.bookings.On("Get", mock.Anything, int64(7)).Return(&model.Booking{ID: 7, StudentID: 10, TutorID: 20}, nil)

	w := ts.do(http.MethodGet, "/bookings/7", "30", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodGet, "/bookings/7", "10", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListAllBookings_AdminOnly(t *testing.T) {
	ts := setupRouter(t)

	w := ts.do(http.MethodGet, "/admin/bookings", "10", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	ts.bookings.On("ListAllForAdmin", mock.Anything, model.BookingFilter{Page: 2}).
		Return(model.Page[*model.Booking]{Items: []*model.Booking{}, Page: 2, PageSize: 10}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/bookings?page=2", nil)
	req.Header.Set(actor.HeaderUserID, "1")
	req.Header.Set(actor.HeaderIsAdmin, "true")

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListAvailableSlots(t *testing.T) {
	ts := setupRouter(t)

	from := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	ts.slots.On("ListAvailable", mock.Anything, int64(20), &from, (*time.Time)(nil), model.BookingFilter{}).
		Return(model.Page[*model.AvailabilitySlot]{Items: []*model.AvailabilitySlot{{ID: 1, TutorID: 20}}, Total: 1, Page: 1, PageSize: 10}, nil)

	w := ts.do(http.MethodGet, "/tutors/20/slots/available?from=2030-01-01", "10", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var page model.Page[*model.AvailabilitySlot]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
}

func TestDeleteSlot_Booked(t *testing.T) {
	ts := setupRouter(t)

	ts.slots.On("Delete", mock.Anything, int64(20), false, int64(4)).
		Return(model.ErrValidation)

	w := ts.do(http.MethodDelete, "/slots/4", "20", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSessions_Role(t *testing.T) {
	ts := setupRouter(t)

	ts.sessions.On("ListByUser", mock.Anything, int64(20), true, model.BookingFilter{}).
		Return(model.Page[*model.Session]{Items: []*model.Session{}, Page: 1, PageSize: 10}, nil)

	w := ts.do(http.MethodGet, "/sessions?role=tutor", "20", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/sessions?role=owner", "20", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentWebhook_Paid(t *testing.T) {
	ts := setupRouter(t)

	ts.payments.On("MarkPaid", mock.Anything, "order-1").
		Return(&model.Booking{ID: 7, PaymentStatus: model.PaymentStatusPaid}, nil)

	w := ts.do(http.MethodPost, "/payments/webhook", "", map[string]string{"order_code": "order-1", "status": "PAID"})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPaymentWebhook_OtherStatusIgnored(t *testing.T) {
	ts := setupRouter(t)

	w := ts.do(http.MethodPost, "/payments/webhook", "", map[string]string{"order_code": "order-1", "status": "CANCELLED"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ignored":true`)
}

func TestPaymentWebhook_UnknownOrder(t *testing.T) {
	ts := setupRouter(t)

	ts.payments.On("MarkPaid", mock.Anything, "missing").Return(nil, model.ErrBookingNotFound)

	w := ts.do(http.MethodPost, "/payments/webhook", "", map[string]string{"order_code": "missing", "status": "paid"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPayBooking_OnlyStudent(t *testing.T) {
	ts := setupRouter(t)

	ts.bookings.On("Get", mock.Anything, int64(7)).Return(&model.Booking{ID: 7, StudentID: 10, TutorID: 20}, nil)
	ts.payments.On("MarkProcessing", mock.Anything, int64(7)).
		Return(&model.Booking{ID: 7, OrderCode: "order-7", PaymentStatus: model.PaymentStatusProcessing}, nil).Once()

	w := ts.do(http.MethodPost, "/bookings/7/pay", "20", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPost, "/bookings/7/pay", "10", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "order-7")
}

package router

import (
	"net/http"

	"github.com/Freeeeeet/tutorbook/internal/http-server/handlers/bookings"
	"github.com/Freeeeeet/tutorbook/internal/http-server/handlers/payments"
	"github.com/Freeeeeet/tutorbook/internal/http-server/handlers/sessions"
	"github.com/Freeeeeet/tutorbook/internal/http-server/handlers/slots"
	"github.com/Freeeeeet/tutorbook/internal/http-server/middleware/actor"
	"github.com/Freeeeeet/tutorbook/internal/http-server/middleware/mwlogger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type Services struct {
	Slots    slots.SlotService
	Bookings bookings.BookingService
	Sessions sessions.SessionService
	Payments interface {
		bookings.PaymentStarter
		payments.PaymentConfirmer
	}
}

func New(log *zap.Logger, svc Services) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	// Вебхук вызывает платёжный шлюз, пользователя в запросе нет
	router.Post("/payments/webhook", payments.NewWebhook(log, svc.Payments))

	router.Group(func(r chi.Router) {
		r.Use(actor.New())

		// Slots
		r.Post("/slots", slots.NewDeclare(log, svc.Slots))
		r.Get("/slots/{id}", slots.NewGet(log, svc.Slots))
		r.Delete("/slots/{id}", slots.NewDelete(log, svc.Slots))
		r.Get("/tutors/{tutorID}/slots", slots.NewListByTutor(log, svc.Slots))
		r.Get("/tutors/{tutorID}/slots/available", slots.NewListAvailable(log, svc.Slots))

		// Bookings
		r.Post("/bookings", bookings.NewCreate(log, svc.Bookings))
		r.Get("/bookings/student", bookings.NewListAsStudent(log, svc.Bookings))
		r.Get("/bookings/tutor", bookings.NewListAsTutor(log, svc.Bookings))
		r.Get("/bookings/upcoming", bookings.NewListUpcoming(log, svc.Bookings))
		r.Get("/bookings/{id}", bookings.NewGet(log, svc.Bookings))
		r.Patch("/bookings/{id}/status", bookings.NewTransition(log, svc.Bookings))
		r.Post("/bookings/{id}/pay", bookings.NewPay(log, svc.Bookings, svc.Payments))
		r.Get("/bookings/{id}/session", sessions.NewGetByBooking(log, svc.Sessions))
		r.Get("/admin/bookings", bookings.NewListAll(log, svc.Bookings))

		// Sessions
		r.Post("/sessions", sessions.NewCreate(log, svc.Sessions))
		r.Get("/sessions", sessions.NewList(log, svc.Sessions))
		r.Get("/sessions/{id}", sessions.NewGet(log, svc.Sessions))
		r.Patch("/sessions/{id}", sessions.NewUpdate(log, svc.Sessions))
	})

	return router
}

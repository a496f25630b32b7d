package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/showtime-booking-engine/internal/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(middleware.NotFoundHandler)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler)

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(chimiddleware.RequestID)
	r.Use(app.logRequest)
	r.Use(middleware.RecoverPanic(app.logger))

	r.Get("/healthcheck", app.health.GetHealth)
	r.Post("/webhook", app.StripeWebhookHandler)

	r.Group(func(r chi.Router) {
		r.Use(app.sessionManager.LoadAndSave)

		r.Get("/showtimes/{showtimeId}/seats", app.GetSeatMapHandler)

		r.With(app.requireAuthentication).Route("/showtimes/{showtimeId}/holds", func(r chi.Router) {
			r.Get("/", app.ListHoldsHandler)
			r.Post("/", app.ClaimSeatsHandler)
			r.Patch("/", app.ExtendHoldsHandler)
			r.Delete("/", app.ReleaseSeatsHandler)
		})

		r.With(app.requireAuthentication).Route("/bookings", func(r chi.Router) {
			r.Post("/", app.CreateBookingHandler)
			r.Get("/", app.ListUserBookingsHandler)
			r.Get("/code/{code}", app.GetBookingByCodeHandler)

			r.Route("/{bookingId}", func(r chi.Router) {
				r.Get("/", app.GetBookingHandler)
				r.Post("/cancellation", app.CancelBookingHandler)
				r.Post("/checkout", app.CreateCheckoutSessionHandler)
				r.With(app.requireStaff).Post("/payment", app.ConfirmPaymentHandler)
				r.With(app.requireStaff).Post("/refund", app.RefundBookingHandler)
			})
		})

		r.With(app.requireAuthentication, app.requireStaff).Post("/internal/sweeps", app.SweepHandler)
	})

	return r
}

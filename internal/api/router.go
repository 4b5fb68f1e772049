package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/provider-booking/internal/appointment"
	"github.com/hackgods/provider-booking/internal/provider"
	"github.com/hackgods/provider-booking/internal/scheduling"
)

type AppointmentService interface {
	Book(ctx context.Context, req appointment.BookingRequest) (*appointment.BookingResult, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*scheduling.Appointment, error)
	Reschedule(ctx context.Context, req appointment.RescheduleRequest) (*scheduling.Appointment, error)
	Complete(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
	MarkNoShow(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
	AvailableSlots(ctx context.Context, providerID uuid.UUID, date time.Time, durationMinutes int) ([]scheduling.TimeSlot, error)
	Get(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
	List(ctx context.Context, f appointment.ListFilter) ([]*scheduling.Appointment, error)
}

type ProviderService interface {
	Create(ctx context.Context, d provider.Details) (*scheduling.ServiceProvider, error)
	Update(ctx context.Context, id uuid.UUID, d provider.Details) (*scheduling.ServiceProvider, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*scheduling.ServiceProvider, error)
	Activate(ctx context.Context, id uuid.UUID) (*scheduling.ServiceProvider, error)
	AddWorkingHours(ctx context.Context, id uuid.UUID, day time.Weekday, start, end scheduling.TimeOfDay) (scheduling.WorkingHours, error)
	BlockTime(ctx context.Context, id uuid.UUID, start, end time.Time, reason string) (scheduling.BlockedTime, error)
	Get(ctx context.Context, id uuid.UUID) (*scheduling.ServiceProvider, error)
	List(ctx context.Context, includeInactive bool) ([]*scheduling.ServiceProvider, error)
}

type RouterConfig struct {
	Appointments AppointmentService
	Providers    ProviderService
	Health       *HealthHandler
	Logger       *zap.Logger

	// Requests per second per client IP; zero disables the limit.
	RateLimit      int
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health endpoints
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.Liveness)
		r.Get("/health/ready", cfg.Health.Readiness)
	}

	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit, time.Second))
		}

		// Provider endpoints
		r.Route("/providers", func(r chi.Router) {
			r.Post("/", createProviderHandler(cfg.Providers))
			r.Get("/", listProvidersHandler(cfg.Providers))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", getProviderHandler(cfg.Providers))
				r.Put("/", updateProviderHandler(cfg.Providers))
				r.Delete("/", deactivateProviderHandler(cfg.Providers))
				r.Post("/activate", activateProviderHandler(cfg.Providers))
				r.Post("/working-hours", addWorkingHoursHandler(cfg.Providers))
				r.Post("/blocked-times", blockTimeHandler(cfg.Providers))
				r.Get("/availability", availabilityHandler(cfg.Appointments))
			})
		})

		// Appointment endpoints
		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", bookAppointmentHandler(cfg.Appointments))
			r.Get("/", listAppointmentsHandler(cfg.Appointments))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", getAppointmentHandler(cfg.Appointments))
				r.Post("/cancel", cancelAppointmentHandler(cfg.Appointments))
				r.Post("/reschedule", rescheduleAppointmentHandler(cfg.Appointments))
				r.Post("/complete", completeAppointmentHandler(cfg.Appointments))
				r.Post("/no-show", noShowAppointmentHandler(cfg.Appointments))
			})
		})
	})

	return r
}

// pathID parses the {id} URL parameter, writing a 400 when it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, code, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

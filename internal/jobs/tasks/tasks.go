package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"parkxcel/internal/logging"
	"parkxcel/internal/mail"
	"parkxcel/internal/models"
	"parkxcel/internal/services"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer        = otel.Tracer("parkxcel-worker")
	meter         = otel.Meter("parkxcel-worker")
	jobsCompleted metric.Int64Counter
	jobsFailed    metric.Int64Counter
	jobsDuration  metric.Float64Histogram
)

func init() {
	var err error

	jobsCompleted, err = meter.Int64Counter(
		"jobs.completed",
		metric.WithDescription("Total number of jobs completed successfully"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create jobs completed counter")
	}

	jobsFailed, err = meter.Int64Counter(
		"jobs.failed",
		metric.WithDescription("Total number of jobs failed"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create jobs failed counter")
	}

	jobsDuration, err = meter.Float64Histogram(
		"jobs.duration_ms",
		metric.WithDescription("Job processing duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create jobs duration histogram")
	}
}

type ReservationPayload struct {
	ReservationID uint              `json:"reservation_id"`
	UserID        uint              `json:"user_id"`
	SpotID        uint              `json:"spot_id"`
	LotName       string            `json:"lot_name"`
	ParkingTime   time.Time         `json:"parking_time"`
	ExitTime      *time.Time        `json:"exit_time,omitempty"`
	ParkingCost   float64           `json:"parking_cost"`
	TraceContext  map[string]string `json:"trace_context"`
}

// Directory resolves recipient addresses for notification tasks.
type Directory interface {
	GetUser(ctx context.Context, userID uint) (*models.User, error)
}

type Handlers struct {
	reports   *services.ReportService
	directory Directory
	mailer    mail.Mailer
}

func NewHandlers(reports *services.ReportService, directory Directory, mailer mail.Mailer) *Handlers {
	return &Handlers{
		reports:   reports,
		directory: directory,
		mailer:    mailer,
	}
}

func (h *Handlers) HandleBookingConfirmation(ctx context.Context, task *asynq.Task) error {
	start := time.Now()

	var payload ReservationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		recordJobMetrics(ctx, task.Type(), false, time.Since(start))
		return err
	}

	ctx, span := startPayloadSpan(payload, "job.booking_confirmation")
	defer span.End()

	user, err := h.directory.GetUser(ctx, payload.UserID)
	if err != nil {
		span.RecordError(err)
		recordJobMetrics(ctx, task.Type(), false, time.Since(start))
		return err
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYour parking spot %d at %s is booked since %s.\n\nHappy parking!",
		user.Name, payload.SpotID, payload.LotName,
		payload.ParkingTime.Format(time.RFC1123),
	)
	if err := h.mailer.Send(user.Email, "Parking booking confirmed", body); err != nil {
		span.RecordError(err)
		recordJobMetrics(ctx, task.Type(), false, time.Since(start))
		return err
	}

	span.SetStatus(codes.Ok, "booking confirmation sent")
	logging.Info(ctx).
		Uint("reservation_id", payload.ReservationID).
		Uint("user_id", payload.UserID).
		Msg("booking confirmation sent")

	recordJobMetrics(ctx, task.Type(), true, time.Since(start))
	return nil
}

func (h *Handlers) HandleReceipt(ctx context.Context, task *asynq.Task) error {
	start := time.Now()

	var payload ReservationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		recordJobMetrics(ctx, task.Type(), false, time.Since(start))
		return err
	}

	ctx, span := startPayloadSpan(payload, "job.receipt")
	defer span.End()

	user, err := h.directory.GetUser(ctx, payload.UserID)
	if err != nil {
		span.RecordError(err)
		recordJobMetrics(ctx, task.Type(), false, time.Since(start))
		return err
	}

	exitTime := ""
	if payload.ExitTime != nil {
		exitTime = payload.ExitTime.Format(time.RFC1123)
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour reservation at %s is complete.\nSpot: %d\nParked: %s\nReleased: %s\nTotal cost: %.2f\n\nThank you for parking with us.",
		user.Name, payload.LotName, payload.SpotID,
		payload.ParkingTime.Format(time.RFC1123), exitTime, payload.ParkingCost,
	)
	if err := h.mailer.Send(user.Email, "Parking receipt", body); err != nil {
		span.RecordError(err)
		recordJobMetrics(ctx, task.Type(), false, time.Since(start))
		return err
	}

	span.SetStatus(codes.Ok, "receipt sent")
	logging.Info(ctx).
		Uint("reservation_id", payload.ReservationID).
		Uint("user_id", payload.UserID).
		Msg("receipt sent")

	recordJobMetrics(ctx, task.Type(), true, time.Since(start))
	return nil
}

// HandleDailyReminder nudges regular users who are not currently parked.
func (h *Handlers) HandleDailyReminder(ctx context.Context, task *asynq.Task) error {
	start := time.Now()

	ctx, span := tracer.Start(ctx, "job.daily_reminder")
	defer span.End()

	users, err := h.reports.ListUsers(ctx)
	if err != nil {
		span.RecordError(err)
		recordJobMetrics(ctx, task.Type(), false, time.Since(start))
		return err
	}

	sent := 0
	for _, entry := range users {
		if !entry.Active || !hasRole(entry.Roles, models.RoleUser) {
			continue
		}
		if entry.CurrentLot != nil {
			continue
		}
		body := fmt.Sprintf(
			"Hi %s,\n\nLooking for a parking spot today? Book one now and it is yours in seconds.",
			entry.Name,
		)
		if err := h.mailer.Send(entry.Email, "Daily parking reminder", body); err != nil {
			logging.Error(ctx).Err(err).Uint("user_id", entry.UserID).Msg("reminder delivery failed")
			continue
		}
		sent++
	}

	span.SetAttributes(attribute.Int("reminders.sent", sent))
	span.SetStatus(codes.Ok, "daily reminders sent")
	logging.Info(ctx).Int("sent", sent).Msg("daily reminders processed")

	recordJobMetrics(ctx, task.Type(), true, time.Since(start))
	return nil
}

// HandleMonthlyReport mails each regular user a summary of the previous
// month's activity.
func (h *Handlers) HandleMonthlyReport(ctx context.Context, task *asynq.Task) error {
	start := time.Now()

	ctx, span := tracer.Start(ctx, "job.monthly_report")
	defer span.End()

	users, err := h.reports.ListUsers(ctx)
	if err != nil {
		span.RecordError(err)
		recordJobMetrics(ctx, task.Type(), false, time.Since(start))
		return err
	}

	sent := 0
	for _, entry := range users {
		if !entry.Active || !hasRole(entry.Roles, models.RoleUser) {
			continue
		}

		summary, err := h.reports.UserSummary(ctx, entry.UserID)
		if err != nil {
			logging.Error(ctx).Err(err).Uint("user_id", entry.UserID).Msg("user summary failed")
			continue
		}

		body := fmt.Sprintf(
			"Hi %s,\n\nYour monthly parking activity:\nBookings: %d\nHours parked: %.2f\nTotal spent: %.2f\nMost used lot: %s\n\nSee you next month.",
			entry.Name, summary.TotalParks, summary.TotalHours, summary.TotalCost,
			mostUsedLot(summary.LotUsage),
		)
		if err := h.mailer.Send(entry.Email, "Monthly parking report", body); err != nil {
			logging.Error(ctx).Err(err).Uint("user_id", entry.UserID).Msg("report delivery failed")
			continue
		}
		sent++
	}

	span.SetAttributes(attribute.Int("reports.sent", sent))
	span.SetStatus(codes.Ok, "monthly reports sent")
	logging.Info(ctx).Int("sent", sent).Msg("monthly reports processed")

	recordJobMetrics(ctx, task.Type(), true, time.Since(start))
	return nil
}

func startPayloadSpan(payload ReservationPayload, name string) (context.Context, trace.Span) {
	parentCtx := otel.GetTextMapPropagator().Extract(
		context.Background(),
		propagation.MapCarrier(payload.TraceContext),
	)

	ctx, span := tracer.Start(parentCtx, name)
	span.SetAttributes(
		attribute.Int64("reservation.id", int64(payload.ReservationID)),
		attribute.Int64("user.id", int64(payload.UserID)),
	)
	return ctx, span
}

func hasRole(roles []string, name string) bool {
	for _, r := range roles {
		if r == name {
			return true
		}
	}
	return false
}

func mostUsedLot(usage map[string]int) string {
	best, bestCount := "none", 0
	for lot, count := range usage {
		if count > bestCount {
			best, bestCount = lot, count
		}
	}
	return best
}

func recordJobMetrics(ctx context.Context, jobType string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("job.type", jobType),
	}

	if success {
		if jobsCompleted != nil {
			jobsCompleted.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
	} else {
		if jobsFailed != nil {
			jobsFailed.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
	}

	if jobsDuration != nil {
		jobsDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	}
}

package jobs

import (
	"context"
	"encoding/json"
	"time"

	"parkxcel/internal/logging"
	"parkxcel/internal/models"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

const (
	TypeBookingConfirmation = "notification:booking_confirmation"
	TypeReceipt             = "notification:receipt"
	TypeDailyReminder       = "report:daily_reminder"
	TypeMonthlyReport       = "report:monthly_report"
	DefaultQueue            = "default"
)

var (
	tracer       = otel.Tracer("parkxcel")
	meter        = otel.Meter("parkxcel")
	jobsEnqueued metric.Int64Counter
)

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

type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr string) (*Client, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})

	var err error
	jobsEnqueued, err = meter.Int64Counter(
		"jobs.enqueued",
		metric.WithDescription("Total number of jobs enqueued"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create jobs enqueued counter")
	}

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// BookingConfirmed enqueues a confirmation notification for a fresh
// reservation.
func (c *Client) BookingConfirmed(ctx context.Context, reservation *models.Reservation, lotName string) error {
	return c.enqueueReservation(ctx, TypeBookingConfirmation, reservation, lotName)
}

// ReceiptReady enqueues a receipt notification after a reservation is
// released and billed.
func (c *Client) ReceiptReady(ctx context.Context, reservation *models.Reservation, lotName string) error {
	return c.enqueueReservation(ctx, TypeReceipt, reservation, lotName)
}

func (c *Client) enqueueReservation(ctx context.Context, taskType string, reservation *models.Reservation, lotName string) error {
	ctx, span := tracer.Start(ctx, "job.enqueue."+taskType)
	defer span.End()

	span.SetAttributes(
		attribute.Int64("reservation.id", int64(reservation.ID)),
		attribute.String("job.type", taskType),
	)

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	payload := ReservationPayload{
		ReservationID: reservation.ID,
		UserID:        reservation.UserID,
		SpotID:        reservation.SpotID,
		LotName:       lotName,
		ParkingTime:   reservation.ParkingTime,
		ExitTime:      reservation.ExitTime,
		ParkingCost:   reservation.ParkingCost,
		TraceContext:  carrier,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(taskType, payloadBytes)
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if jobsEnqueued != nil {
		jobsEnqueued.Add(ctx, 1, metric.WithAttributes(
			attribute.String("job.type", taskType),
		))
	}

	span.SetAttributes(
		attribute.String("job.id", info.ID),
		attribute.String("job.queue", info.Queue),
	)

	logging.Info(ctx).
		Str("job_id", info.ID).
		Str("job_type", taskType).
		Uint("reservation_id", reservation.ID).
		Msg("job enqueued")

	return nil
}

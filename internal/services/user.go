package services

import (
	"context"

	"parkxcel/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

type UserService struct {
	store UserStore
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

func (s *UserService) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "user.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.Int64("user.id", int64(userID)))

	return s.store.GetUser(ctx, userID)
}

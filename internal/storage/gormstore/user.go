package gormstore

import (
	"context"

	"parkxcel/internal/models"
	"parkxcel/internal/services"
)

func (s *Store) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).Preload("Roles").First(&user, userID).Error; err != nil {
		return nil, notFound(err, services.ErrUserNotFound)
	}
	return &user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.conn(ctx).Preload("Roles").Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, notFound(err, services.ErrUserNotFound)
	}
	return &user, nil
}

func (s *Store) FindUserByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	err := s.conn(ctx).Preload("Roles").Where("name = ?", name).First(&user).Error
	if err != nil {
		return nil, notFound(err, services.ErrUserNotFound)
	}
	return &user, nil
}

func (s *Store) FindUserByEmailOrName(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := s.conn(ctx).
		Preload("Roles").
		Where("email = ? OR name = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, notFound(err, services.ErrUserNotFound)
	}
	return &user, nil
}

func (s *Store) EnsureRole(ctx context.Context, name, description string) (*models.Role, error) {
	var role models.Role
	err := s.conn(ctx).
		Where(models.Role{Name: name}).
		Attrs(models.Role{Description: description}).
		FirstOrCreate(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.conn(ctx).Create(user).Error
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.conn(ctx).Preload("Roles").Order("id ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

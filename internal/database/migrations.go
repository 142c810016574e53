package database

import (
	"errors"

	"parkxcel/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.ParkingLot{},
		&models.ParkingSpot{},
		&models.Reservation{},
	)
}

// Seed creates the two roles and, when configured, the administrator
// account. Safe to run on every startup.
func Seed(db *gorm.DB, adminName, adminEmail, adminPassword string) error {
	adminRole := models.Role{Name: models.RoleAdmin}
	if err := db.Where(models.Role{Name: models.RoleAdmin}).
		Attrs(models.Role{Description: "Administrator role"}).
		FirstOrCreate(&adminRole).Error; err != nil {
		return err
	}

	userRole := models.Role{Name: models.RoleUser}
	if err := db.Where(models.Role{Name: models.RoleUser}).
		Attrs(models.Role{Description: "Regular user role"}).
		FirstOrCreate(&userRole).Error; err != nil {
		return err
	}

	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         adminName,
		Email:        adminEmail,
		PasswordHash: string(hash),
		Active:       true,
		Roles:        []models.Role{adminRole},
	}
	return db.Create(&admin).Error
}

// Package seed populates an empty database with a root admin and a small
// demo catalogue. It runs once at startup when SEED_DATA is set and is a
// no-op on a non-empty database.
package seed

import (
	"fmt"
	"time"

	machineRepo "machly/database/repository/machine"
	userRepo "machly/database/repository/user"
	"machly/models"
	"machly/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Seeder inserts the demo dataset.
type Seeder struct {
	UserRepo    userRepo.UserRepository
	MachineRepo machineRepo.MachineRepository
}

// NewSeeder wires a seeder over the given repositories.
func NewSeeder(ur userRepo.UserRepository, mr machineRepo.MachineRepository) *Seeder {
	return &Seeder{UserRepo: ur, MachineRepo: mr}
}

// Run seeds the database if it holds no users.
func (s *Seeder) Run() error {
	count, err := s.UserRepo.Count()
	if err != nil {
		return fmt.Errorf("failed to inspect user collection: %w", err)
	}
	if count > 0 {
		utils.GetLogger().Info("seed: database not empty, skipping")
		return nil
	}

	admin, err := s.user("Root", "Admin", "admin@machly.dev", models.RoleAdmin)
	if err != nil {
		return err
	}
	provider, err := s.user("Carlos", "Huamán", "carlos@machly.dev", models.RoleProvider)
	if err != nil {
		return err
	}
	if _, err := s.user("Ana", "Quispe", "ana@machly.dev", models.RoleRenter); err != nil {
		return err
	}

	machines := []*models.Machine{
		s.machine(provider.ID, "John Deere 5075E with plough", models.CategoryServices, models.CategoryData{
			BaseRate:     money("50"),
			OperatorRate: moneyPtr("10"),
			WithOperator: true,
		}, -12.0464, -77.0428),
		s.machine(provider.ID, "Precision seeder 12 rows", models.CategorySeeds, models.CategoryData{
			BaseRate: money("40"),
			Hectares: fptr(8),
		}, -12.0464, -77.0428),
		s.machine(provider.ID, "Cane harvester Austoft 8810", models.CategoryCane, models.CategoryData{
			BaseRate: money("8"),
			Tons:     fptr(120),
		}, -13.5319, -71.9675),
	}
	for _, m := range machines {
		if err := s.MachineRepo.Create(m); err != nil {
			return fmt.Errorf("failed to seed machine %q: %w", m.Title, err)
		}
	}

	utils.GetLogger().Info("seed: demo data created",
		zap.String("adminEmail", admin.Email), zap.Int("machines", len(machines)))
	return nil
}

func (s *Seeder) user(name, lastname, email, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("machly-demo"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Lastname:     lastname,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.UserRepo.Create(u); err != nil {
		return nil, fmt.Errorf("failed to seed user %s: %w", email, err)
	}
	return u, nil
}

func (s *Seeder) machine(providerID, title, category string, data models.CategoryData, lat, lng float64) *models.Machine {
	now := time.Now().UTC()
	return &models.Machine{
		ID:           uuid.New().String(),
		ProviderID:   providerID,
		Title:        title,
		Category:     category,
		CategoryData: data,
		Location:     models.NewGeoLocation(lat, lng),
		Calendar:     models.Calendar{},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func money(s string) models.Money {
	return models.NewMoney(decimal.RequireFromString(s))
}

func moneyPtr(s string) *models.Money {
	m := money(s)
	return &m
}

func fptr(v float64) *float64 { return &v }

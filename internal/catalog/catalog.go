// Package catalog loads service definitions from YAML and seeds them into a
// company's catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/money"
)

type Entry struct {
	Name          string  `yaml:"name"`
	Description   string  `yaml:"description"`
	Category      string  `yaml:"category"`
	DurationMin   int     `yaml:"duration_min"`
	BasePrice     float64 `yaml:"base_price"`
	BedroomPrice  float64 `yaml:"bedroom_price"`
	BathroomPrice float64 `yaml:"bathroom_price"`
	Active        *bool   `yaml:"active"`
}

type File struct {
	Services []Entry `yaml:"services"`
}

type Result struct {
	Created int
	Updated int
}

// Parse decodes and validates a catalog file. Unknown keys are rejected.
func Parse(r io.Reader) ([]Entry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Services))
	for i := range f.Services {
		e := &f.Services[i]
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			return nil, fmt.Errorf("service %d: name is required", i+1)
		}
		key := strings.ToLower(e.Name)
		if seen[key] {
			return nil, fmt.Errorf("service %q listed twice", e.Name)
		}
		seen[key] = true

		if e.DurationMin <= 0 {
			return nil, fmt.Errorf("service %q: duration_min must be positive", e.Name)
		}
		if e.BasePrice < 0 || e.BedroomPrice < 0 || e.BathroomPrice < 0 {
			return nil, fmt.Errorf("service %q: prices cannot be negative", e.Name)
		}
	}
	return f.Services, nil
}

// Seed upserts entries by name (case-insensitive) in one transaction.
func Seed(ctx context.Context, db *gorm.DB, companyID uint, entries []Entry) (Result, error) {
	var res Result

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			var svc models.Service
			err := tx.Where("company_id = ? AND LOWER(name) = ?", companyID, strings.ToLower(e.Name)).
				First(&svc).Error

			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				svc = models.Service{CompanyID: companyID}
				apply(&svc, e)
				if err := tx.Create(&svc).Error; err != nil {
					return fmt.Errorf("create %q: %w", e.Name, err)
				}
				res.Created++
			case err != nil:
				return err
			default:
				apply(&svc, e)
				if err := tx.Save(&svc).Error; err != nil {
					return fmt.Errorf("update %q: %w", e.Name, err)
				}
				res.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	zap.L().Info("catalog seeded",
		zap.Uint("company_id", companyID),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
	)
	return res, nil
}

func apply(svc *models.Service, e Entry) {
	svc.Name = e.Name
	svc.Description = strings.TrimSpace(e.Description)
	svc.Category = strings.TrimSpace(e.Category)
	svc.DurationMin = e.DurationMin
	svc.BasePrice = money.Round(e.BasePrice)
	svc.BedroomPrice = money.Round(e.BedroomPrice)
	svc.BathroomPrice = money.Round(e.BathroomPrice)
	svc.Active = e.Active == nil || *e.Active
}

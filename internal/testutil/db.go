// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/db"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

// NewDB returns a migrated in-memory sqlite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// Company creates a company with default scheduling settings and Mon-Fri
// 08:00-18:00 business hours.
func Company(t *testing.T, gdb *gorm.DB) models.Company {
	t.Helper()

	c := models.Company{
		Name:                  "Sparkle Clean",
		Slug:                  "sparkle-" + strings.ToLower(strings.NewReplacer("/", "-", "_", "-").Replace(t.Name())),
		Timezone:              "America/New_York",
		MinAdvanceMinutes:     120,
		SlotIntervalMinutes:   60,
		MaxConcurrentBookings: 1,
		InvoiceDueDays:        14,
		Currency:              "USD",
	}
	require.NoError(t, gdb.Create(&c).Error)

	for wd := 0; wd < 7; wd++ {
		bh := models.BusinessHours{CompanyID: c.ID, Weekday: wd, Open: "08:00", Close: "18:00"}
		if wd == 0 || wd == 6 {
			bh.Closed = true
		}
		require.NoError(t, gdb.Create(&bh).Error)
	}
	return c
}

func Client(t *testing.T, gdb *gorm.DB, companyID uint, email string) models.Client {
	t.Helper()

	cl := models.Client{
		CompanyID:  companyID,
		Name:       "Jane Doe",
		Email:      email,
		Phone:      "555-0100",
		Address:    "12 Elm St",
		IsActive:   true,
		ClientType: models.ClientTypeRegular,
	}
	require.NoError(t, gdb.Create(&cl).Error)
	return cl
}

func Service(t *testing.T, gdb *gorm.DB, companyID uint) models.Service {
	t.Helper()

	s := models.Service{
		CompanyID:     companyID,
		Name:          "Standard Cleaning",
		DurationMin:   120,
		BasePrice:     100,
		BedroomPrice:  25,
		BathroomPrice: 15,
		Active:        true,
		Category:      "residential",
	}
	require.NoError(t, gdb.Create(&s).Error)
	return s
}

func Employee(t *testing.T, gdb *gorm.DB, companyID uint, name string) models.Employee {
	t.Helper()

	e := models.Employee{
		CompanyID:        companyID,
		Name:             name,
		Role:             "Cleaner",
		Email:            strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		HourlyRate:       20,
		StartDate:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		EmploymentStatus: "active",
	}
	require.NoError(t, gdb.Create(&e).Error)
	return e
}

// NextWeekday returns the next date (at least two days out) falling on wd,
// at midnight in loc.
func NextWeekday(loc *time.Location, wd time.Weekday) time.Time {
	d := time.Now().In(loc).AddDate(0, 0, 2)
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

package models

import "time"

type Employee struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `gorm:"index" json:"company_id"`

	Name        string    `gorm:"size:100;not null" json:"name"`
	Role        string    `gorm:"size:50" json:"role"`
	Email       string    `gorm:"size:100" json:"email"`
	Phone       string    `gorm:"size:20" json:"phone"`
	HourlyRate  float64   `json:"hourly_rate"`
	StartDate   time.Time `json:"start_date"`
	Performance int       `json:"performance"`
	PhotoKey    string    `gorm:"size:255" json:"-"`

	EmploymentStatus  string     `gorm:"size:20;default:'active';index" json:"employment_status"`
	TerminationDate   *time.Time `json:"termination_date"`
	TerminationReason string     `gorm:"size:500" json:"termination_reason"`

	Documents   []EmployeeDocument `gorm:"constraint:OnDelete:CASCADE;" json:"documents,omitempty"`
	Training    []TrainingRecord   `gorm:"constraint:OnDelete:CASCADE;" json:"training,omitempty"`
	TimeEntries []TimeEntry        `gorm:"constraint:OnDelete:CASCADE;" json:"time_entries,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EmployeeDocument struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	EmployeeID uint `gorm:"index" json:"employee_id"`

	Name       string    `gorm:"size:100;not null" json:"name"`
	Type       string    `gorm:"size:50" json:"type"`
	UploadDate time.Time `json:"upload_date"`
	StorageKey string    `gorm:"size:255" json:"-"`
	URL        string    `gorm:"size:500" json:"url"`
	Status     string    `gorm:"size:20;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TrainingRecord struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	EmployeeID uint `gorm:"index" json:"employee_id"`

	CourseName     string     `gorm:"size:150;not null" json:"course_name"`
	CompletionDate *time.Time `json:"completion_date"`
	ExpiryDate     *time.Time `gorm:"index" json:"expiry_date"`
	Status         string     `gorm:"size:20" json:"status"`
	CertificateKey string     `gorm:"size:255" json:"-"`
	CertificateURL string     `gorm:"size:500" json:"certificate_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TimeEntry is one worked shift. WorkDate is "YYYY-MM-DD", times are "HH:MM".
type TimeEntry struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	EmployeeID uint `gorm:"index" json:"employee_id"`

	WorkDate     string `gorm:"size:10;index" json:"date"`
	StartTime    string `gorm:"size:5" json:"start_time"`
	EndTime      string `gorm:"size:5" json:"end_time"`
	BreakMinutes int    `json:"break_duration"`

	BookingID *uint  `json:"job_id"`
	JobName   string `gorm:"size:100" json:"job_name"`
	Status    string `gorm:"size:20;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

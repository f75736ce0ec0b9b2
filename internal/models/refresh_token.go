package models

import "time"

// RefreshToken stores only the hash of the opaque token handed to the caller.
type RefreshToken struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Kind      string `gorm:"size:10;not null" json:"kind"`
	SubjectID uint   `gorm:"index;not null" json:"subject_id"`
	CompanyID uint   `json:"company_id"`
	Role      string `gorm:"size:20" json:"role"`

	TokenHash string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (rt RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt RefreshToken) IsExpired(now time.Time) bool {
	return now.After(rt.ExpiresAt)
}

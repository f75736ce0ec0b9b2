package models

import "time"

type Team struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `gorm:"index" json:"company_id"`

	Name         string     `gorm:"size:100;not null" json:"name"`
	LeadID       *uint      `json:"lead_id"`
	Lead         *Employee  `gorm:"foreignKey:LeadID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"lead,omitempty"`
	Members      []Employee `gorm:"many2many:team_members;" json:"members"`
	AssignedZone string     `gorm:"size:100" json:"assigned_zone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t Team) MemberIDs() []uint {
	ids := make([]uint, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

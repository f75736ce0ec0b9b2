package models

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Company{},
		&ServiceArea{},
		&BusinessHours{},
		&User{},
		&Client{},
		&Service{},
		&Employee{},
		&EmployeeDocument{},
		&TrainingRecord{},
		&TimeEntry{},
		&Team{},
		&Booking{},
		&Invoice{},
		&InvoiceLineItem{},
		&Message{},
		&Notification{},
		&Campaign{},
		&Promotion{},
		&Review{},
		&AuditLog{},
		&RefreshToken{},
	}
}

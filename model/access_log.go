package model

import (
	"time"

	"gorm.io/gorm"
)

// Access log actions. view_report is accepted by the logging endpoint but is
// not counted in the login/drive totals.
const (
	ActionLogin      = "login"
	ActionViewReport = "view_report"
	ActionOpenDrive  = "open_drive"
)

// AccessLog records a client-facing usage event. Username and ClientName are
// snapshots taken at write time so historical reports survive renames and
// deletions. Administrator accounts never reach this table.
type AccessLog struct {
	ID         uint      `gorm:"primarykey"`
	ClientID   string    `gorm:"index;size:36;not null"`
	Username   string    `gorm:"size:64;not null"`
	ClientName string    `gorm:"size:128;not null"`
	Action     string    `gorm:"size:16;not null;index"`
	IP         string    `gorm:"size:45;not null"`
	UserAgent  string    `gorm:"size:512;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}

func (l *AccessLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == 0 {
		l.ID = GenerateID()
	}
	return nil
}

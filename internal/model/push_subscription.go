package model

import "time"

// PushSubscription holds a browser push subscription of a student, used to
// notify them of batch submission outcomes.
type PushSubscription struct {
	Endpoint  string `gorm:"primaryKey"`
	StudentID string `gorm:"size:32;index;not null"`
	P256DH    string `gorm:"column:p256dh;not null"`
	Auth      string `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

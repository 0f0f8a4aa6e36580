package model

import "time"

// Reservation lifecycle statuses. A reservation never leaves "failed" or
// "cancelled"; rows are never deleted.
const (
	StatusPending   = "pending"
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Reservation represents one concrete calendar occurrence of a recurring
// booking rule. BookingID is populated only after the library confirms the
// reservation and the listing scrape located it.
type Reservation struct {
	ID              int64  `gorm:"primaryKey"`
	StudentID       string `gorm:"size:32;index;not null"`
	GroupID         string `gorm:"size:36;index;not null"`
	RoomID          string `gorm:"size:8;not null"`
	ReservationDate string `gorm:"size:10;index;not null"` // YYYY-MM-DD
	StartTime       string `gorm:"size:5;not null"`        // HH:MM
	Hours           int    `gorm:"not null"`
	Reason          string `gorm:"size:256;not null"`
	Status          string `gorm:"size:16;index;not null"`
	BookingID       string `gorm:"size:32"`
	ErrorMessage    string `gorm:"size:512"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Associations
	Companions []Companion `gorm:"foreignKey:ReservationID"`
}

// Companion is a co-occupant of a reservation. IPID is the library-issued
// verification token captured at creation time and replayed verbatim on
// submission.
type Companion struct {
	ID            int64  `gorm:"primaryKey"`
	ReservationID int64  `gorm:"index;not null"`
	StudentID     string `gorm:"size:32;not null"`
	Name          string `gorm:"size:64;not null"`
	IPID          string `gorm:"column:ipid;size:64;not null"`
}

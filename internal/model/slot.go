package model

// ReservedSlot marks one hour of one room as taken by a reservation made
// through this system. Slots exist purely for the availability display;
// they are released when the owning reservation fails or is cancelled.
type ReservedSlot struct {
	ID            int64  `gorm:"primaryKey"`
	ReservationID int64  `gorm:"index;not null"`
	RoomID        string `gorm:"size:8;uniqueIndex:idx_room_slot;not null"`
	SlotDate      string `gorm:"size:10;uniqueIndex:idx_room_slot;not null"` // YYYY-MM-DD
	SlotTime      string `gorm:"size:5;uniqueIndex:idx_room_slot;not null"`  // HH:MM
}

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studyroom-booking-backend/internal/model"
)

// ErrIllegalTransition is returned when a status change is requested from
// a state that does not allow it (cancelling a failed or already
// cancelled reservation).
var ErrIllegalTransition = errors.New("reservation status does not allow this transition")

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// CreateGroup inserts one pending reservation per occurrence date,
	// the shared companion rows, the slot occupancy rows, and upserts the
	// owner's encrypted credential. It returns the reservation id per date.
	CreateGroup(ctx context.Context, g NewGroup) (map[string]int64, error)

	// DueReservations lists pending reservations targeted at the given
	// date, companions preloaded, in stable id order.
	DueReservations(ctx context.Context, date string) ([]model.Reservation, error)

	// Credential returns the owner's stored encrypted password.
	Credential(ctx context.Context, studentID string) (string, error)

	ReservationByID(ctx context.Context, id int64) (model.Reservation, error)
	ReservationForOwner(ctx context.Context, studentID string, id int64) (model.Reservation, error)

	// MarkSuccess records a confirmed booking. The external booking id is
	// written here and nowhere else.
	MarkSuccess(ctx context.Context, id int64, bookingID string) error

	// MarkFailed records a terminal failure and releases the occupancy
	// slots held by the reservation.
	MarkFailed(ctx context.Context, id int64, message string) error

	// CancelLocally moves a reservation to cancelled and releases its
	// slots. Only pending and success reservations may be cancelled.
	CancelLocally(ctx context.Context, id int64) error

	History(ctx context.Context, studentID string) ([]HistoryGroup, error)
	SlotsByDate(ctx context.Context, roomID string, dates []string) (map[string][]string, error)

	PutSubscription(ctx context.Context, sub model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForStudent(ctx context.Context, studentID string) ([]model.PushSubscription, error)
}

// NewGroup is the input for CreateGroup: one recurring rule expanded to
// its occurrence dates.
type NewGroup struct {
	StudentID         string
	GroupID           string
	RoomID            string
	Dates             []string // YYYY-MM-DD
	StartTime         string   // HH:MM
	Hours             int
	Reason            string
	Companions        []model.Companion // ReservationID unset; copied per row
	EncryptedPassword string
}

// HistoryGroup is the read model of one recurring rule for display.
type HistoryGroup struct {
	GroupID      string        `json:"groupId"`
	RoomID       string        `json:"roomId"`
	StartTime    string        `json:"startTime"`
	Hours        int           `json:"hours"`
	Reservations []HistoryItem `json:"reservations"`
}

// HistoryItem is one occurrence within a history group.
type HistoryItem struct {
	ID           int64  `json:"id"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	BookingID    string `json:"bookingId,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

func (s *gormStore) CreateGroup(ctx context.Context, g NewGroup) (map[string]int64, error) {
	ids := make(map[string]int64, len(g.Dates))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, date := range g.Dates {
			res := model.Reservation{
				StudentID:       g.StudentID,
				GroupID:         g.GroupID,
				RoomID:          g.RoomID,
				ReservationDate: date,
				StartTime:       g.StartTime,
				Hours:           g.Hours,
				Reason:          g.Reason,
				Status:          model.StatusPending,
			}
			if err := tx.Create(&res).Error; err != nil {
				return fmt.Errorf("create reservation for %s: %w", date, err)
			}
			ids[date] = res.ID

			for _, c := range g.Companions {
				row := model.Companion{
					ReservationID: res.ID,
					StudentID:     c.StudentID,
					Name:          c.Name,
					IPID:          c.IPID,
				}
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("create companion: %w", err)
				}
			}

			for _, slotTime := range SlotTimes(g.StartTime, g.Hours) {
				slot := model.ReservedSlot{
					ReservationID: res.ID,
					RoomID:        g.RoomID,
					SlotDate:      date,
					SlotTime:      slotTime,
				}
				if err := tx.Create(&slot).Error; err != nil {
					return fmt.Errorf("create slot %s %s: %w", date, slotTime, err)
				}
			}
		}

		cred := model.Credential{StudentID: g.StudentID, Password: g.EncryptedPassword}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"password", "updated_at"}),
		}).Create(&cred).Error; err != nil {
			return fmt.Errorf("upsert credential: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *gormStore) DueReservations(ctx context.Context, date string) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := s.db.WithContext(ctx).
		Preload("Companions", companionOrder).
		Where("reservation_date = ? AND status = ?", date, model.StatusPending).
		Order("id ASC").
		Find(&reservations).Error
	return reservations, err
}

func (s *gormStore) Credential(ctx context.Context, studentID string) (string, error) {
	var cred model.Credential
	if err := s.db.WithContext(ctx).First(&cred, "student_id = ?", studentID).Error; err != nil {
		return "", err
	}
	return cred.Password, nil
}

func (s *gormStore) ReservationByID(ctx context.Context, id int64) (model.Reservation, error) {
	var res model.Reservation
	err := s.db.WithContext(ctx).Preload("Companions", companionOrder).First(&res, id).Error
	return res, err
}

// companionOrder pins companion rows to insertion order. The host binds
// occupant slots by index, so the order supplied at creation must survive
// every read that feeds a submission.
func companionOrder(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (s *gormStore) ReservationForOwner(ctx context.Context, studentID string, id int64) (model.Reservation, error) {
	var res model.Reservation
	err := s.db.WithContext(ctx).
		First(&res, "id = ? AND student_id = ?", id, studentID).Error
	return res, err
}

func (s *gormStore) MarkSuccess(ctx context.Context, id int64, bookingID string) error {
	return s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        model.StatusSuccess,
			"booking_id":    bookingID,
			"error_message": "",
		}).Error
}

func (s *gormStore) MarkFailed(ctx context.Context, id int64, message string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Reservation{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"status":        model.StatusFailed,
				"error_message": message,
			}).Error; err != nil {
			return err
		}
		// A failed reservation holds no room time.
		return tx.Where("reservation_id = ?", id).Delete(&model.ReservedSlot{}).Error
	})
}

func (s *gormStore) CancelLocally(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Reservation{}).
			Where("id = ? AND status IN ?", id, []string{model.StatusPending, model.StatusSuccess}).
			Update("status", model.StatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrIllegalTransition
		}
		return tx.Where("reservation_id = ?", id).Delete(&model.ReservedSlot{}).Error
	})
}

func (s *gormStore) History(ctx context.Context, studentID string) ([]HistoryGroup, error) {
	var rows []model.Reservation
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("reservation_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	groupMap := make(map[string]*HistoryGroup)
	var order []string
	for _, row := range rows {
		group, ok := groupMap[row.GroupID]
		if !ok {
			group = &HistoryGroup{
				GroupID:   row.GroupID,
				RoomID:    row.RoomID,
				StartTime: row.StartTime,
				Hours:     row.Hours,
			}
			groupMap[row.GroupID] = group
			order = append(order, row.GroupID)
		}
		group.Reservations = append(group.Reservations, HistoryItem{
			ID:           row.ID,
			Date:         row.ReservationDate,
			Status:       row.Status,
			BookingID:    row.BookingID,
			ErrorMessage: row.ErrorMessage,
		})
	}

	groups := make([]HistoryGroup, 0, len(order))
	for _, gid := range order {
		groups = append(groups, *groupMap[gid])
	}
	// Most recent rule first, by its first occurrence date.
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Reservations[0].Date > groups[j].Reservations[0].Date
	})
	return groups, nil
}

func (s *gormStore) SlotsByDate(ctx context.Context, roomID string, dates []string) (map[string][]string, error) {
	var slots []model.ReservedSlot
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND slot_date IN ?", roomID, dates).
		Order("slot_date ASC, slot_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]string)
	for _, slot := range slots {
		byDate[slot.SlotDate] = append(byDate[slot.SlotDate], slot.SlotTime)
	}
	return byDate, nil
}

func (s *gormStore) PutSubscription(ctx context.Context, sub model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"student_id", "p256dh", "auth"}),
	}).Create(&sub).Error
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

func (s *gormStore) SubscriptionsForStudent(ctx context.Context, studentID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).Find(&subs, "student_id = ?", studentID).Error
	return subs, err
}

// SlotTimes expands a start time and duration into the hour slots the
// reservation occupies, e.g. ("14:00", 2) → ["14:00" "15:00"].
func SlotTimes(startTime string, hours int) []string {
	parts := strings.SplitN(startTime, ":", 2)
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil
	}
	minute := "00"
	if len(parts) == 2 {
		minute = parts[1]
	}
	out := make([]string, 0, hours)
	for i := 0; i < hours; i++ {
		out = append(out, fmt.Sprintf("%02d:%s", h+i, minute))
	}
	return out
}

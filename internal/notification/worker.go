package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"studyroom-booking-backend/internal/model"
	"studyroom-booking-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers that notify reservation owners
// about batch submission outcomes.
type WorkerPool struct {
	size    int
	jobs    chan int64
	store   store.Store
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size), // Buffered channel
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case reservationID := <-wp.jobs:
			log.Printf("Worker %d processing reservation %d", id, reservationID)
			wp.notifyOwner(ctx, reservationID)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(reservationID int64) {
	wp.jobs <- reservationID
}

// notifyOwner fetches the reservation outcome and pushes it to every
// subscription the owner registered.
func (wp *WorkerPool) notifyOwner(ctx context.Context, reservationID int64) {
	res, err := wp.store.ReservationByID(ctx, reservationID)
	if err != nil {
		log.Printf("Error fetching reservation %d: %v", reservationID, err)
		return
	}

	subscriptions, err := wp.store.SubscriptionsForStudent(ctx, res.StudentID)
	if err != nil {
		log.Printf("Error fetching subscriptions for student %s: %v", res.StudentID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for reservation %d", len(subscriptions), reservationID)

	message := outcomeMessage(res)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// outcomeMessage renders the push payload for a processed reservation.
func outcomeMessage(res model.Reservation) string {
	switch res.Status {
	case model.StatusSuccess:
		return fmt.Sprintf("스터디룸 %s호 %s %s 예약이 완료되었습니다.", res.RoomID, res.ReservationDate, res.StartTime)
	case model.StatusFailed:
		return fmt.Sprintf("스터디룸 %s호 %s %s 예약에 실패했습니다: %s", res.RoomID, res.ReservationDate, res.StartTime, res.ErrorMessage)
	default:
		return fmt.Sprintf("스터디룸 %s호 %s %s 예약이 접수되었습니다.", res.RoomID, res.ReservationDate, res.StartTime)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	// Manually construct the webpush.Subscription object
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == 410 {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}

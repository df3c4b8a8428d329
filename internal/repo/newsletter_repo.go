package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ruralweb/leadgen-backend/internal/domain"
)

// FindSubscriberByEmail returns the subscriber row for email, or ErrNotFound.
// The unique index on email guarantees at most one row.
func FindSubscriberByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.NewsletterSubscriber, error) {
	var out domain.NewsletterSubscriber
	err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// InsertSubscriber persists a new active subscriber.
func InsertSubscriber(ctx context.Context, db *gorm.DB, sub *domain.NewsletterSubscriber) error {
	sub.ID = uuid.NewString()
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if sub.SubscribedAt.IsZero() {
		sub.SubscribedAt = now
	}
	if sub.Status == "" {
		sub.Status = domain.SubscriberActive
	}
	return db.WithContext(ctx).Create(sub).Error
}

// ReactivateSubscriber flips an unsubscribed row back to active and refreshes
// its subscription timestamp.
func ReactivateSubscriber(ctx context.Context, db *gorm.DB, id string) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.NewsletterSubscriber{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        domain.SubscriberActive,
			"subscribed_at": now,
			"updated_at":    now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

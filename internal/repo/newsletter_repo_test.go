package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ruralweb/leadgen-backend/internal/domain"
)

func TestInsertSubscriber_Defaults(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	sub := &domain.NewsletterSubscriber{Email: "new@x.y", Source: "footer"}
	if err := InsertSubscriber(ctx, db, sub); err != nil {
		t.Fatalf("InsertSubscriber: %v", err)
	}
	if sub.ID == "" || sub.Status != domain.SubscriberActive || sub.SubscribedAt.IsZero() {
		t.Fatalf("defaults not applied: %+v", sub)
	}
}

func TestFindSubscriberByEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	sub := &domain.NewsletterSubscriber{Email: "hit@x.y"}
	if err := InsertSubscriber(ctx, db, sub); err != nil {
		t.Fatalf("InsertSubscriber: %v", err)
	}

	got, err := FindSubscriberByEmail(ctx, db, "hit@x.y")
	if err != nil {
		t.Fatalf("FindSubscriberByEmail: %v", err)
	}
	if got.ID != sub.ID {
		t.Fatalf("got %s, want %s", got.ID, sub.ID)
	}

	if _, err := FindSubscriberByEmail(ctx, db, "miss@x.y"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReactivateSubscriber(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	sub := &domain.NewsletterSubscriber{Email: "back@x.y", Status: domain.SubscriberUnsubscribed}
	if err := InsertSubscriber(ctx, db, sub); err != nil {
		t.Fatalf("InsertSubscriber: %v", err)
	}
	before := sub.SubscribedAt

	time.Sleep(5 * time.Millisecond)
	if err := ReactivateSubscriber(ctx, db, sub.ID); err != nil {
		t.Fatalf("ReactivateSubscriber: %v", err)
	}

	got, err := FindSubscriberByEmail(ctx, db, "back@x.y")
	if err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.Status != domain.SubscriberActive {
		t.Fatalf("status = %q, want active", got.Status)
	}
	if !got.SubscribedAt.After(before) {
		t.Fatalf("subscribed_at not refreshed: %v <= %v", got.SubscribedAt, before)
	}
}

func TestReactivateSubscriber_MissingRow(t *testing.T) {
	db := newTestDB(t)
	if err := ReactivateSubscriber(context.Background(), db, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubscriberEmailUnique(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := InsertSubscriber(ctx, db, &domain.NewsletterSubscriber{Email: "dup@x.y"}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := InsertSubscriber(ctx, db, &domain.NewsletterSubscriber{Email: "dup@x.y"}); err == nil {
		t.Fatalf("second insert should violate the unique index")
	}
}

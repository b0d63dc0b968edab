package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyUsageUserID is returned when a usage record has no owner.
var ErrEmptyUsageUserID = errors.New("usage record user ID cannot be empty")

// UsageRecord attributes one successful generation to a user and a kind.
// Records are append-only and feed the quota.
type UsageRecord struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Kind      ContentKind `json:"kind"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUsageRecord creates a usage record stamped with the current time.
func NewUsageRecord(userID uuid.UUID, kind ContentKind) (*UsageRecord, error) {
	record := &UsageRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}

// Validate checks if the UsageRecord has valid data.
func (u *UsageRecord) Validate() error {
	if u.ID == uuid.Nil {
		return ErrInvalidID
	}
	if u.UserID == uuid.Nil {
		return ErrEmptyUsageUserID
	}
	if !u.Kind.IsValid() {
		return ErrInvalidKind
	}
	return nil
}

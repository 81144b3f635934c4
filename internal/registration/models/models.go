package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RestaurantStatus is the lifecycle state of a restaurant account.
type RestaurantStatus string

const (
	RestaurantStatusPending  RestaurantStatus = "pending"
	RestaurantStatusActive   RestaurantStatus = "active"
	RestaurantStatusInactive RestaurantStatus = "inactive"
)

// Restaurant is the account created in step 1. It stays pending until the
// primary user exists; that transition is owned by the registration service.
type Restaurant struct {
	ID        uuid.UUID
	Name      string
	Email     string // normalized, unique case-insensitively
	Phone     string
	Address   string
	Status    RestaurantStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Designation is the role the requesting person holds at the restaurant.
type Designation string

const (
	DesignationOwner             Designation = "Owner"
	DesignationManager           Designation = "Manager"
	DesignationGeneralManager    Designation = "General Manager"
	DesignationOperationsManager Designation = "Operations Manager"
	DesignationDirector          Designation = "Director"
	DesignationPartner           Designation = "Partner"
)

// Designations lists every accepted designation.
var Designations = []Designation{
	DesignationOwner,
	DesignationManager,
	DesignationGeneralManager,
	DesignationOperationsManager,
	DesignationDirector,
	DesignationPartner,
}

// Valid reports whether d is one of the accepted designations.
func (d Designation) Valid() bool {
	for _, known := range Designations {
		if d == known {
			return true
		}
	}
	return false
}

const (
	UserRolePrimary  = "primary"
	UserStatusActive = "active"
)

// User is the primary account holder created in step 3. Registration creates
// exactly one per restaurant; its email is inherited from the restaurant.
type User struct {
	ID           uuid.UUID
	Name         string
	Designation  Designation
	RestaurantID uuid.UUID
	Email        string
	Role         string
	Status       string
	CreatedAt    time.Time
}

// RegistrationToken correlates the three registration steps without a
// persistent session. The opaque Value is the only authorization for steps
// 2 and 3. Verified flips in place on step 2 (the value never rotates);
// Claimed is the consume-once guard for concurrent completions.
type RegistrationToken struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Email        string
	Value        string
	Verified     bool
	Claimed      bool
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Expired reports whether the token is past its TTL at the given instant.
func (t *RegistrationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ValidateForVerify checks the token can accept a verification attempt.
// Error text is translated to sentinel errors at the store boundary.
func (t *RegistrationToken) ValidateForVerify(now time.Time) error {
	if t.Expired(now) {
		return errors.New("registration token expired")
	}
	if t.Verified {
		return errors.New("registration token already verified")
	}
	return nil
}

// ValidateForConsume checks the token can authorize completion.
func (t *RegistrationToken) ValidateForConsume(now time.Time) error {
	if t.Expired(now) {
		return errors.New("registration token expired")
	}
	if !t.Verified {
		return errors.New("registration token not verified")
	}
	if t.Claimed {
		return errors.New("registration token already used")
	}
	return nil
}

// MarkVerified promotes the token after a successful code check.
func (t *RegistrationToken) MarkVerified() { t.Verified = true }

// MarkClaimed reserves the token for a single in-flight completion.
func (t *RegistrationToken) MarkClaimed() { t.Claimed = true }

// ReleaseClaim returns the token to the verified-and-usable state after a
// compensated completion, so the client may retry step 3.
func (t *RegistrationToken) ReleaseClaim() { t.Claimed = false }

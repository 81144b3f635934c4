package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationTokenLifecycle(t *testing.T) {
	now := time.Now()
	token := &RegistrationToken{
		Value:     "tok_abc",
		CreatedAt: now,
		ExpiresAt: now.Add(30 * time.Minute),
	}

	t.Run("fresh token accepts verification", func(t *testing.T) {
		require.NoError(t, token.ValidateForVerify(now))
	})

	t.Run("unverified token cannot be consumed", func(t *testing.T) {
		err := token.ValidateForConsume(now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not verified")
	})

	t.Run("verified token cannot be re-verified", func(t *testing.T) {
		token.MarkVerified()
		err := token.ValidateForVerify(now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already verified")
	})

	t.Run("verified token can be consumed once", func(t *testing.T) {
		require.NoError(t, token.ValidateForConsume(now))
		token.MarkClaimed()
		err := token.ValidateForConsume(now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already used")
	})

	t.Run("released claim restores consumability", func(t *testing.T) {
		token.ReleaseClaim()
		require.NoError(t, token.ValidateForConsume(now))
	})

	t.Run("expiry wins regardless of verification state", func(t *testing.T) {
		later := token.ExpiresAt
		assert.True(t, token.Expired(later))
		err := token.ValidateForConsume(later)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
		err = token.ValidateForVerify(later)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})
}

func TestSubmitRestaurantRequestValidation(t *testing.T) {
	base := SubmitRestaurantRequest{
		Name:  "Bistro",
		Email: "A@B.com",
		Phone: "+15551234567",
	}

	t.Run("normalizes email casing and whitespace", func(t *testing.T) {
		req := base
		req.Name = "  Bistro  "
		req.Normalize()
		assert.Equal(t, "Bistro", req.Name)
		assert.Equal(t, "a@b.com", req.Email)
		require.NoError(t, req.Validate())
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		for _, mutate := range []func(*SubmitRestaurantRequest){
			func(r *SubmitRestaurantRequest) { r.Name = "" },
			func(r *SubmitRestaurantRequest) { r.Email = "" },
			func(r *SubmitRestaurantRequest) { r.Phone = "" },
		} {
			req := base
			mutate(&req)
			req.Normalize()
			assert.Error(t, req.Validate())
		}
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		req := base
		req.Email = "not-an-email"
		req.Normalize()
		assert.Error(t, req.Validate())
	})
}

func TestDesignationSet(t *testing.T) {
	for _, d := range Designations {
		assert.True(t, d.Valid(), "designation %q should be valid", d)
	}
	assert.False(t, Designation("Janitor").Valid())
	assert.False(t, Designation("").Valid())
}

func TestCompleteRegistrationRequestValidation(t *testing.T) {
	req := CompleteRegistrationRequest{TempToken: "tok", Name: "Jane", Designation: DesignationOwner}
	require.NoError(t, req.Validate())

	bad := req
	bad.Designation = "Intern"
	assert.Error(t, bad.Validate())

	bad = req
	bad.Name = ""
	assert.Error(t, bad.Validate())

	bad = req
	bad.TempToken = ""
	assert.Error(t, bad.Validate())
}

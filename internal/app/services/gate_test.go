package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/pkg/metrics"
)

func TestDecideGate(t *testing.T) {
	profile := func(s models.ProfileStatus) *models.Profile {
		return &models.Profile{ID: uuid.New(), Status: s}
	}

	tests := []struct {
		name     string
		profile  *models.Profile
		err      error
		allow    bool
		redirect string
	}{
		{"approved", profile(models.StatusApproved), nil, true, ""},
		{"pending verification", profile(models.StatusPendingVerification), nil, false, "/id-verification"},
		{"pending admin approval", profile(models.StatusPendingAdminApproval), nil, false, "/pending-approval"},
		{"rejected", profile(models.StatusRejected), nil, false, "/login?error=Your+account+verification+was+not+approved."},
		{"unknown status", profile(models.ProfileStatus("banned")), nil, false, "/login?error=Your+account+is+in+an+unknown+state.+Please+contact+support."},
		{"missing profile", nil, nil, false, "/id-verification"},
		{"lookup error", nil, errors.New("connection refused"), false, "/id-verification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DecideGate(tt.profile, tt.err)
			assert.Equal(t, tt.allow, d.Allow)
			assert.Equal(t, tt.redirect, d.Redirect)
		})
	}
}

func TestGateDecision_Target(t *testing.T) {
	assert.Equal(t, "allow", GateDecision{Allow: true}.Target())
	assert.Equal(t, "/login", GateDecision{Redirect: LoginWithError("nope")}.Target())
	assert.Equal(t, "/pending-approval", GateDecision{Redirect: PathPendingApproval}.Target())
}

func TestGateService_Check(t *testing.T) {
	db := newMemDB()
	approved := db.addProfile(models.RoleStudent, models.StatusApproved, "Asha Verma")
	svc := NewGateService(fakeProfiles{db}, metrics.Nop{}, zerolog.Nop())

	t.Run("no session", func(t *testing.T) {
		d := svc.Check(context.Background(), uuid.Nil)
		assert.False(t, d.Allow)
		assert.Equal(t, PathLogin, d.Redirect)
	})

	t.Run("approved profile is attached", func(t *testing.T) {
		d := svc.Check(context.Background(), approved)
		assert.True(t, d.Allow)
		if assert.NotNil(t, d.Profile) {
			assert.Equal(t, approved, d.Profile.ID)
		}
	})

	t.Run("account without profile", func(t *testing.T) {
		d := svc.Check(context.Background(), uuid.New())
		assert.Equal(t, PathIDVerification, d.Redirect)
	})
}

package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	accountstore "cutrackit/internal/adapters/storage/account"
	"cutrackit/internal/application/validation"
	"cutrackit/internal/domain/account"
	"cutrackit/internal/domain/profile"
)

// ProfileStoreForUpdate defines the profile store interface needed by UpdateProfile.
type ProfileStoreForUpdate interface {
	GetByID(ctx context.Context, id string) (profile.Profile, error)
	SaveWithAccount(ctx context.Context, p profile.Profile, a account.Account) error
}

// AccountByID loads an account.
type AccountByID interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// UpdateProfileInput carries the account page form.
type UpdateProfileInput struct {
	UserID          string `json:"-"`
	FirstName       string `json:"first_name" validate:"notblank,max=100"`
	LastName        string `json:"last_name" validate:"max=100"`
	Email           string `json:"email" validate:"notblank,max=254"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// UpdateProfileDeps holds dependencies for UpdateProfile.
type UpdateProfileDeps struct {
	ProfileStore ProfileStoreForUpdate
	AccountStore AccountByID
}

// ErrPasswordMismatch is returned when the confirmation differs.
var ErrPasswordMismatch = errors.New("passwords do not match")

// ExecuteUpdateProfile edits the caller's name, email and optionally password.
// PRE: UserID is the authenticated caller
// POST: profile and account email are updated together
func ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput, deps UpdateProfileDeps) (profile.Profile, error) {
	if input.UserID == "" {
		return profile.Profile{}, ErrForbidden
	}
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	if err := validation.Struct(input); err != nil {
		return profile.Profile{}, err
	}
	if input.NewPassword != "" && input.NewPassword != input.ConfirmPassword {
		return profile.Profile{}, validation.New("confirm_password", ErrPasswordMismatch.Error())
	}

	p, err := deps.ProfileStore.GetByID(ctx, input.UserID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	acct, err := deps.AccountStore.GetByID(ctx, input.UserID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("load account: %w", err)
	}

	p.FirstName = input.FirstName
	p.LastName = input.LastName
	p.Email = input.Email
	if err := p.Validate(); err != nil {
		return profile.Profile{}, validation.New("email", err.Error())
	}

	acct.Email = input.Email
	if input.NewPassword != "" {
		if err := acct.SetPassword(input.NewPassword); err != nil {
			return profile.Profile{}, validation.New("new_password", err.Error())
		}
	}

	if err := deps.ProfileStore.SaveWithAccount(ctx, p, acct); err != nil {
		if errors.Is(err, accountstore.ErrEmailTaken) {
			return profile.Profile{}, ErrEmailAlreadyExists
		}
		return profile.Profile{}, err
	}

	slog.Info("auth_event", "event", "profile_updated", "account_id", acct.ID, "password_changed", input.NewPassword != "")
	return p, nil
}

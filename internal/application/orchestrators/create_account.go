package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cutrackit/internal/adapters/email"
	accountstore "cutrackit/internal/adapters/storage/account"
	profilestore "cutrackit/internal/adapters/storage/profile"
	"cutrackit/internal/application/validation"
	"cutrackit/internal/domain/account"
	"cutrackit/internal/domain/profile"

	"github.com/google/uuid"
)

// AccountLookup finds accounts by email.
type AccountLookup interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
}

// ProfileWriter saves a profile and its account together.
type ProfileWriter interface {
	SaveWithAccount(ctx context.Context, p profile.Profile, a account.Account) error
}

// CreateAccountInput carries the signup form.
type CreateAccountInput struct {
	Name            string `json:"name" validate:"max=200"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"-"`
}

// CreateAccountResult carries the new identity.
type CreateAccountResult struct {
	AccountID string
	Profile   profile.Profile
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountLookup
	ProfileStore ProfileWriter
	Sender       email.Sender // optional
	GenerateID   func() string
	Now          func() time.Time
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// qrTokenAttempts bounds signup retries on QR token collisions. The second
// half of the attempts use long tokens.
const qrTokenAttempts = 6

// ExecuteCreateAccount registers a player: account, profile and QR token.
// PRE: Valid email, password >= 8 chars, matching confirmation
// POST: Account and profile created in one transaction; welcome email attempted
// INVARIANT: Email must be unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (CreateAccountResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return CreateAccountResult{}, err
	}
	role := input.Role
	if role == "" {
		role = account.RolePlayer
	}

	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return CreateAccountResult{}, ErrEmailAlreadyExists
	}

	genID := deps.GenerateID
	if genID == nil {
		genID = func() string { return uuid.New().String() }
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	created := now()

	acct := account.Account{
		ID:        genID(),
		Email:     input.Email,
		Role:      role,
		CreatedAt: created,
	}
	if err := acct.Validate(); err != nil {
		return CreateAccountResult{}, validation.New("email", err.Error())
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return CreateAccountResult{}, validation.New("password", err.Error())
	}

	first, last := profile.SplitName(input.Name)
	if first == "" {
		first, last = profile.NamesFromEmail(input.Email)
	}
	p := profile.Profile{
		ID:        acct.ID,
		FirstName: first,
		LastName:  last,
		Email:     acct.Email,
		QRToken:   profile.NewQRToken(first, last),
		CreatedAt: created,
	}
	if err := p.Validate(); err != nil {
		return CreateAccountResult{}, validation.New("name", err.Error())
	}

	var err error
	for attempt := 1; attempt <= qrTokenAttempts; attempt++ {
		err = deps.ProfileStore.SaveWithAccount(ctx, p, acct)
		if !errors.Is(err, profilestore.ErrQRTokenTaken) {
			break
		}
		slog.Warn("auth_event", "event", "qr_token_collision", "attempt", attempt, "token", p.QRToken)
		if attempt < qrTokenAttempts/2 {
			p.QRToken = profile.NewQRToken(first, last)
		} else {
			p.QRToken = profile.NewLongQRToken(first, last)
		}
	}
	if err != nil {
		if errors.Is(err, accountstore.ErrEmailTaken) {
			return CreateAccountResult{}, ErrEmailAlreadyExists
		}
		return CreateAccountResult{}, fmt.Errorf("save account: %w", err)
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", acct.Role)

	if deps.Sender != nil {
		sendWelcome(ctx, deps.Sender, p)
	}

	return CreateAccountResult{AccountID: acct.ID, Profile: p}, nil
}

const welcomeBody = `Hi %s,

Your CUTRACKIT account is ready.

- Check in from the **dashboard** by picking a court.
- Or show your QR code at the front desk: **%s**

See you on court.`

func sendWelcome(ctx context.Context, sender email.Sender, p profile.Profile) {
	req, err := email.Compose([]string{p.Email}, "Welcome to CUTRACKIT", fmt.Sprintf(welcomeBody, p.FirstName, p.QRToken))
	if err != nil {
		slog.Error("email_event", "event", "welcome_compose_failed", "account_id", p.ID, "error", err)
		return
	}
	if _, err := sender.Send(ctx, req); err != nil {
		slog.Warn("email_event", "event", "welcome_send_failed", "account_id", p.ID, "error", err)
		return
	}
	slog.Info("email_event", "event", "welcome_sent", "account_id", p.ID)
}

// SeedAdminInput carries the configured bootstrap admin.
type SeedAdminInput struct {
	Email    string
	Password string
}

// ExecuteSeedAdmin creates the admin account if it does not exist yet.
// PRE: Email and Password come from configuration
// POST: an admin account with Email exists
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps CreateAccountDeps) error {
	if input.Email == "" || input.Password == "" {
		return nil
	}
	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return nil
	}
	deps.Sender = nil
	_, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.Password,
		Role:            account.RoleAdmin,
	}, deps)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	slog.Info("auth_event", "event", "admin_seeded", "email", input.Email)
	return nil
}

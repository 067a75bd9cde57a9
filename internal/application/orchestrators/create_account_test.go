package orchestrators

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	accountstore "cutrackit/internal/adapters/storage/account"
	profilestore "cutrackit/internal/adapters/storage/profile"
	"cutrackit/internal/adapters/storage/storagetest"
	"cutrackit/internal/application/validation"
	"cutrackit/internal/domain/account"
)

func signupDeps() (CreateAccountDeps, *mockAccountStore, *mockProfileStore, *mockSender) {
	accts := newMockAccountStore()
	profiles := newMockProfileStore(accts)
	sender := &mockSender{}
	return CreateAccountDeps{
		AccountStore: accts,
		ProfileStore: profiles,
		Sender:       sender,
		GenerateID:   testID,
		Now:          testNow,
	}, accts, profiles, sender
}

// TestExecuteCreateAccount_Valid checks account, profile and welcome email.
func TestExecuteCreateAccount_Valid(t *testing.T) {
	deps, accts, profiles, sender := signupDeps()

	res, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email:           "jordan.smith@x.io",
		Password:        "longenough",
		ConfirmPassword: "longenough",
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Profile.FirstName != "Jordan" || res.Profile.LastName != "Smith" {
		t.Errorf("derived names = %q %q", res.Profile.FirstName, res.Profile.LastName)
	}
	if !strings.HasPrefix(res.Profile.QRToken, "QR-JS-") {
		t.Errorf("QRToken = %q", res.Profile.QRToken)
	}
	if accts.accounts["test-id-001"].Role != account.RolePlayer {
		t.Errorf("role = %q", accts.accounts["test-id-001"].Role)
	}
	if _, ok := profiles.profiles["test-id-001"]; !ok {
		t.Error("profile not saved")
	}
	if len(sender.sent) != 1 || sender.sent[0].To[0] != "jordan.smith@x.io" {
		t.Fatalf("welcome mail = %+v", sender.sent)
	}
	if !strings.Contains(sender.sent[0].HTML, res.Profile.QRToken) {
		t.Error("welcome mail should include the QR token")
	}
}

// TestExecuteCreateAccount_Invalid covers validation and duplicates.
func TestExecuteCreateAccount_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateAccountInput
		wantErr error
		field   string
	}{
		{"missing email", CreateAccountInput{Password: "longenough", ConfirmPassword: "longenough"}, validation.ErrInvalid, "email"},
		{"bad email", CreateAccountInput{Email: "nope", Password: "longenough", ConfirmPassword: "longenough"}, validation.ErrInvalid, "email"},
		{"short password", CreateAccountInput{Email: "a@x.io", Password: "short", ConfirmPassword: "short"}, validation.ErrInvalid, "password"},
		{"mismatch", CreateAccountInput{Email: "a@x.io", Password: "longenough", ConfirmPassword: "different"}, validation.ErrInvalid, "confirm_password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, _, _, _ := signupDeps()
			_, err := ExecuteCreateAccount(context.Background(), tt.input, deps)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			var verr *validation.Error
			if errors.As(err, &verr) {
				if _, ok := verr.Fields[tt.field]; !ok {
					t.Errorf("fields = %v, want %s", verr.Fields, tt.field)
				}
			}
		})
	}
}

// TestExecuteCreateAccount_Duplicate checks the unique email rule.
func TestExecuteCreateAccount_Duplicate(t *testing.T) {
	deps, accts, _, _ := signupDeps()
	accts.accounts["other"] = account.Account{ID: "other", Email: "a@x.io", Role: account.RolePlayer}

	_, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Name: "Al", Email: "a@x.io", Password: "longenough", ConfirmPassword: "longenough",
	}, deps)
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("err = %v, want ErrEmailAlreadyExists", err)
	}
}

// TestExecuteCreateAccount_SendFailure verifies mail errors do not fail signup.
func TestExecuteCreateAccount_SendFailure(t *testing.T) {
	deps, _, _, sender := signupDeps()
	sender.err = errors.New("smtp down")

	if _, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Name: "Al Bo", Email: "al@x.io", Password: "longenough", ConfirmPassword: "longenough",
	}, deps); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestExecuteSeedAdmin checks the admin is created once.
func TestExecuteSeedAdmin(t *testing.T) {
	deps, accts, _, sender := signupDeps()
	ctx := context.Background()

	if err := ExecuteSeedAdmin(ctx, SeedAdminInput{Email: "admin@x.io", Password: "change-me-please"}, deps); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := ExecuteSeedAdmin(ctx, SeedAdminInput{Email: "admin@x.io", Password: "change-me-please"}, deps); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if len(accts.accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(accts.accounts))
	}
	if accts.accounts["test-id-001"].Role != account.RoleAdmin {
		t.Errorf("role = %q", accts.accounts["test-id-001"].Role)
	}
	if len(sender.sent) != 0 {
		t.Error("seeding should not send mail")
	}
}

// TestExecuteCreateAccount_QRTokenCollision checks signup retries with a fresh
// token and widens it once the short tokens are exhausted.
func TestExecuteCreateAccount_QRTokenCollision(t *testing.T) {
	input := CreateAccountInput{Email: "jordan.smith@x.io", Password: "longenough", ConfirmPassword: "longenough"}
	short := regexp.MustCompile(`^QR-JS-[0-9A-F]{4}$`)
	long := regexp.MustCompile(`^QR-JS-[0-9A-F]{8}$`)

	t.Run("retries", func(t *testing.T) {
		deps, _, profiles, _ := signupDeps()
		rejected := 0
		profiles.takenQR = func(string) bool {
			rejected++
			return rejected <= 2
		}
		res, err := ExecuteCreateAccount(context.Background(), input, deps)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rejected != 3 || !short.MatchString(res.Profile.QRToken) {
			t.Errorf("attempts = %d, token = %q", rejected, res.Profile.QRToken)
		}
	})

	t.Run("short space full", func(t *testing.T) {
		deps, _, profiles, _ := signupDeps()
		profiles.takenQR = short.MatchString
		res, err := ExecuteCreateAccount(context.Background(), input, deps)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !long.MatchString(res.Profile.QRToken) {
			t.Errorf("token = %q, want a long token", res.Profile.QRToken)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		deps, accts, profiles, sender := signupDeps()
		profiles.takenQR = func(string) bool { return true }
		_, err := ExecuteCreateAccount(context.Background(), input, deps)
		if !errors.Is(err, profilestore.ErrQRTokenTaken) {
			t.Fatalf("err = %v, want ErrQRTokenTaken", err)
		}
		if len(accts.accounts) != 0 || len(sender.sent) != 0 {
			t.Error("nothing should be saved or sent")
		}
	})
}

// TestExecuteCreateAccount_SQLiteFullQRSpace fills every QR-JS-XXXX token in a
// real database and checks a new Jordan Smith can still sign up.
func TestExecuteCreateAccount_SQLiteFullQRSpace(t *testing.T) {
	db := storagetest.OpenDB(t)
	const fill = `WITH RECURSIVE n(i) AS (SELECT 0 UNION ALL SELECT i + 1 FROM n WHERE i < 65535)`
	if _, err := db.Exec(fill + ` INSERT INTO account (id, email, role, created_at)
		SELECT 'seed-' || i, 'seed' || i || '@test.local', 'player', '2026-01-01T00:00:00.000000000Z' FROM n`); err != nil {
		t.Fatalf("seed accounts: %v", err)
	}
	if _, err := db.Exec(fill + ` INSERT INTO profile (id, first_name, last_name, email, qr_token, created_at)
		SELECT 'seed-' || i, 'Jo', 'Smith', 'seed' || i || '@test.local', printf('QR-JS-%04X', i), '2026-01-01T00:00:00.000000000Z' FROM n`); err != nil {
		t.Fatalf("seed profiles: %v", err)
	}

	accounts := accountstore.NewSQLiteStore(db)
	deps := CreateAccountDeps{AccountStore: accounts, ProfileStore: profilestore.NewSQLiteStore(db), Now: testNow}
	res, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Name: "Jordan Smith", Email: "jordan@x.io", Password: "longenough", ConfirmPassword: "longenough",
	}, deps)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if !regexp.MustCompile(`^QR-JS-[0-9A-F]{8}$`).MatchString(res.Profile.QRToken) {
		t.Errorf("token = %q, want a long token", res.Profile.QRToken)
	}
	if _, err := accounts.GetByEmail(context.Background(), "jordan@x.io"); err != nil {
		t.Errorf("account not saved: %v", err)
	}
}

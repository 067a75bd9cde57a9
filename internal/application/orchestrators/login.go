package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cutrackit/internal/domain/account"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// LoginRecorder counts login attempts.
type LoginRecorder interface {
	RecordLogin(result string)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	AccountID string
	Email     string
	Role      string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Metrics      LoginRecorder // optional
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

// ExecuteLogin validates credentials and returns account info for session creation.
// PRE: Valid email and password provided
// POST: Returns account info on success, records failed login on failure
// INVARIANT: Account must not be locked
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		recordLogin(deps.Metrics, "failure")
		return LoginResult{}, ErrInvalidCredentials
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		recordLogin(deps.Metrics, "failure")
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.IsLocked() {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "reason", "locked")
		recordLogin(deps.Metrics, "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin()
		_ = deps.AccountStore.Save(ctx, acct)
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		recordLogin(deps.Metrics, "failure")
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.FailedLogins > 0 {
		acct.ResetFailedLogins()
		_ = deps.AccountStore.Save(ctx, acct)
	}

	slog.Info("auth_event", "event", "login_success", "email", email, "role", acct.Role)
	recordLogin(deps.Metrics, "success")

	return LoginResult{
		AccountID: acct.ID,
		Email:     acct.Email,
		Role:      acct.Role,
	}, nil
}

func recordLogin(r LoginRecorder, result string) {
	if r != nil {
		r.RecordLogin(result)
	}
}

// TokenSigner signs bearer tokens.
type TokenSigner interface {
	Issue(accountID, role, email string) (string, time.Time, error)
}

// IssueTokenResult is returned to API clients.
type IssueTokenResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	AccountID string    `json:"account_id"`
	Role      string    `json:"role"`
}

// IssueTokenDeps holds dependencies for IssueToken.
type IssueTokenDeps struct {
	Login  LoginDeps
	Signer TokenSigner
}

// ExecuteIssueToken logs in and returns a signed bearer token.
// PRE: same as ExecuteLogin
// POST: token subject is the account ID
func ExecuteIssueToken(ctx context.Context, input LoginInput, deps IssueTokenDeps) (IssueTokenResult, error) {
	res, err := ExecuteLogin(ctx, input, deps.Login)
	if err != nil {
		return IssueTokenResult{}, err
	}
	token, exp, err := deps.Signer.Issue(res.AccountID, res.Role, res.Email)
	if err != nil {
		return IssueTokenResult{}, err
	}
	slog.Info("auth_event", "event", "token_issued", "account_id", res.AccountID)
	return IssueTokenResult{Token: token, ExpiresAt: exp, AccountID: res.AccountID, Role: res.Role}, nil
}

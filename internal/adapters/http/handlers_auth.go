package web

import (
	"log/slog"
	"net/http"

	"cutrackit/internal/adapters/http/middleware"
	"cutrackit/internal/application/orchestrators"
)

type loginResponse struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// readLogin accepts a JSON body or a form post.
func readLogin(w http.ResponseWriter, r *http.Request) (orchestrators.LoginInput, error) {
	var in orchestrators.LoginInput
	if isJSONBody(r) {
		return in, strictDecode(w, r, &in)
	}
	if err := parseForm(w, r); err != nil {
		return in, err
	}
	in.Email = r.PostFormValue("email")
	in.Password = r.PostFormValue("password")
	return in, nil
}

func (s *Server) loginDeps() orchestrators.LoginDeps {
	return orchestrators.LoginDeps{AccountStore: s.stores.AccountStore, Metrics: s.metrics}
}

// startSession creates a cookie session for a freshly authenticated account.
func (s *Server) startSession(w http.ResponseWriter, accountID, email, role string) error {
	token, err := s.sessions.Create(accountID, email, role)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(w, token, middleware.CookieOptions{Secure: s.cfg.Secure, MaxAge: s.cfg.CookieTTL})
	return nil
}

// handleLoginPage handles GET /login
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", pageData{Title: "Log in"})
}

// handleLogin handles POST /login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	input, err := readLogin(w, r)
	if err != nil {
		s.fail(w, r, "login.html", "Log in", nil, err)
		return
	}
	result, err := orchestrators.ExecuteLogin(r.Context(), input, s.loginDeps())
	if err != nil {
		s.fail(w, r, "login.html", "Log in", map[string]string{"Email": input.Email}, err)
		return
	}
	if err := s.startSession(w, result.AccountID, result.Email, result.Role); err != nil {
		internalError(w, r, err)
		return
	}
	redirectOrJSON(w, r, "/dashboard", http.StatusOK, loginResponse(result))
}

// handleLogout handles POST /logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		slog.Info("auth_event", "event", "logout", "account_id", sess.AccountID)
	}
	middleware.ClearSessionCookie(w, s.cfg.Secure)
	if isHTMLRequest(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSignupPage handles GET /signup
func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "signup.html", pageData{Title: "Sign up"})
}

// handleSignup handles POST /signup. A new account is logged straight in.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.CreateAccountInput
	if isJSONBody(r) {
		if err := strictDecode(w, r, &input); err != nil {
			writeError(w, r, err)
			return
		}
	} else {
		if err := parseForm(w, r); err != nil {
			s.fail(w, r, "signup.html", "Sign up", nil, err)
			return
		}
		input = orchestrators.CreateAccountInput{
			Name:            r.PostFormValue("name"),
			Email:           r.PostFormValue("email"),
			Password:        r.PostFormValue("password"),
			ConfirmPassword: r.PostFormValue("confirm_password"),
		}
	}
	input.Role = ""

	result, err := orchestrators.ExecuteCreateAccount(r.Context(), input, orchestrators.CreateAccountDeps{
		AccountStore: s.stores.AccountStore,
		ProfileStore: s.stores.ProfileStore,
		Sender:       s.sender,
		Now:          s.now,
	})
	if err != nil {
		s.fail(w, r, "signup.html", "Sign up", map[string]string{"Name": input.Name, "Email": input.Email}, err)
		return
	}
	acct, err := s.stores.AccountStore.GetByID(r.Context(), result.AccountID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if err := s.startSession(w, acct.ID, acct.Email, acct.Role); err != nil {
		internalError(w, r, err)
		return
	}
	redirectOrJSON(w, r, "/dashboard", http.StatusCreated, toProfileView(result.Profile))
}

// handleIssueToken handles POST /api/token and answers with a bearer token.
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.LoginInput
	if err := strictDecode(w, r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := orchestrators.ExecuteIssueToken(r.Context(), input, orchestrators.IssueTokenDeps{
		Login:  s.loginDeps(),
		Signer: s.tokens,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"cutrackit/internal/adapters/http/middleware"
	"cutrackit/internal/application/orchestrators"
	"cutrackit/internal/application/validation"
	domainMatch "cutrackit/internal/domain/match"
	domainSession "cutrackit/internal/domain/session"
	domainTeam "cutrackit/internal/domain/team"
)

// maxBodyBytes caps JSON and form bodies.
const maxBodyBytes = 1 << 20

// pageData is handed to every template.
type pageData struct {
	Title     string
	Session   middleware.Session
	LoggedIn  bool
	CSRFField template.HTML
	Error     string
	Fields    map[string]string
	Data      any
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "path", r.URL.Path, "error", err.Error())
	if isHTMLRequest(r) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSONError(w, http.StatusInternalServerError, "internal", "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return validation.New("body", "request body must be valid JSON: "+err.Error())
	}
	return nil
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// parseForm limits the body size before parsing.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return validation.New("form", "invalid form submission")
	}
	return nil
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json_encode_failed", "error", err.Error())
	}
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Code: code, Message: message})
}

// errorTable maps sentinel errors to a status and public code. The sentinel's
// own message is what the client sees, never the wrapped store context.
var errorTable = []struct {
	err    error
	status int
	code   string
}{
	{domainSession.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{orchestrators.ErrInvalidCredentials, http.StatusUnauthorized, "unauthenticated"},
	{orchestrators.ErrAccountLocked, http.StatusUnauthorized, "account_locked"},
	{domainSession.ErrCourtFull, http.StatusForbidden, "court_full"},
	{orchestrators.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domainMatch.ErrNotTeamMember, http.StatusForbidden, "forbidden"},
	{domainSession.ErrCourtNotFound, http.StatusNotFound, "not_found"},
	{domainTeam.ErrTeamNotFound, http.StatusNotFound, "not_found"},
	{orchestrators.ErrUnknownQRToken, http.StatusNotFound, "not_found"},
	{domainSession.ErrToggleConflict, http.StatusConflict, "conflict"},
	{domainTeam.ErrTeamNameTaken, http.StatusConflict, "conflict"},
	{domainTeam.ErrAlreadyMember, http.StatusConflict, "conflict"},
	{orchestrators.ErrEmailAlreadyExists, http.StatusConflict, "conflict"},
}

// classify maps an error to a status, a public code and a public message.
// Unknown errors map to 500 and must be logged by the caller.
func classify(err error) (int, string, string) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return http.StatusBadRequest, "invalid", verr.Error()
	}
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, e.code, e.err.Error()
		}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "not_found", "not found"
	}
	return http.StatusInternalServerError, "internal", "internal server error"
}

// writeError answers a failed API call with {"code","message"}.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(err)
	if status == http.StatusInternalServerError {
		internalError(w, r, err)
		return
	}
	body := apiError{Code: code, Message: msg}
	var verr *validation.Error
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	writeJSON(w, status, body)
}

// render executes a page into a buffer so a template failure never leaves a
// half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, pd pageData) {
	tpl, ok := s.pages[page]
	if !ok {
		internalError(w, r, errors.New("unknown template "+page))
		return
	}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		pd.Session = sess
		pd.LoggedIn = true
	}
	pd.CSRFField = csrf.TemplateField(r)

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, pd); err != nil {
		internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// respond renders page for browsers and JSON for everyone else.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, data)
		return
	}
	s.render(w, r, http.StatusOK, page, pageData{Title: title, Data: data})
}

// fail answers an error. Browsers get page re-rendered with the message, or
// the error page when page is empty.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, page, title string, data any, err error) {
	if !isHTMLRequest(r) {
		writeError(w, r, err)
		return
	}
	status, _, msg := classify(err)
	if status == http.StatusInternalServerError {
		slog.Error("internal_error", "path", r.URL.Path, "error", err.Error())
		s.render(w, r, status, "error.html", pageData{Title: "Error", Error: "Something went wrong."})
		return
	}
	pd := pageData{Title: title, Error: msg, Data: data}
	var verr *validation.Error
	if errors.As(err, &verr) {
		pd.Fields = verr.Fields
	}
	if page == "" {
		page = "error.html"
		pd.Title = "Error"
	}
	s.render(w, r, status, page, pd)
}

// sessionFrom returns the caller; routes behind RequireAuth always have one.
func sessionFrom(r *http.Request) middleware.Session {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return sess
}

// redirectOrJSON sends browsers to target and API callers a JSON body.
func redirectOrJSON(w http.ResponseWriter, r *http.Request, target string, status int, v any) {
	if isHTMLRequest(r) {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	writeJSON(w, status, v)
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cutrackit/internal/adapters/auth"
	web "cutrackit/internal/adapters/http"
	accountStore "cutrackit/internal/adapters/storage/account"
	courtStore "cutrackit/internal/adapters/storage/court"
	matchStore "cutrackit/internal/adapters/storage/match"
	profileStore "cutrackit/internal/adapters/storage/profile"
	sessionStore "cutrackit/internal/adapters/storage/session"
	"cutrackit/internal/adapters/storage/storagetest"
	teamStore "cutrackit/internal/adapters/storage/team"
	"cutrackit/internal/application/orchestrators"
)

func TestDo_SendsTokenAndQuery(t *testing.T) {
	var gotAuth, gotQuery, gotAccept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"rank":1,"user_id":"u1","name":"Ana","games":3}]`))
	}))
	defer ts.Close()

	c := New(ts.URL+"/", WithToken("tok"))
	rows, err := c.Leaderboard(context.Background(), "an", 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if gotAuth != "Bearer tok" || gotAccept != "application/json" {
		t.Errorf("headers: auth %q accept %q", gotAuth, gotAccept)
	}
	if gotQuery != "q=an&top=all" {
		t.Errorf("query: got %q", gotQuery)
	}
	if len(rows) != 1 || rows[0].Games != 3 {
		t.Errorf("rows: got %+v", rows)
	}
}

func TestDo_DecodesAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "court_full", "message": "court is full"})
	}))
	defer ts.Close()

	_, err := New(ts.URL).Toggle(context.Background(), "c1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Code != "court_full" || apiErr.Message != "court is full" {
		t.Errorf("got %+v", apiErr)
	}
	if !IsStatus(err, http.StatusForbidden) {
		t.Error("IsStatus should match 403")
	}
}

func TestDo_PlainTextError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 page not found", http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := New(ts.URL).Courts(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Message != "404 page not found" {
		t.Errorf("got %v", err)
	}
}

// TestClient_AgainstServer drives a real server through the client.
func TestClient_AgainstServer(t *testing.T) {
	db := storagetest.OpenDB(t)
	storagetest.InsertCourt(t, db, "c1", "Court 1", 8)
	stores := web.Stores{
		AccountStore: accountStore.NewSQLiteStore(db),
		ProfileStore: profileStore.NewSQLiteStore(db),
		CourtStore:   courtStore.NewSQLiteStore(db),
		SessionStore: sessionStore.NewSQLiteStore(db),
		TeamStore:    teamStore.NewSQLiteStore(db),
		MatchStore:   matchStore.NewSQLiteStore(db),
	}
	ctx := context.Background()
	if _, err := orchestrators.ExecuteCreateAccount(ctx, orchestrators.CreateAccountInput{
		Name: "Ana Adams", Email: "ana@test.local", Password: "correct-horse", ConfirmPassword: "correct-horse",
	}, orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore, ProfileStore: stores.ProfileStore}); err != nil {
		t.Fatalf("create account: %v", err)
	}

	tokens, err := auth.NewTokenIssuer("client-test", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	srv, err := web.NewServer(web.Config{CSRFKey: bytes.Repeat([]byte("x"), 32), RateLimitPerSecond: 1000}, stores, web.Deps{Tokens: tokens})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer srv.Close()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c := New(ts.URL)
	if _, err := c.Courts(ctx); !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("courts before login: got %v, want 401", err)
	}
	if _, err := c.Login(ctx, "ana@test.local", "wrong-password"); !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("bad login: got %v, want 401", err)
	}
	if _, err := c.Login(ctx, "ana@test.local", "correct-horse"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	res, err := c.Toggle(ctx, "c1")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if res.Occupancy != 1 || res.CourtName != "Court 1" {
		t.Errorf("toggle: got %+v", res)
	}

	court, err := c.Court(ctx, "c1")
	if err != nil {
		t.Fatalf("Court: %v", err)
	}
	if len(court.Players) != 1 || court.Players[0].FirstName != "Ana" {
		t.Errorf("court players: got %+v", court.Players)
	}

	prof, err := c.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if prof.OpenSession == nil || prof.OpenSession.CourtID != "c1" {
		t.Errorf("profile open session: got %+v", prof.OpenSession)
	}

	team, err := c.CreateTeam(ctx, NewTeam{Name: "Night Owls", Size: "5v5", Tags: "late"})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if _, err := c.JoinTeam(ctx, team.ID); !IsStatus(err, http.StatusConflict) {
		t.Errorf("coach rejoin: got %v, want 409", err)
	}
	teams, err := c.Teams(ctx, TeamFilter{Search: "owl"})
	if err != nil || len(teams) != 1 {
		t.Errorf("Teams: got %+v, %v", teams, err)
	}

	traffic, err := c.Traffic(ctx, 0, true)
	if err != nil || len(traffic.Days) != 7 {
		t.Errorf("Traffic: got %+v, %v", traffic, err)
	}
	if matches, err := c.Matches(ctx); err != nil || len(matches) != 0 {
		t.Errorf("Matches: got %+v, %v", matches, err)
	}
}

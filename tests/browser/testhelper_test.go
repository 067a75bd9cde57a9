package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"cutrackit/internal/adapters/auth"
	web "cutrackit/internal/adapters/http"
	"cutrackit/internal/adapters/storage"
	accountStore "cutrackit/internal/adapters/storage/account"
	courtStore "cutrackit/internal/adapters/storage/court"
	matchStore "cutrackit/internal/adapters/storage/match"
	profileStore "cutrackit/internal/adapters/storage/profile"
	sessionStore "cutrackit/internal/adapters/storage/session"
	teamStore "cutrackit/internal/adapters/storage/team"
	"cutrackit/internal/application/orchestrators"
)

const testPassword = "TestPass123!"

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  web.Stores
}

// newTestApp creates a fully wired app with a temp SQLite DB, two courts and
// a running HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	stores := web.Stores{
		AccountStore: accountStore.NewSQLiteStore(db),
		ProfileStore: profileStore.NewSQLiteStore(db),
		CourtStore:   courtStore.NewSQLiteStore(db),
		SessionStore: sessionStore.NewSQLiteStore(db),
		TeamStore:    teamStore.NewSQLiteStore(db),
		MatchStore:   matchStore.NewSQLiteStore(db),
	}

	ctx := context.Background()
	if _, err := orchestrators.ExecuteSeedCourts(ctx, orchestrators.SeedCourtsInput{
		Names:    []string{"Court 1", "Court 2"},
		Capacity: 2,
	}, orchestrators.SeedCourtsDeps{CourtStore: stores.CourtStore}); err != nil {
		t.Fatalf("failed to seed courts: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	tokens, err := auth.NewTokenIssuer("browser-test", time.Hour)
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	server, err := web.NewServer(web.Config{
		CSRFKey:            []byte(strings.Repeat("k", 32)),
		TrustedOrigins:     []string{fmt.Sprintf("127.0.0.1:%d", port), fmt.Sprintf("localhost:%d", port)},
		CookieTTL:          time.Hour,
		RateLimitPerSecond: 1000,
	}, stores, web.Deps{Tokens: tokens})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: server.Handler(),
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		server.Close()
		db.Close()
	})

	return app
}

// newPage creates a new browser page in its own context so cookies do not
// leak between players.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	bctx, err := a.Browser.NewContext()
	if err != nil {
		t.Fatalf("failed to create browser context: %v", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { bctx.Close() })
	return page
}

// signup registers a player through the form and waits for the dashboard.
func (a *testApp) signup(t *testing.T, page playwright.Page, name, email string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/signup"); err != nil {
		t.Fatalf("failed to navigate to signup: %v", err)
	}
	fill(t, page, "input[name=name]", name)
	fill(t, page, "input[name=email]", email)
	fill(t, page, "input[name=password]", testPassword)
	fill(t, page, "input[name=confirm_password]", testPassword)
	click(t, page, "main button[type=submit]")
	a.waitFor(t, page, "/dashboard")
}

// login logs an existing player in through the form.
func (a *testApp) login(t *testing.T, page playwright.Page, email string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	fill(t, page, "input[name=email]", email)
	fill(t, page, "input[name=password]", testPassword)
	click(t, page, "main button[type=submit]")
	a.waitFor(t, page, "/dashboard")
}

func (a *testApp) waitFor(t *testing.T, page playwright.Page, path string) {
	t.Helper()
	if err := page.WaitForURL(a.BaseURL+path+"**", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("did not reach %s (at %s): %v", path, page.URL(), err)
	}
}

func fill(t *testing.T, page playwright.Page, selector, value string) {
	t.Helper()
	if err := page.Locator(selector).Fill(value); err != nil {
		t.Fatalf("fill %s: %v", selector, err)
	}
}

func click(t *testing.T, page playwright.Page, selector string) {
	t.Helper()
	if err := page.Locator(selector).First().Click(); err != nil {
		t.Fatalf("click %s: %v", selector, err)
	}
}

func text(t *testing.T, page playwright.Page, selector string) string {
	t.Helper()
	s, err := page.Locator(selector).First().TextContent()
	if err != nil {
		t.Fatalf("text %s: %v", selector, err)
	}
	return s
}

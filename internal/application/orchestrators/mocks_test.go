package orchestrators

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"cutrackit/internal/adapters/email"
	accountstore "cutrackit/internal/adapters/storage/account"
	profilestore "cutrackit/internal/adapters/storage/profile"
	sessionstore "cutrackit/internal/adapters/storage/session"
	teamstore "cutrackit/internal/adapters/storage/team"
	"cutrackit/internal/domain/account"
	"cutrackit/internal/domain/court"
	"cutrackit/internal/domain/match"
	"cutrackit/internal/domain/profile"
	"cutrackit/internal/domain/session"
	"cutrackit/internal/domain/team"
)

var testTime = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

func testNow() time.Time { return testTime }

func testID() string { return "test-id-001" }

var errNotFound = fmt.Errorf("not found: %w", sql.ErrNoRows)

// mockToggler mimics the store's toggle transaction in memory.
type mockToggler struct {
	mu     sync.Mutex
	courts map[string]court.Court
	open   map[string]session.Session // by user
	err    error
	calls  int
}

func newMockToggler(courts ...court.Court) *mockToggler {
	m := &mockToggler{courts: map[string]court.Court{}, open: map[string]session.Session{}}
	for _, c := range courts {
		m.courts[c.ID] = c
	}
	return m
}

func (m *mockToggler) Toggle(_ context.Context, p sessionstore.ToggleParams) (sessionstore.ToggleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return sessionstore.ToggleResult{}, m.err
	}
	var expired *session.Session
	if s, ok := m.open[p.UserID]; ok && p.StaleAfter > 0 && s.OpenedAt.Before(p.Now.Add(-p.StaleAfter)) {
		_ = s.Close(p.Now)
		delete(m.open, p.UserID)
		c := m.courts[s.CourtID]
		c.Occupancy = max(c.Occupancy-1, 0)
		m.courts[c.ID] = c
		expired = &s
	}
	if s, ok := m.open[p.UserID]; ok {
		_ = s.Close(p.Now)
		delete(m.open, p.UserID)
		c := m.courts[s.CourtID]
		if c.Occupancy > 0 {
			c.Occupancy--
		}
		m.courts[c.ID] = c
		return sessionstore.ToggleResult{Outcome: session.CheckedOut, Session: s, Court: c}, nil
	}
	c, ok := m.courts[p.CourtID]
	if !ok {
		return sessionstore.ToggleResult{}, session.ErrCourtNotFound
	}
	if !c.HasRoom() {
		return sessionstore.ToggleResult{}, session.ErrCourtFull
	}
	s := session.Session{ID: p.NewSessionID, UserID: p.UserID, CourtID: c.ID, OpenedAt: p.Now}
	m.open[p.UserID] = s
	c.Occupancy++
	m.courts[c.ID] = c
	return sessionstore.ToggleResult{Outcome: session.CheckedIn, Session: s, Court: c, Expired: expired}, nil
}

// mockRecorder records metric calls.
type mockRecorder struct {
	toggles []string
	logins  []string
	expired int
	open    int
}

func (r *mockRecorder) RecordToggle(outcome string) { r.toggles = append(r.toggles, outcome) }
func (r *mockRecorder) RecordLogin(result string)   { r.logins = append(r.logins, result) }
func (r *mockRecorder) RecordExpired(n int)         { r.expired += n }
func (r *mockRecorder) SetOpenSessions(n int)       { r.open = n }

// mockAccountStore implements the account interfaces.
type mockAccountStore struct {
	accounts map[string]account.Account
	saves    int
}

func newMockAccountStore(accts ...account.Account) *mockAccountStore {
	m := &mockAccountStore{accounts: map[string]account.Account{}}
	for _, a := range accts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, errNotFound
	}
	return a, nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, e string) (account.Account, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, e) {
			return a, nil
		}
	}
	return account.Account{}, errNotFound
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.saves++
	m.accounts[a.ID] = a
	return nil
}

// mockProfileStore implements the profile interfaces and writes accounts
// through to the linked account store.
type mockProfileStore struct {
	profiles map[string]profile.Profile
	accounts *mockAccountStore
	qrErr    error                   // returned by GetByQRToken when set
	takenQR  func(token string) bool // extra tokens treated as already in use
}

func newMockProfileStore(accounts *mockAccountStore) *mockProfileStore {
	return &mockProfileStore{profiles: map[string]profile.Profile{}, accounts: accounts}
}

func (m *mockProfileStore) GetByID(_ context.Context, id string) (profile.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return profile.Profile{}, errNotFound
	}
	return p, nil
}

func (m *mockProfileStore) GetByQRToken(_ context.Context, token string) (profile.Profile, error) {
	if m.qrErr != nil {
		return profile.Profile{}, m.qrErr
	}
	for _, p := range m.profiles {
		if p.QRToken == token {
			return p, nil
		}
	}
	return profile.Profile{}, errNotFound
}

func (m *mockProfileStore) SaveWithAccount(_ context.Context, p profile.Profile, a account.Account) error {
	for id, other := range m.accounts.accounts {
		if id != a.ID && strings.EqualFold(other.Email, a.Email) {
			return accountstore.ErrEmailTaken
		}
	}
	if m.takenQR != nil && m.takenQR(p.QRToken) {
		return profilestore.ErrQRTokenTaken
	}
	for id, other := range m.profiles {
		if id != p.ID && other.QRToken == p.QRToken {
			return profilestore.ErrQRTokenTaken
		}
	}
	m.profiles[p.ID] = p
	m.accounts.accounts[a.ID] = a
	return nil
}

// mockSender records sent mail.
type mockSender struct {
	sent    []email.SendRequest
	batches [][]email.SendRequest
	err     error
}

func (s *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if s.err != nil {
		return email.SendResult{}, s.err
	}
	s.sent = append(s.sent, req)
	return email.SendResult{MessageID: "msg-1"}, nil
}

func (s *mockSender) SendBatch(_ context.Context, reqs []email.SendRequest) ([]email.SendResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.batches = append(s.batches, reqs)
	return make([]email.SendResult, len(reqs)), nil
}

// mockTeamStore implements the team interfaces.
type mockTeamStore struct {
	teams   map[string]team.Team
	members map[string][]teamstore.Member
}

func newMockTeamStore() *mockTeamStore {
	return &mockTeamStore{teams: map[string]team.Team{}, members: map[string][]teamstore.Member{}}
}

func (m *mockTeamStore) Create(_ context.Context, t team.Team) error {
	for _, other := range m.teams {
		if strings.EqualFold(other.Name, t.Name) {
			return team.ErrTeamNameTaken
		}
	}
	m.teams[t.ID] = t
	m.members[t.ID] = []teamstore.Member{{UserID: t.CoachID, JoinedAt: t.CreatedAt}}
	return nil
}

func (m *mockTeamStore) GetByID(_ context.Context, id string) (team.Team, error) {
	t, ok := m.teams[id]
	if !ok {
		return team.Team{}, team.ErrTeamNotFound
	}
	return t, nil
}

func (m *mockTeamStore) AddMember(_ context.Context, mem team.Membership) error {
	for _, existing := range m.members[mem.TeamID] {
		if existing.UserID == mem.UserID {
			return team.ErrAlreadyMember
		}
	}
	m.members[mem.TeamID] = append(m.members[mem.TeamID], teamstore.Member{UserID: mem.UserID, JoinedAt: mem.JoinedAt})
	return nil
}

func (m *mockTeamStore) IsMember(_ context.Context, teamID, userID string) (bool, error) {
	for _, existing := range m.members[teamID] {
		if existing.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTeamStore) ListMembers(_ context.Context, teamID string) ([]teamstore.Member, error) {
	return m.members[teamID], nil
}

// mockMatchStore implements MatchStoreForPublish.
type mockMatchStore struct {
	saved []match.Match
}

func (m *mockMatchStore) Save(_ context.Context, mt match.Match) error {
	m.saved = append(m.saved, mt)
	return nil
}

// mockCourtStore implements CourtStoreForSeed.
type mockCourtStore struct {
	courts []court.Court
	err    error
}

func (m *mockCourtStore) Count(context.Context) (int, error) { return len(m.courts), m.err }

func (m *mockCourtStore) Save(_ context.Context, c court.Court) error {
	m.courts = append(m.courts, c)
	return nil
}

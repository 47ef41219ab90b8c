package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"pktracker/internal/backend"
	"pktracker/internal/core"
	mwauth "pktracker/internal/middleware/auth"
	"pktracker/internal/storage"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	res, err := backend.NewFactory(nil).CreateBackend(context.Background(), backend.Config{
		Dialect:       storage.SQLite,
		DSN:           filepath.Join(t.TempDir(), "pk.db"),
		SessionSecret: strings.Repeat("k", 32),
		SessionTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	t.Cleanup(func() { _ = res.Cleanup() })

	s, err := NewServer(Options{Backend: res.Backend, RateLimitPerMinute: 10000})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	s.now = func() time.Time { return fixedNow }
	return s
}

func do(s *Server, method, target string, form url.Values, session *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if session != nil {
		req.AddCookie(session)
	}
	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == mwauth.CookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no %s cookie in response (status %d)", mwauth.CookieName, rr.Code)
	return nil
}

func signup(t *testing.T, s *Server, username string) *http.Cookie {
	t.Helper()
	rr := do(s, http.MethodPost, "/signup/", url.Values{
		"username":  {username},
		"password1": {"correct-horse"},
		"password2": {"correct-horse"},
	}, nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != expensesPath {
		t.Fatalf("signup: status=%d location=%q body=%s", rr.Code, rr.Header().Get("Location"), rr.Body.String())
	}
	return sessionCookie(t, rr)
}

func addExpense(t *testing.T, s *Server, session *http.Cookie, title, amount, category, date string) {
	t.Helper()
	rr := do(s, http.MethodPost, expensesPath, url.Values{
		"add_expense": {"1"},
		"title":       {title},
		"amount":      {amount},
		"category":    {category},
		"date":        {date},
	}, session)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("add expense %q: status=%d body=%s", title, rr.Code, rr.Body.String())
	}
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t)

	rr := do(s, http.MethodGet, "/healthz", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("healthz content-type = %q", ct)
	}

	rr = do(s, http.MethodGet, "/readyz", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz status=%d body=%s", rr.Code, rr.Body.String())
	}
	var body struct {
		Status string         `json:"status"`
		Checks map[string]any `json:"checks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("readyz body not JSON: %v", err)
	}
	if body.Status != "ready" || body.Checks["events"] != "disabled" {
		t.Errorf("readyz = %+v", body)
	}

	rr = do(s, http.MethodGet, "/metrics", nil, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Errorf("metrics status=%d, missing runtime collectors", rr.Code)
	}
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/expenses/", "/charts/", "/history/", "/calendar/", "/forecast/", "/export-csv/", "/groups/"} {
		t.Run(path, func(t *testing.T) {
			rr := do(s, http.MethodGet, path, nil, nil)
			if rr.Code != http.StatusSeeOther {
				t.Fatalf("status=%d, want 303", rr.Code)
			}
			want := loginPath + "?next=" + path
			if got := rr.Header().Get("Location"); got != want {
				t.Errorf("Location = %q, want %q", got, want)
			}
		})
	}
}

func TestHomeIsPublic(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name     string
		loggedIn bool
		want     string
	}{
		{"anonymous", false, `href="/signup/"`},
		{"signed in", true, `href="/expenses/"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var session *http.Cookie
			if tt.loggedIn {
				session = signup(t, s, "meera")
			}
			rr := do(s, http.MethodGet, "/", nil, session)
			if rr.Code != http.StatusOK {
				t.Fatalf("status=%d, want 200", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tt.want) {
				t.Errorf("home page missing %s", tt.want)
			}
		})
	}
}

func TestSignupLoginLogout(t *testing.T) {
	s := newTestServer(t)
	signup(t, s, "asha")

	rr := do(s, http.MethodPost, "/signup/", url.Values{
		"username": {"asha"}, "password1": {"correct-horse"}, "password2": {"correct-horse"},
	}, nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("duplicate signup status=%d, want 422", rr.Code)
	}

	rr = do(s, http.MethodPost, "/login/", url.Values{"username": {"asha"}, "password": {"wrong-password"}}, nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad login status=%d, want 422", rr.Code)
	}

	rr = do(s, http.MethodPost, "/login/", url.Values{
		"username": {"asha"}, "password": {"correct-horse"}, "next": {"/history/"},
	}, nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/history/" {
		t.Fatalf("login status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}
	session := sessionCookie(t, rr)
	if !session.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	rr = do(s, http.MethodGet, "/history/", nil, session)
	if rr.Code != http.StatusOK {
		t.Errorf("history with session status=%d", rr.Code)
	}

	rr = do(s, http.MethodPost, "/login/", url.Values{
		"username": {"asha"}, "password": {"correct-horse"}, "next": {"//evil.example"},
	}, nil)
	if got := rr.Header().Get("Location"); got != expensesPath {
		t.Errorf("open redirect not blocked: Location = %q", got)
	}

	rr = do(s, http.MethodPost, "/logout/", url.Values{}, session)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != loginPath {
		t.Errorf("logout status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestExpenseLifecycle(t *testing.T) {
	s := newTestServer(t)
	session := signup(t, s, "ravi")

	addExpense(t, s, session, "Groceries", "450", "Food", "2024-03-10")
	addExpense(t, s, session, "Train", "120", "Travel", "2024-03-11")

	rr := do(s, http.MethodGet, expensesPath, nil, session)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Groceries", "Train", "₹570"} {
		if !strings.Contains(body, want) {
			t.Errorf("list page missing %q", want)
		}
	}

	rr = do(s, http.MethodGet, expensesPath+"?search=train", nil, session)
	if strings.Contains(rr.Body.String(), "Groceries") {
		t.Error("search should filter out non-matching expenses")
	}

	rr = do(s, http.MethodPost, expensesPath, url.Values{
		"add_expense": {"1"}, "title": {"Bad"}, "amount": {"12.50"}, "category": {"Food"}, "date": {"2024-03-10"},
	}, session)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("fractional amount status=%d, want 422", rr.Code)
	}
	rr = do(s, http.MethodPost, expensesPath, url.Values{
		"add_expense": {"1"}, "title": {"Huge"}, "amount": {"18446744073709551617"}, "category": {"Food"}, "date": {"2024-03-10"},
	}, session)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("out of range amount status=%d, want 422", rr.Code)
	}

	expenses, err := s.backend.Store.ListExpenses(context.Background(), userID(t, s, "ravi"), storage.ExpenseFilter{Order: storage.InsertionOrder})
	if err != nil || len(expenses) != 2 {
		t.Fatalf("ListExpenses: %v (%d)", err, len(expenses))
	}
	id := strconv.FormatInt(expenses[0].ID, 10)

	rr = do(s, http.MethodPost, "/edit/"+id+"/", url.Values{
		"title": {"Groceries"}, "amount": {"500"}, "category": {"Food"}, "date": {"2024-03-10"},
	}, session)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("edit status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(s, http.MethodGet, "/delete/"+id+"/", nil, session)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Groceries") {
		t.Errorf("delete confirmation status=%d", rr.Code)
	}
	rr = do(s, http.MethodPost, "/delete/"+id+"/", url.Values{}, session)
	if rr.Code != http.StatusSeeOther {
		t.Errorf("delete status=%d", rr.Code)
	}

	rr = do(s, http.MethodGet, "/export-csv/", nil, session)
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, core.ExportFilename) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 2 || strings.TrimSpace(lines[0]) != "Title,Category,Amount,Date" {
		t.Errorf("csv = %q", rr.Body.String())
	}
}

func TestForeignExpenseRedirects(t *testing.T) {
	s := newTestServer(t)
	owner := signup(t, s, "owner")
	other := signup(t, s, "other")
	addExpense(t, s, owner, "Rent", "9000", "Bills", "2024-03-01")

	expenses, err := s.backend.Store.ListExpenses(context.Background(), userID(t, s, "owner"), storage.ExpenseFilter{})
	if err != nil || len(expenses) != 1 {
		t.Fatalf("ListExpenses: %v", err)
	}
	path := "/edit/" + strconv.FormatInt(expenses[0].ID, 10) + "/"

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		var form url.Values
		if method == http.MethodPost {
			form = url.Values{"title": {"Mine"}, "amount": {"1"}, "category": {"Food"}, "date": {"2024-03-01"}}
		}
		rr := do(s, method, path, form, other)
		if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != expensesPath {
			t.Errorf("%s foreign edit: status=%d location=%q", method, rr.Code, rr.Header().Get("Location"))
		}
	}

	got, err := s.backend.Store.GetExpense(context.Background(), userID(t, s, "owner"), expenses[0].ID)
	if err != nil || got.Title != "Rent" {
		t.Errorf("owner's expense changed: %+v, %v", got, err)
	}
}

func TestBudgetAndIncome(t *testing.T) {
	s := newTestServer(t)
	session := signup(t, s, "meera")

	rr := do(s, http.MethodPost, "/set-budget/", url.Values{"limit": {"-5"}}, session)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("negative limit status=%d, want 422", rr.Code)
	}
	rr = do(s, http.MethodPost, "/set-budget/", url.Values{"limit": {"1000"}}, session)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("set budget status=%d", rr.Code)
	}

	rr = do(s, http.MethodPost, expensesPath, url.Values{
		"add_income": {"1"}, "source": {"Salary"}, "amount": {"5000.50"}, "date": {"2024-03-01"},
	}, session)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("add income status=%d body=%s", rr.Code, rr.Body.String())
	}
	addExpense(t, s, session, "Dinner", "1500", "Food", "2024-03-12")

	rr = do(s, http.MethodGet, expensesPath, nil, session)
	body := rr.Body.String()
	if !strings.Contains(body, "Salary") || !strings.Contains(body, "Over by 50.0%") {
		t.Errorf("list page should show income and budget overrun")
	}

	incomes, err := s.backend.Store.ListIncomes(context.Background(), userID(t, s, "meera"))
	if err != nil || len(incomes) != 1 {
		t.Fatalf("ListIncomes: %v", err)
	}
	rr = do(s, http.MethodPost, "/delete-income/"+strconv.FormatInt(incomes[0].ID, 10)+"/", url.Values{}, session)
	if rr.Code != http.StatusSeeOther {
		t.Errorf("delete income status=%d", rr.Code)
	}
}

func TestDashboards(t *testing.T) {
	s := newTestServer(t)
	session := signup(t, s, "kiran")

	rr := do(s, http.MethodGet, "/charts/categories.png", nil, session)
	if rr.Code != http.StatusNotFound {
		t.Errorf("empty chart status=%d, want 404", rr.Code)
	}

	addExpense(t, s, session, "Lunch", "200", "Food", "2024-03-14")
	addExpense(t, s, session, "Movie", "300", "Entertainment", "2024-03-13")

	for _, path := range []string{"/charts/", "/history/", "/calendar/", "/forecast/", "/download/"} {
		if rr := do(s, http.MethodGet, path, nil, session); rr.Code != http.StatusOK {
			t.Errorf("%s status=%d", path, rr.Code)
		}
	}
	for _, path := range []string{"/charts/categories.png", "/forecast/categories.png"} {
		rr := do(s, http.MethodGet, path, nil, session)
		if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/png" {
			t.Errorf("%s status=%d type=%q", path, rr.Code, rr.Header().Get("Content-Type"))
		}
	}

	rr = do(s, http.MethodGet, "/calendar/events", nil, session)
	var events []core.CalendarEvent
	if err := json.Unmarshal(rr.Body.Bytes(), &events); err != nil || len(events) != 2 {
		t.Fatalf("calendar events: %v (%d)", err, len(events))
	}
	if events[0].Type != "expense" {
		t.Errorf("first event type = %q", events[0].Type)
	}

	rr = do(s, http.MethodGet, "/forecast/", nil, session)
	if !strings.Contains(rr.Body.String(), "2024-02-15") {
		t.Errorf("forecast should show the window start")
	}
}

func TestGroups(t *testing.T) {
	s := newTestServer(t)
	alice := signup(t, s, "alice")
	bob := signup(t, s, "bob")
	signup(t, s, "carol")

	rr := do(s, http.MethodPost, "/groups/create/", url.Values{"name": {""}, "group_type": {"Roommates"}}, alice)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty group name status=%d, want 422", rr.Code)
	}
	rr = do(s, http.MethodPost, "/groups/create/", url.Values{"name": {"Flat 4B"}, "group_type": {"Roommates"}}, alice)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("create group status=%d body=%s", rr.Code, rr.Body.String())
	}
	groupURL := rr.Header().Get("Location")

	if rr := do(s, http.MethodGet, groupURL, nil, bob); rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != groupsPath {
		t.Errorf("non-member view status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}

	rr = do(s, http.MethodPost, groupURL, url.Values{"add_member": {"1"}, "username": {"nobody"}}, alice)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown member status=%d, want 422", rr.Code)
	}
	rr = do(s, http.MethodPost, groupURL, url.Values{"add_member": {"1"}, "username": {"bob"}}, alice)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("add member status=%d", rr.Code)
	}

	bobID := strconv.FormatInt(int64(userID(t, s, "bob")), 10)
	carolID := strconv.FormatInt(int64(userID(t, s, "carol")), 10)

	rr = do(s, http.MethodPost, groupURL, url.Values{"title": {"Groceries"}, "amount": {"10"}, "paid_by": {carolID}}, alice)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("payer outside group status=%d, want 422", rr.Code)
	}
	rr = do(s, http.MethodPost, groupURL, url.Values{"title": {"Groceries"}, "amount": {"10"}, "paid_by": {"x"}}, alice)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("unparsable payer status=%d, want 422", rr.Code)
	}
	rr = do(s, http.MethodPost, groupURL, url.Values{"title": {"Internet"}, "amount": {"100.00"}, "paid_by": {bobID}}, alice)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("add group expense status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(s, http.MethodGet, groupURL, nil, bob)
	if rr.Code != http.StatusOK {
		t.Fatalf("member view status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "alice pays bob ₹50.00") {
		t.Errorf("group page missing settlement transfer:\n%s", rr.Body.String())
	}

	rr = do(s, http.MethodGet, groupsPath, nil, bob)
	if !strings.Contains(rr.Body.String(), "Flat 4B") {
		t.Error("group list should include groups the user joined")
	}
}

func TestBlogAndNotFound(t *testing.T) {
	s := newTestServer(t)

	rr := do(s, http.MethodGet, "/blogs/saving/", nil, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "<article") {
		t.Errorf("blog list status=%d", rr.Code)
	}
	rr = do(s, http.MethodGet, "/blogs/crypto/", nil, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "No posts") {
		t.Errorf("unknown category status=%d", rr.Code)
	}
	if rr := do(s, http.MethodGet, "/nope", nil, nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status=%d, want 404", rr.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)
	rr := do(s, http.MethodGet, "/login/", nil, nil)
	if rr.Header().Get("Content-Security-Policy") == "" || rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("missing security headers: %v", rr.Header())
	}

	req := httptest.NewRequest(http.MethodPost, "/login/", strings.NewReader("username=a&password=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rr = httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("cross-site POST status=%d, want 403", rr.Code)
	}
}

func userID(t *testing.T, s *Server, username string) core.UserID {
	t.Helper()
	u, err := s.backend.Store.GetUserByUsername(context.Background(), username)
	if err != nil {
		t.Fatalf("GetUserByUsername(%q): %v", username, err)
	}
	return u.ID
}

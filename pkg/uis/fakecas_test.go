package uis_test

import (
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
)

const (
	testUsername = "20300000001"
	testPassword = "correct-horse"
)

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html><body>
<form id="search" action="/search"><input name="q"></form>
<form id="casLoginForm" method="post" action="/authserver/login?service={{.Service}}">
  <input type="text" name="username" placeholder="ID">
  <input type="password" name="password">
  {{if .OTP}}<input type="text" name="otpCode">{{end}}
  <input type="checkbox" name="rememberMe" value="true">
  <input type="hidden" name="lt" value="{{.LT}}">
  <input type="hidden" name="execution" value="e1s1">
  <input type="hidden" name="_eventId" value="submit">
  <input type="submit" name="submit" value="Login">
</form>
</body></html>`))

// fakeCAS is an identity provider plus one protected resource, each on its
// own httptest server.
type fakeCAS struct {
	IdP      *httptest.Server
	Resource *httptest.Server

	mu          sync.Mutex
	password    string
	requireOTP  bool
	otpAccepted func(code string) bool
	tickets     map[string]bool

	issued      atomic.Int32
	submissions atomic.Int32
}

func newFakeCAS(t *testing.T) *fakeCAS {
	t.Helper()

	f := &fakeCAS{password: testPassword, tickets: make(map[string]bool)}
	f.IdP = httptest.NewServer(http.HandlerFunc(f.serveIdP))
	f.Resource = httptest.NewServer(http.HandlerFunc(f.serveResource))
	t.Cleanup(func() {
		f.IdP.Close()
		f.Resource.Close()
	})
	return f
}

func (f *fakeCAS) requireCode(accept func(code string) bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requireOTP = true
	f.otpAccepted = accept
}

func (f *fakeCAS) idpHost() string {
	u, _ := url.Parse(f.IdP.URL)
	return u.Host
}

func (f *fakeCAS) serveIdP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/authserver/login" {
		http.NotFound(w, r)
		return
	}
	service := r.URL.Query().Get("service")

	if r.Method == http.MethodPost {
		f.submissions.Add(1)
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if f.accept(r.PostForm) {
			http.SetCookie(w, &http.Cookie{Name: "CASTGC", Value: "TGT-1", Path: "/authserver"})
			f.redirectWithTicket(w, r, service)
			return
		}
	} else if c, err := r.Cookie("CASTGC"); err == nil && c.Value == "TGT-1" {
		f.redirectWithTicket(w, r, service)
		return
	}

	f.mu.Lock()
	otp := f.requireOTP
	f.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = loginPage.Execute(w, map[string]any{
		"Service": service,
		"LT":      "LT-42",
		"OTP":     otp,
	})
}

func (f *fakeCAS) accept(form url.Values) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if form.Get("username") != testUsername || form.Get("password") != f.password {
		return false
	}
	if form.Get("lt") != "LT-42" || form.Get("execution") != "e1s1" || form.Get("_eventId") != "submit" {
		return false
	}
	if form.Has("submit") || form.Has("rememberMe") {
		return false
	}
	if f.requireOTP && (f.otpAccepted == nil || !f.otpAccepted(form.Get("otpCode"))) {
		return false
	}
	return true
}

func (f *fakeCAS) redirectWithTicket(w http.ResponseWriter, r *http.Request, service string) {
	target, err := url.Parse(service)
	if err != nil || service == "" {
		_, _ = fmt.Fprint(w, "logged in")
		return
	}

	ticket := fmt.Sprintf("ST-%d", f.issued.Add(1))
	f.mu.Lock()
	f.tickets[ticket] = true
	f.mu.Unlock()

	q := target.Query()
	q.Set("ticket", ticket)
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

func (f *fakeCAS) serveResource(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie("JSESSIONID"); err == nil && c.Value == "resource-session" {
		_, _ = fmt.Fprintf(w, "payload %s %s", r.Method, r.URL.Path)
		return
	}

	if ticket := r.URL.Query().Get("ticket"); ticket != "" {
		f.mu.Lock()
		ok := f.tickets[ticket]
		delete(f.tickets, ticket)
		f.mu.Unlock()
		if ok {
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "resource-session", Path: "/"})
			clean := *r.URL
			q := clean.Query()
			q.Del("ticket")
			clean.RawQuery = q.Encode()
			http.Redirect(w, r, clean.String(), http.StatusFound)
			return
		}
	}

	service := f.Resource.URL + r.URL.RequestURI()
	http.Redirect(w, r, f.IdP.URL+"/authserver/login?service="+url.QueryEscape(service), http.StatusFound)
}

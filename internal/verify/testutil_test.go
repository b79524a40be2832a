package verify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
)

// testBrowser launches headless chromium, skipping the test if playwright or
// its browsers are not installed.
func testBrowser(t *testing.T) playwright.Browser {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Skip("Playwright not available:", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		t.Skip("Could not launch browser:", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
	})

	return browser
}

var testUsers = []User{
	{ID: "1", Username: "adminuser", Email: "admin@example.com"},
	{ID: "2", Username: "alice", Email: "alice@example.com"},
}

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html><body>
<header>
  <nav><a href="/">Home</a>{{ if .ShowAdmin }} | <a href="/admin">Admin</a>{{ end }}</nav>
  {{ if .LoggedIn }}<button>Log out</button>{{ else }}<button id="login">Log in</button>{{ end }}
</header>
<h1>Public Page</h1>
<script>
  console.log("home loaded");
  const login = document.getElementById("login");
  if (login) {
    login.addEventListener("click", () => { window.location.href = {{ .AuthURL }}; });
  }
</script>
</body></html>`))

var adminTemplate = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html><body>
<h1>Admin Page</h1>
<h2>User List</h2>
<table>
  <thead><tr><th>ID</th><th>Username</th><th>Email</th></tr></thead>
  <tbody>{{ range . }}<tr><td>{{ .ID }}</td><td>{{ .Username }}</td><td>{{ .Email }}</td></tr>{{ end }}</tbody>
</table>
</body></html>`))

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html><body>
<h1>Sign in to appx</h1>
{{ if .Failed }}<p id="error">Invalid username or password.</p>{{ end }}
<form method="post" action="/auth">
  <input type="hidden" name="redirect_uri" value="{{ .RedirectURI }}">
  <input type="text" name="username">
  <input type="password" name="password">
  <input type="submit" name="login" value="Sign In">
</form>
</body></html>`))

func render(w http.ResponseWriter, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// newIdentityProvider serves a login form accepting only username/password.
func newIdentityProvider(t *testing.T, username, password string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth", func(w http.ResponseWriter, r *http.Request) {
		render(w, loginTemplate, map[string]any{
			"RedirectURI": r.URL.Query().Get("redirect_uri"),
		})
	})
	mux.HandleFunc("POST /auth", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("username") != username || r.FormValue("password") != password {
			render(w, loginTemplate, map[string]any{
				"RedirectURI": r.FormValue("redirect_uri"),
				"Failed":      true,
			})
			return
		}
		http.Redirect(w, r, r.FormValue("redirect_uri")+"?code=ok", http.StatusFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type testApp struct {
	*httptest.Server
	hideAdmin bool
}

// newTestApp serves a home page whose log in button sends the browser to
// idp, a callback that starts a session and an admin page listing testUsers.
func newTestApp(t *testing.T, idp *httptest.Server, hideAdmin bool) *testApp {
	t.Helper()

	app := &testApp{hideAdmin: hideAdmin}

	loggedIn := func(r *http.Request) bool {
		cookie, err := r.Cookie("session")
		return err == nil && cookie.Value == "ok"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		authURL := fmt.Sprintf("%s/auth?redirect_uri=%s", idp.URL, url.QueryEscape(app.URL+"/callback"))
		render(w, homeTemplate, map[string]any{
			"LoggedIn":  loggedIn(r),
			"ShowAdmin": loggedIn(r) && !app.hideAdmin,
			"AuthURL":   authURL,
		})
	})
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: r.URL.Query().Get("code"), Path: "/"})
		http.Redirect(w, r, "/", http.StatusFound)
	})
	mux.HandleFunc("GET /admin", func(w http.ResponseWriter, r *http.Request) {
		if !loggedIn(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		render(w, adminTemplate, testUsers)
	})

	app.Server = httptest.NewServer(mux)
	t.Cleanup(app.Close)
	return app
}

// testConfig points the runner at app and idp with timeouts short enough for
// failure cases to finish quickly.
func testConfig(appURL string, idp *httptest.Server) Config {
	cfg := DefaultConfig()
	cfg.AppURL = appURL
	cfg.IdPPattern = regexp.QuoteMeta(idp.Listener.Addr().String())
	cfg.LoginTimeout = 5 * time.Second
	cfg.RedirectTimeout = 2 * time.Second
	cfg.TableTimeout = 2 * time.Second
	cfg.ActionTimeout = 2 * time.Second
	return cfg
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

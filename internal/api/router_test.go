package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AntiSecTech/CertVerif/internal/auth"
	"github.com/AntiSecTech/CertVerif/internal/config"
	"github.com/AntiSecTech/CertVerif/internal/session"
	"github.com/AntiSecTech/CertVerif/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	router   *gin.Engine
	certs    *store.CertificateStore
	admins   *store.AdminStore
	sessions *session.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Data.CertificatesPath = filepath.Join(dir, "certificates.json")
	cfg.Data.AdminsPath = filepath.Join(dir, "admin.json")
	cfg.Data.StaticDir = ""

	certs := store.NewCertificateStore(cfg.Data.CertificatesPath)
	admins := store.NewAdminStore(cfg.Data.AdminsPath)
	sessions := session.NewManager(time.Hour)

	router := NewRouter(cfg, certs, admins, sessions, zaptest.NewLogger(t))

	return &testServer{
		router:   router,
		certs:    certs,
		admins:   admins,
		sessions: sessions,
	}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return ts.do(req)
}

// login authenticates through the real endpoint and returns the session
// cookie the browser would carry.
func (ts *testServer) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	w := ts.postForm("/admin/login", url.Values{
		"username": {username},
		"password": {password},
	}, nil)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/admin/dashboard", w.Header().Get("Location"))

	for _, c := range w.Result().Cookies() {
		if c.Name == "session_id" {
			return c
		}
	}
	t.Fatal("login response did not set a session cookie")
	return nil
}

func seedAdmin(t *testing.T, ts *testServer, username, password string, role auth.Role) {
	t.Helper()
	_, err := ts.admins.Create(username, password, role)
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	t.Run("Valid credentials set a session cookie", func(t *testing.T) {
		ts := newTestServer(t)
		seedAdmin(t, ts, "admin", "Password1", auth.RoleSuperadmin)

		cookie := ts.login(t, "admin", "Password1")
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, "/", cookie.Path)
		assert.NotEmpty(t, cookie.Value)

		sess, ok := ts.sessions.Validate(cookie.Value)
		require.True(t, ok)
		assert.Equal(t, "admin", sess.Username)
		assert.Equal(t, auth.RoleSuperadmin, sess.Role)
	})

	t.Run("Wrong password redirects back with error flag", func(t *testing.T) {
		ts := newTestServer(t)
		seedAdmin(t, ts, "admin", "Password1", auth.RoleSuperadmin)

		w := ts.postForm("/admin/login", url.Values{
			"username": {"admin"},
			"password": {"wrong"},
		}, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin/login?error=1", w.Header().Get("Location"))
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("Unknown user gets the same redirect", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.postForm("/admin/login", url.Values{
			"username": {"ghost"},
			"password": {"Password1"},
		}, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin/login?error=1", w.Header().Get("Location"))
	})

	t.Run("Login page shows error from query flag", func(t *testing.T) {
		ts := newTestServer(t)

		w := ts.do(httptest.NewRequest(http.MethodGet, "/admin/login?error=1", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid username or password")
	})
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	seedAdmin(t, ts, "admin", "Password1", auth.RoleSuperadmin)
	cookie := ts.login(t, "admin", "Password1")

	req := httptest.NewRequest(http.MethodGet, "/admin/logout", nil)
	req.AddCookie(cookie)
	w := ts.do(req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	_, ok := ts.sessions.Validate(cookie.Value)
	assert.False(t, ok, "session should be destroyed")

	// The old cookie no longer opens the admin area
	req = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(cookie)
	w = ts.do(req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	ts := newTestServer(t)

	paths := []string{
		"/admin/dashboard",
		"/admin/certificates",
		"/admin/certificates/new",
		"/admin/admins",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := ts.do(httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/admin/login", w.Header().Get("Location"))
		})
	}

	t.Run("Garbage cookie is treated as no session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "not-a-token"})
		w := ts.do(req)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin/login", w.Header().Get("Location"))
	})
}

func TestVerifyAPI(t *testing.T) {
	ts := newTestServer(t)

	cert, err := ts.certs.Create(store.CertificateInput{
		Type:       "diving",
		Title:      "Open Water Diver",
		Owner:      "Erika Mustermann",
		ExpireDate: time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
	})
	require.NoError(t, err)

	jsonVerify := func(t *testing.T, path string) map[string]any {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept", "application/json")
		w := ts.do(req)
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body
	}

	t.Run("Known certificate is valid", func(t *testing.T) {
		body := jsonVerify(t, "/api/verify/"+cert.CertNumber)
		assert.Equal(t, true, body["found"])
		assert.Equal(t, true, body["valid"])
		assert.Equal(t, "valid", body["status"])
		assert.NotNil(t, body["data"])
	})

	t.Run("Unknown certificate is invalid", func(t *testing.T) {
		body := jsonVerify(t, "/api/verify/CV99-999-990101")
		assert.Equal(t, false, body["found"])
		assert.Equal(t, false, body["valid"])
		assert.Equal(t, "invalid", body["status"])
		assert.Equal(t, "Certificate not found", body["message"])
	})

	t.Run("Name mismatch is invalid", func(t *testing.T) {
		body := jsonVerify(t, "/api/verify/"+cert.CertNumber+"?firstName=Max&lastName=Mustermann")
		assert.Equal(t, false, body["valid"])
		assert.Equal(t, "Name does not match certificate owner", body["message"])
	})

	t.Run("Matching names are accepted case-insensitively", func(t *testing.T) {
		body := jsonVerify(t, "/api/verify/"+cert.CertNumber+"?firstName=erika&lastName=MUSTERMANN")
		assert.Equal(t, true, body["valid"])
	})

	t.Run("Without JSON accept header the verdict page is served", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/api/verify/"+cert.CertNumber, nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Valid Certificate")
	})

	t.Run("Verify page renders the verdict", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodGet, "/verify/"+cert.CertNumber, nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Valid Certificate")
	})
}

func TestCertificateManagement(t *testing.T) {
	certForm := func(owner string) url.Values {
		return url.Values{
			"cert_type[type]":  {"diving"},
			"cert_type[title]": {"Open Water Diver"},
			"owner":            {owner},
			"birthdate":        {"1990-04-12"},
			"address[city]":    {"Berlin"},
			"contact[email]":   {"owner@example.com"},
			"expire_date":      {"2030-01-01"},
		}
	}

	t.Run("Create via form", func(t *testing.T) {
		ts := newTestServer(t)
		seedAdmin(t, ts, "admin", "Password1", auth.RoleAdmin)
		cookie := ts.login(t, "admin", "Password1")

		w := ts.postForm("/admin/certificates/new", certForm("Erika Mustermann"), cookie)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin/certificates", w.Header().Get("Location"))

		certs, err := ts.certs.List()
		require.NoError(t, err)
		require.Len(t, certs, 1)
		assert.Equal(t, "Erika Mustermann", certs[0].Owner)
	})

	t.Run("Create rejects missing owner", func(t *testing.T) {
		ts := newTestServer(t)
		seedAdmin(t, ts, "admin", "Password1", auth.RoleAdmin)
		cookie := ts.login(t, "admin", "Password1")

		form := certForm("")
		w := ts.postForm("/admin/certificates/new", form, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Update via PUT", func(t *testing.T) {
		ts := newTestServer(t)
		seedAdmin(t, ts, "admin", "Password1", auth.RoleAdmin)
		cookie := ts.login(t, "admin", "Password1")

		cert, err := ts.certs.Create(store.CertificateInput{Owner: "Erika Mustermann", ExpireDate: "2030-01-01"})
		require.NoError(t, err)

		form := certForm("Erika Musterfrau")
		req := httptest.NewRequest(http.MethodPut, "/admin/certificates/edit/"+cert.CertNumber, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		w := ts.do(req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success": true}`, w.Body.String())

		updated, err := ts.certs.Get(cert.CertNumber)
		require.NoError(t, err)
		assert.Equal(t, "Erika Musterfrau", updated.Owner)
		assert.Equal(t, cert.CertNumber, updated.CertNumber)
	})

	t.Run("Update unknown certificate returns 404", func(t *testing.T) {
		ts := newTestServer(t)
		seedAdmin(t, ts, "admin", "Password1", auth.RoleAdmin)
		cookie := ts.login(t, "admin", "Password1")

		req := httptest.NewRequest(http.MethodPut, "/admin/certificates/edit/CV99-999-990101", strings.NewReader(certForm("X Y").Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		w := ts.do(req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delete requires the admin role", func(t *testing.T) {
		ts := newTestServer(t)
		seedAdmin(t, ts, "viewer", "Password1", auth.RoleUser)
		seedAdmin(t, ts, "admin", "Password1", auth.RoleAdmin)

		cert, err := ts.certs.Create(store.CertificateInput{Owner: "Erika Mustermann", ExpireDate: "2030-01-01"})
		require.NoError(t, err)

		viewerCookie := ts.login(t, "viewer", "Password1")
		req := httptest.NewRequest(http.MethodDelete, "/admin/certificates/delete/"+cert.CertNumber, nil)
		req.AddCookie(viewerCookie)
		w := ts.do(req)
		assert.Equal(t, http.StatusForbidden, w.Code)

		adminCookie := ts.login(t, "admin", "Password1")
		req = httptest.NewRequest(http.MethodDelete, "/admin/certificates/delete/"+cert.CertNumber, nil)
		req.AddCookie(adminCookie)
		w = ts.do(req)
		assert.Equal(t, http.StatusOK, w.Code)

		_, err = ts.certs.Get(cert.CertNumber)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("User role can still list certificates", func(t *testing.T) {
		ts := newTestServer(t)
		seedAdmin(t, ts, "viewer", "Password1", auth.RoleUser)
		cookie := ts.login(t, "viewer", "Password1")

		req := httptest.NewRequest(http.MethodGet, "/admin/certificates", nil)
		req.AddCookie(cookie)
		w := ts.do(req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAdminManagement(t *testing.T) {
	t.Run("User role is forbidden", func(t *testing.T) {
		ts := newTestServer(t)
		seedAdmin(t, ts, "viewer", "Password1", auth.RoleUser)
		cookie := ts.login(t, "viewer", "Password1")

		req := httptest.NewRequest(http.MethodGet, "/admin/admins", nil)
		req.AddCookie(cookie)
		w := ts.do(req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Create administrator", func(t *testing.T) {
		ts := newTestServer(t)
		seedAdmin(t, ts, "admin", "Password1", auth.RoleSuperadmin)
		cookie := ts.login(t, "admin", "Password1")

		w := ts.postForm("/admin/admins/new", url.Values{
			"username": {"erika"},
			"password": {"Password1"},
			"role":     {"admin"},
		}, cookie)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin/admins", w.Header().Get("Location"))

		created, err := ts.admins.Get("erika")
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, created.Role)
	})

	t.Run("Create rejects duplicates and weak passwords", func(t *testing.T) {
		ts := newTestServer(t)
		seedAdmin(t, ts, "admin", "Password1", auth.RoleSuperadmin)
		cookie := ts.login(t, "admin", "Password1")

		w := ts.postForm("/admin/admins/new", url.Values{
			"username": {"admin"},
			"password": {"Password1"},
		}, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = ts.postForm("/admin/admins/new", url.Values{
			"username": {"erika"},
			"password": {"short"},
		}, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Update role and password", func(t *testing.T) {
		ts := newTestServer(t)
		seedAdmin(t, ts, "admin", "Password1", auth.RoleSuperadmin)
		seedAdmin(t, ts, "erika", "Password1", auth.RoleUser)
		cookie := ts.login(t, "admin", "Password1")

		form := url.Values{"password": {"Password2"}, "role": {"admin"}}
		req := httptest.NewRequest(http.MethodPut, "/admin/admins/edit/erika", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		w := ts.do(req)
		assert.Equal(t, http.StatusOK, w.Code)

		updated, err := ts.admins.Authenticate("erika", "Password2")
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, updated.Role)
	})

	t.Run("Protected account cannot be deleted", func(t *testing.T) {
		ts := newTestServer(t)
		seedAdmin(t, ts, "admin", "Password1", auth.RoleSuperadmin)
		seedAdmin(t, ts, "erika", "Password1", auth.RoleUser)
		cookie := ts.login(t, "admin", "Password1")

		req := httptest.NewRequest(http.MethodDelete, "/admin/admins/delete/admin", nil)
		req.AddCookie(cookie)
		w := ts.do(req)
		assert.Equal(t, http.StatusForbidden, w.Code)

		req = httptest.NewRequest(http.MethodDelete, "/admin/admins/delete/erika", nil)
		req.AddCookie(cookie)
		w = ts.do(req)
		assert.Equal(t, http.StatusOK, w.Code)

		_, err := ts.admins.Get("erika")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t)
	seedAdmin(t, ts, "admin", "Password1", auth.RoleAdmin)
	cookie := ts.login(t, "admin", "Password1")

	_, err := ts.certs.Create(store.CertificateInput{Owner: "Erika Mustermann", ExpireDate: "2030-01-01"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(cookie)
	w := ts.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin")
}

func TestLandingPage(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

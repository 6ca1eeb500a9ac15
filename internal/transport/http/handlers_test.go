package httptransport_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/belgacembalti/trustgate/internal/accesslog"
	"github.com/belgacembalti/trustgate/internal/alert"
	"github.com/belgacembalti/trustgate/internal/device"
	"github.com/belgacembalti/trustgate/internal/identity"
	"github.com/belgacembalti/trustgate/internal/otp"
	"github.com/belgacembalti/trustgate/internal/session"
	"github.com/belgacembalti/trustgate/internal/token"
	httptransport "github.com/belgacembalti/trustgate/internal/transport/http"
	"github.com/belgacembalti/trustgate/internal/trust"
)

// zeroReader pins the OTP entropy source so the issued code is always 000000.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

type HTTPTestSuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
}

func TestHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(HTTPTestSuite))
}

func (s *HTTPTestSuite) SetupTest() {
	idStore := identity.NewMemoryStore()
	bioStore := identity.NewMemoryBiometricStore()
	idService := identity.NewService(idStore, bioStore)

	engine := trust.NewEngine(idStore, trust.DefaultConfig())
	registry := device.NewRegistry(device.NewMemoryStore())
	challenges := otp.NewService(otp.NewMemoryStore(), otp.WithRandSource(zeroReader{}))
	sink := alert.NewSink(alert.NewMemoryStore())
	attempts := accesslog.NewRecorder(accesslog.NewMemoryStore())
	tokens := token.NewService("test-signing-key", "trustgate-test",
		15*time.Minute, 24*time.Hour, token.NewMemoryTRL())

	issuer := session.NewIssuer(idStore, engine, registry, challenges, tokens, sink, attempts,
		session.WithBiometrics(bioStore, identity.NewTemplateMatcher()))

	handler := httptransport.NewHandler(issuer, idService, idStore, tokens,
		token.NewAccessValidator(tokens), registry, sink, attempts)

	s.server = httptest.NewServer(httptransport.NewRouter(handler))
	s.client = s.server.Client()
}

func (s *HTTPTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *HTTPTestSuite) post(path string, body map[string]any, headers map[string]string) (*http.Response, map[string]any) {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)
	req, err := http.NewRequest(http.MethodPost, s.server.URL+path, bytes.NewReader(payload))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return s.do(req)
}

func (s *HTTPTestSuite) get(path string, headers map[string]string) (*http.Response, map[string]any) {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+path, nil)
	s.Require().NoError(err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return s.do(req)
}

func (s *HTTPTestSuite) do(req *http.Request) (*http.Response, map[string]any) {
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func deviceHeaders(fingerprint string) map[string]string {
	return map[string]string{
		"X-Device-Id":   fingerprint,
		"X-Device-Name": "Chrome on Mac OS X",
	}
}

func (s *HTTPTestSuite) register(email string) string {
	resp, body := s.post("/auth/register", map[string]any{
		"email": email, "password": "correct-horse",
	}, nil)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	return body["user_id"].(string)
}

func (s *HTTPTestSuite) TestRegisterLoginRoundTrip() {
	s.register("alice@example.com")

	resp, body := s.post("/auth/login", map[string]any{
		"email": "alice@example.com", "password": "correct-horse",
	}, deviceHeaders("fp-laptop"))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("granted", body["status"])
	s.NotEmpty(body["access_token"])
	s.NotEmpty(body["refresh_token"])
}

func (s *HTTPTestSuite) TestLoginWrongPassword() {
	s.register("alice@example.com")

	resp, body := s.post("/auth/login", map[string]any{
		"email": "alice@example.com", "password": "wrong",
	}, nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("invalid_credentials", body["error"])
}

func (s *HTTPTestSuite) TestStepUpRoundTrip() {
	s.register("bob@example.com")

	resp, body := s.post("/auth/login", map[string]any{
		"email": "bob@example.com", "password": "correct-horse", "want_otp": true,
	}, deviceHeaders("fp-phone"))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().Equal("pending_otp", body["status"])
	s.Nil(body["access_token"])

	s.Run("wrong code denied", func() {
		resp, body := s.post("/auth/verify-otp", map[string]any{
			"email": "bob@example.com", "code": "999999",
		}, deviceHeaders("fp-phone"))
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
		s.Equal("invalid_or_expired", body["error"])
	})

	s.Run("pinned code grants", func() {
		resp, body := s.post("/auth/verify-otp", map[string]any{
			"email": "bob@example.com", "code": "000000",
		}, deviceHeaders("fp-phone"))
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.Equal("granted", body["status"])
		s.NotEmpty(body["access_token"])
	})
}

func (s *HTTPTestSuite) TestAuthenticatedSurfaces() {
	s.register("carol@example.com")
	_, body := s.post("/auth/login", map[string]any{
		"email": "carol@example.com", "password": "correct-horse",
	}, deviceHeaders("fp-tablet"))
	access := body["access_token"].(string)
	authz := map[string]string{"Authorization": "Bearer " + access}

	s.Run("device list shows the login device", func() {
		resp, body := s.get("/devices", authz)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		devices := body["devices"].([]any)
		s.Require().Len(devices, 1)
		first := devices[0].(map[string]any)
		s.Equal("fp-tablet", first["fingerprint"])
		s.Equal(true, first["trusted"])
	})

	s.Run("dashboard aggregates live stores", func() {
		resp, body := s.get("/security/dashboard", authz)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.Equal(float64(1), body["device_count"])
		s.NotNil(body["trust_score"])
		s.NotEmpty(body["recent_attempts"])
	})

	s.Run("access log recorded the attempt", func() {
		resp, body := s.get("/security/access-log", authz)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		attempts := body["attempts"].([]any)
		s.Require().NotEmpty(attempts)
		first := attempts[0].(map[string]any)
		s.Equal("success", first["status"])
	})

	s.Run("unauthenticated requests are rejected", func() {
		resp, body := s.get("/devices", nil)
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
		s.Equal("unauthorized", body["error"])
	})

	s.Run("logout revokes the access token", func() {
		resp, _ := s.post("/auth/logout", map[string]any{}, authz)
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		resp, _ = s.get("/devices", authz)
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	})
}

func (s *HTTPTestSuite) TestRefreshRotation() {
	s.register("dave@example.com")
	_, body := s.post("/auth/login", map[string]any{
		"email": "dave@example.com", "password": "correct-horse",
	}, deviceHeaders("fp-1"))
	refresh := body["refresh_token"].(string)

	resp, rotated := s.post("/auth/refresh", map[string]any{"refresh_token": refresh}, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.NotEmpty(rotated["access_token"])

	// The consumed refresh token cannot be replayed.
	resp, _ = s.post("/auth/refresh", map[string]any{"refresh_token": refresh}, nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *HTTPTestSuite) TestBiometricFlow() {
	s.register("erin@example.com")
	_, body := s.post("/auth/login", map[string]any{
		"email": "erin@example.com", "password": "correct-horse",
	}, deviceHeaders("fp-1"))
	authz := map[string]string{"Authorization": "Bearer " + body["access_token"].(string)}

	s.Run("login before enrollment is forbidden", func() {
		resp, respBody := s.post("/auth/biometric-login", map[string]any{
			"email": "erin@example.com", "template": "tpl-1",
		}, deviceHeaders("fp-1"))
		s.Equal(http.StatusForbidden, resp.StatusCode)
		s.Equal("biometric_not_enabled", respBody["error"])
	})

	s.Run("enroll then login", func() {
		resp, _ := s.post("/auth/biometric-enroll", map[string]any{"template": "tpl-1"}, authz)
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		resp, respBody := s.post("/auth/biometric-login", map[string]any{
			"email": "erin@example.com", "template": "tpl-1",
		}, deviceHeaders("fp-1"))
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.Equal("granted", respBody["status"])
	})

	s.Run("mismatched template is rejected", func() {
		resp, respBody := s.post("/auth/biometric-login", map[string]any{
			"email": "erin@example.com", "template": "tpl-other",
		}, deviceHeaders("fp-1"))
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
		s.Equal("biometric_mismatch", respBody["error"])
	})
}

func (s *HTTPTestSuite) TestAlertResolveScopedToOwner() {
	s.register("grace@example.com")
	for i := 0; i < 5; i++ {
		resp, _ := s.post("/auth/login", map[string]any{
			"email": "grace@example.com", "password": "wrong",
		}, deviceHeaders("fp-1"))
		s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
	}

	_, body := s.post("/auth/login", map[string]any{
		"email": "grace@example.com", "password": "correct-horse",
	}, deviceHeaders("fp-1"))
	ownerAuthz := map[string]string{"Authorization": "Bearer " + body["access_token"].(string)}

	_, alertsBody := s.get("/security/alerts?unresolved=true", ownerAuthz)
	alerts := alertsBody["alerts"].([]any)
	s.Require().NotEmpty(alerts)
	alertID := alerts[0].(map[string]any)["id"].(string)

	s.Run("another user's token cannot resolve it", func() {
		s.register("mallory@example.com")
		_, body := s.post("/auth/login", map[string]any{
			"email": "mallory@example.com", "password": "correct-horse",
		}, deviceHeaders("fp-2"))
		otherAuthz := map[string]string{"Authorization": "Bearer " + body["access_token"].(string)}

		resp, respBody := s.post("/security/alerts/"+alertID+"/resolve", map[string]any{}, otherAuthz)
		s.Equal(http.StatusNotFound, resp.StatusCode)
		s.Equal("not_found", respBody["error"])

		_, alertsBody := s.get("/security/alerts?unresolved=true", ownerAuthz)
		s.NotEmpty(alertsBody["alerts"])
	})

	s.Run("the owner resolves it", func() {
		resp, respBody := s.post("/security/alerts/"+alertID+"/resolve", map[string]any{}, ownerAuthz)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.Equal("resolved", respBody["status"])

		_, alertsBody := s.get("/security/alerts?unresolved=true", ownerAuthz)
		s.Empty(alertsBody["alerts"])
	})
}

func (s *HTTPTestSuite) TestDeviceRevoke() {
	s.register("frank@example.com")
	_, body := s.post("/auth/login", map[string]any{
		"email": "frank@example.com", "password": "correct-horse",
	}, deviceHeaders("fp-old"))
	authz := map[string]string{"Authorization": "Bearer " + body["access_token"].(string)}

	_, listBody := s.get("/devices", authz)
	devices := listBody["devices"].([]any)
	s.Require().Len(devices, 1)
	deviceID := devices[0].(map[string]any)["id"].(string)

	req, err := http.NewRequest(http.MethodDelete, s.server.URL+"/devices/"+deviceID, nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", authz["Authorization"])
	resp, _ := s.do(req)
	s.Equal(http.StatusNoContent, resp.StatusCode)

	_, listBody = s.get("/devices", authz)
	s.Empty(listBody["devices"])
}

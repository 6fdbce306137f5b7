package controller

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/vouchpost/vouchpost/internal/background"
	"github.com/vouchpost/vouchpost/internal/db"
	"github.com/vouchpost/vouchpost/internal/service"
	"github.com/vouchpost/vouchpost/pkg/encodings"
	"github.com/vouchpost/vouchpost/pkg/errorcode"
	"github.com/vouchpost/vouchpost/pkg/tokens"
)

type memoryKeyStore struct {
	keys []*db.APIKey
}

func (s *memoryKeyStore) FetchAPIKeyBySiteKey(siteKey encodings.URLSafe) (*db.APIKey, error) {
	for _, key := range s.keys {
		if key.SiteKey.Reveal() == siteKey.Reveal() {
			return key, nil
		}
	}
	return nil, errorcode.ErrorNotFound
}

func (s *memoryKeyStore) FetchAPIKeyBySecret(secret encodings.Standard) (*db.APIKey, error) {
	for _, key := range s.keys {
		if key.Secret.Reveal() == secret.Reveal() {
			return key, nil
		}
	}
	return nil, errorcode.ErrorNotFound
}

func (s *memoryKeyStore) ExistsAPIKeyForConsole(siteKey encodings.URLSafe, consoleID int64) (bool, error) {
	for _, key := range s.keys {
		if key.SiteKey.Reveal() == siteKey.Reveal() && key.ConsoleID == consoleID {
			return true, nil
		}
	}
	return false, nil
}

type staticResolver struct {
	keys map[string]*rsa.PublicKey
}

func (r *staticResolver) ResolveKey(_ context.Context, kid string) (*rsa.PublicKey, error) {
	if key, ok := r.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("no key with ID '%v'", kid)
}

type testApp struct {
	router   *gin.Engine
	apiKey   *db.APIKey
	analysis *background.AnalysisServer
	authKey  *rsa.PrivateKey
}

func newTestAPIKey(t *testing.T) *db.APIKey {
	siteKey, err := encodings.RandomURLSafe()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	encodingKey, err := encodings.RandomStandard()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	secret, err := encodings.RandomStandard()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	return &db.APIKey{
		SiteKey:     siteKey,
		EncodingKey: encodingKey,
		Secret:      secret,
		ConsoleID:   42,
	}
}

func newTestApp(t *testing.T) (*testApp, func()) {
	gin.SetMode(gin.TestMode)

	apiKey := newTestAPIKey(t)

	analysis := background.NewAnalysisServer(2)
	err := analysis.Start()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	info := &service.Info{
		KeyStore:   &memoryKeyStore{keys: []*db.APIKey{apiKey}},
		Analysis:   analysis,
		Difficulty: 2,
	}

	authKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	resolver := &staticResolver{keys: map[string]*rsa.PublicKey{"op-key": &authKey.PublicKey}}

	challengeController := &ChallengeController{
		GroupName:    "/challenge",
		ChallengeSvc: &service.ChallengeService{ServiceInfo: info},
	}
	verificationController := &VerificationController{
		GroupName:       "/siteverify",
		VerificationSvc: &service.VerificationService{ServiceInfo: info},
	}
	consoleController := &ConsoleController{
		GroupName:      "/console",
		ConsoleSvc:     &service.ConsoleService{ServiceInfo: info},
		AuthMiddleware: OperatorAuthMiddleware(resolver, "https://console.vouchpost.test"),
	}
	pingPongController := &PingPongController{}

	router := gin.New()
	router.Use(CORSMiddleware())
	apiv1Group := router.Group("/api/v1")
	for _, c := range []Controller{pingPongController, challengeController, verificationController, consoleController} {
		err := RegisterHandlers(apiv1Group, c)
		if isNoError := assert.NoError(t, err); !isNoError {
			t.FailNow()
		}
	}

	app := &testApp{
		router:   router,
		apiKey:   apiKey,
		analysis: analysis,
		authKey:  authKey,
	}

	return app, func() {
		wg, err := analysis.Stop()
		assert.NoError(t, err)
		wg.Wait()
	}
}

func (a *testApp) getChallengeToken(t *testing.T) string {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/challenge?sitekey="+url.QueryEscape(a.apiKey.SiteKey.Reveal()), nil)
	a.router.ServeHTTP(recorder, req)

	if isEqual := assert.Equal(t, http.StatusOK, recorder.Code); !isEqual {
		t.FailNow()
	}

	var info ChallengeTokenInfo
	err := json.Unmarshal(recorder.Body.Bytes(), &info)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	return info.Token
}

func (a *testApp) submitChallenge(t *testing.T, path string, body map[string]interface{}) *httptest.ResponseRecorder {
	encoded, err := json.Marshal(body)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://shop.example.org")
	a.router.ServeHTTP(recorder, req)

	return recorder
}

func humanInteractionsBody() []map[string]interface{} {
	return []map[string]interface{}{
		{"ts": 0, "event": map[string]interface{}{"kind": "mousemovement", "x": 10, "y": 10}},
		{"ts": 40, "event": map[string]interface{}{"kind": "mousemovement", "x": 30, "y": 25}},
		{"ts": 120, "event": map[string]interface{}{"kind": "mouseclick", "up_down": "down"}},
		{"ts": 200, "event": map[string]interface{}{"kind": "mouseclick", "up_down": "up"}},
	}
}

func TestPingPong(t *testing.T) {
	app, teardown := newTestApp(t)
	defer teardown()

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	app.router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "pong", recorder.Body.String())
}

func TestChallengeEndpointsEndToEnd(t *testing.T) {
	app, teardown := newTestApp(t)
	defer teardown()

	challengeToken := app.getChallengeToken(t)

	claims, err := tokens.DecodePow(challengeToken, app.apiKey.EncodingKey)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	solution := claims.Challenge.Solve()

	recorder := app.submitChallenge(t, "/api/v1/challenge/process", map[string]interface{}{
		"sitekey":      app.apiKey.SiteKey.Reveal(),
		"token":        challengeToken,
		"solution":     solution,
		"interactions": humanInteractionsBody(),
	})

	if isEqual := assert.Equal(t, http.StatusOK, recorder.Code); !isEqual {
		t.FailNow()
	}

	var info ResponseTokenInfo
	err = json.Unmarshal(recorder.Body.Bytes(), &info)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	// The relying site now verifies the response token over the form endpoint.
	form := url.Values{}
	form.Set("secret", app.apiKey.Secret.Reveal())
	form.Set("response", info.Token)

	verifyRecorder := httptest.NewRecorder()
	verifyReq := httptest.NewRequest(http.MethodPost, "/api/v1/siteverify", strings.NewReader(form.Encode()))
	verifyReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	app.router.ServeHTTP(verifyRecorder, verifyReq)

	if isEqual := assert.Equal(t, http.StatusOK, verifyRecorder.Code); !isEqual {
		t.FailNow()
	}

	var body VerificationResponseBody
	err = json.Unmarshal(verifyRecorder.Body.Bytes(), &body)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	assert.True(t, body.Success)
	assert.Equal(t, "shop.example.org", body.Hostname)
	assert.Empty(t, body.ErrorCodes)
	assert.NotEmpty(t, body.ChallengeTS)
}

func TestProcessChallengeWrongSolution(t *testing.T) {
	app, teardown := newTestApp(t)
	defer teardown()

	challengeToken := app.getChallengeToken(t)

	claims, err := tokens.DecodePow(challengeToken, app.apiKey.EncodingKey)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	solution := claims.Challenge.Solve()

	recorder := app.submitChallenge(t, "/api/v1/challenge/process", map[string]interface{}{
		"sitekey":      app.apiKey.SiteKey.Reveal(),
		"token":        challengeToken,
		"solution":     solution - 1,
		"interactions": humanInteractionsBody(),
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestProcessChallengeRequiresOrigin(t *testing.T) {
	app, teardown := newTestApp(t)
	defer teardown()

	challengeToken := app.getChallengeToken(t)

	encoded, err := json.Marshal(map[string]interface{}{
		"sitekey":      app.apiKey.SiteKey.Reveal(),
		"token":        challengeToken,
		"solution":     0,
		"interactions": humanInteractionsBody(),
	})
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/challenge/process", bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	app.router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetChallengeUnknownSiteKey(t *testing.T) {
	app, teardown := newTestApp(t)
	defer teardown()

	other, err := encodings.RandomURLSafe()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/challenge?sitekey="+url.QueryEscape(other.Reveal()), nil)
	app.router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestAccessibilityEndpoint(t *testing.T) {
	app, teardown := newTestApp(t)
	defer teardown()

	challengeToken := app.getChallengeToken(t)

	claims, err := tokens.DecodePow(challengeToken, app.apiKey.EncodingKey)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	solution := claims.Challenge.Solve()

	recorder := app.submitChallenge(t, "/api/v1/challenge/accessibility", map[string]interface{}{
		"sitekey":  app.apiKey.SiteKey.Reveal(),
		"token":    challengeToken,
		"solution": solution,
	})

	if isEqual := assert.Equal(t, http.StatusOK, recorder.Code); !isEqual {
		t.FailNow()
	}

	var info ResponseTokenInfo
	err = json.Unmarshal(recorder.Body.Bytes(), &info)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	responseClaims, err := tokens.DecodeResponse(info.Token, app.apiKey.EncodingKey)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.InDelta(t, 1.0, responseClaims.Score, 1e-6)
}

func TestSiteVerifyCollectsMissingFields(t *testing.T) {
	app, teardown := newTestApp(t)
	defer teardown()

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/siteverify", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	app.router.ServeHTTP(recorder, req)

	if isEqual := assert.Equal(t, http.StatusOK, recorder.Code); !isEqual {
		t.FailNow()
	}

	var body VerificationResponseBody
	err := json.Unmarshal(recorder.Body.Bytes(), &body)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	assert.False(t, body.Success)
	assert.Contains(t, body.ErrorCodes, errorcode.VerificationMissingInputSecret)
	assert.Contains(t, body.ErrorCodes, errorcode.VerificationMissingInputResponse)
}

func signOperatorToken(t *testing.T, app *testApp, subject string) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    "https://auth.vouchpost.test",
		Subject:   subject,
		Audience:  jwt.ClaimStrings{"https://console.vouchpost.test"},
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "op-key"

	signed, err := token.SignedString(app.authKey)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	return signed
}

func TestConsoleOwnershipEndpoint(t *testing.T) {
	app, teardown := newTestApp(t)
	defer teardown()

	operatorToken := signOperatorToken(t, app, "42")

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/console/keys/"+url.PathEscape(app.apiKey.SiteKey.Reveal())+"/ownership", nil)
	req.Header.Set("Authorization", "Bearer "+operatorToken)
	app.router.ServeHTTP(recorder, req)

	if isEqual := assert.Equal(t, http.StatusOK, recorder.Code); !isEqual {
		t.FailNow()
	}

	var info OwnershipInfo
	err := json.Unmarshal(recorder.Body.Bytes(), &info)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.True(t, info.Owned)
}

func TestConsoleOwnershipRequiresToken(t *testing.T) {
	app, teardown := newTestApp(t)
	defer teardown()

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/console/keys/"+url.PathEscape(app.apiKey.SiteKey.Reveal())+"/ownership", nil)
	app.router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

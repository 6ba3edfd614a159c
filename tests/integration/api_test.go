package integration

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "flow-ledger/internal/adapter/http/handler"
	"flow-ledger/internal/adapter/notify"
	memStorage "flow-ledger/internal/adapter/storage/memory"
	redisStorage "flow-ledger/internal/adapter/storage/redis"
	"flow-ledger/internal/core/ports"
	"flow-ledger/internal/service"
	"flow-ledger/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds the full application stack over in-memory storage and
// miniredis. This exercises the real HTTP layer, HMAC/JWT middleware,
// handlers, services and Redis stores end-to-end.

type testApp struct {
	server *httptest.Server
	redis  *miniredis.Miniredis
}

// newTestApp starts the stack. writers lists the usernames that receive
// write capability at registration.
func newTestApp(t *testing.T, writers ...string) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	kycRepo := redisStorage.NewKYCStore(rdb)
	nonceStore := redisStorage.NewNonceStore(rdb)

	encSvc, err := service.NewAESEncryptionService("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")

	ledgerRepo := memStorage.NewLedgerStore()
	operatorRepo := memStorage.NewOperatorStore()

	log := logger.New("error", false)
	events := notify.NewLogPublisher(log)

	authz := service.NewOperatorAuthorizer(operatorRepo, log)
	authSvc := service.NewAuthService(operatorRepo, hashSvc, encSvc, tokenSvc, writers)
	ledgerSvc := service.NewLedgerService(ledgerRepo, authz, events, log)
	kycSvc := service.NewKYCService(kycRepo, authz, events, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		LedgerSvc:      ledgerSvc,
		KYCSvc:         kycSvc,
		OperatorRepo:   operatorRepo,
		EncSvc:         encSvc,
		SigSvc:         sigSvc,
		NonceStore:     nonceStore,
		TokenSvc:       tokenSvc,
		HealthCheckers: []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)},
		Logger:         log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server: server,
		redis:  mr,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	regBody, _ := json.Marshal(map[string]string{
		"username": "auditor1",
		"password": "StrongPass123!",
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var regResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&regResp))
	data := regResp["data"].(map[string]interface{})
	assert.NotEmpty(t, data["operator_id"])
	assert.NotEmpty(t, data["access_key"])
	assert.NotEmpty(t, data["secret_key"])

	loginBody, _ := json.Marshal(map[string]string{
		"username": "auditor1",
		"password": "StrongPass123!",
	})
	resp2, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp2.Body.Close()

	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	var loginResp map[string]interface{}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&loginResp))
	loginData := loginResp["data"].(map[string]interface{})
	assert.NotEmpty(t, loginData["token"])
}

func TestIntegration_DuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	regBody, _ := json.Marshal(map[string]string{
		"username": "auditor1",
		"password": "StrongPass123!",
	})

	resp, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp2, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
}

func TestIntegration_LoginWrongCredentials(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	loginBody, _ := json.Marshal(map[string]string{
		"username": "nobody",
		"password": "wrong",
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_RecordAndGet(t *testing.T) {
	app := newTestApp(t, "auditor")
	defer app.close()

	creds := registerOperator(t, app, "auditor")
	token := loginAndGetToken(t, app, "auditor", "StrongPass123!")

	status, body := app.hmacPost(t, creds, "/api/v1/transactions", `{"id":"tx-1","sender":"alice","receiver":"bob","amount":500}`)
	require.Equal(t, http.StatusCreated, status, "record response: %s", body)

	var recResp struct {
		Data struct {
			ID        string `json:"id"`
			Sender    string `json:"sender"`
			Amount    int64  `json:"amount"`
			CreatedAt string `json:"created_at"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &recResp))
	assert.Equal(t, "tx-1", recResp.Data.ID)
	assert.NotEmpty(t, recResp.Data.CreatedAt)

	// Read it back over JWT
	status, body = app.jwtGet(t, token, "/api/v1/transactions/tx-1")
	require.Equal(t, http.StatusOK, status)

	var getResp struct {
		Data struct {
			ID       string `json:"id"`
			Sender   string `json:"sender"`
			Receiver string `json:"receiver"`
			Amount   int64  `json:"amount"`
			Flagged  bool   `json:"flagged"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &getResp))
	assert.Equal(t, "alice", getResp.Data.Sender)
	assert.Equal(t, "bob", getResp.Data.Receiver)
	assert.Equal(t, int64(500), getResp.Data.Amount)
	assert.False(t, getResp.Data.Flagged)
}

func TestIntegration_GetUnknownReturnsZeroRecord(t *testing.T) {
	app := newTestApp(t, "auditor")
	defer app.close()

	registerOperator(t, app, "auditor")
	token := loginAndGetToken(t, app, "auditor", "StrongPass123!")

	status, body := app.jwtGet(t, token, "/api/v1/transactions/ghost")
	require.Equal(t, http.StatusOK, status)

	var getResp struct {
		Data struct {
			ID        string `json:"id"`
			Amount    int64  `json:"amount"`
			CreatedAt string `json:"created_at"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &getResp))
	assert.Empty(t, getResp.Data.ID)
	assert.Zero(t, getResp.Data.Amount)
	assert.Empty(t, getResp.Data.CreatedAt)
}

func TestIntegration_RecordDuplicateID(t *testing.T) {
	app := newTestApp(t, "auditor")
	defer app.close()

	creds := registerOperator(t, app, "auditor")

	status, _ := app.hmacPost(t, creds, "/api/v1/transactions", `{"id":"tx-1","sender":"a","receiver":"b","amount":10}`)
	require.Equal(t, http.StatusCreated, status)

	// Same id again, even with different fields
	status, body := app.hmacPost(t, creds, "/api/v1/transactions", `{"id":"tx-1","sender":"c","receiver":"d","amount":999}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body, "LED_002")
}

func TestIntegration_RecordReadOnlyOperator(t *testing.T) {
	// "reader" is not in the writers list, so the write must be refused.
	app := newTestApp(t, "auditor")
	defer app.close()

	creds := registerOperator(t, app, "reader")

	status, body := app.hmacPost(t, creds, "/api/v1/transactions", `{"id":"tx-1","sender":"a","receiver":"b","amount":10}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "LED_001")
}

func TestIntegration_FlagTransaction(t *testing.T) {
	app := newTestApp(t, "auditor")
	defer app.close()

	creds := registerOperator(t, app, "auditor")
	token := loginAndGetToken(t, app, "auditor", "StrongPass123!")

	status, _ := app.hmacPost(t, creds, "/api/v1/transactions", `{"id":"tx-1","sender":"a","receiver":"b","amount":10}`)
	require.Equal(t, http.StatusCreated, status)

	status, body := app.hmacPost(t, creds, "/api/v1/transactions/tx-1/flag", `{"reason":"structuring"}`)
	require.Equal(t, http.StatusOK, status, "flag response: %s", body)

	status, body = app.jwtGet(t, token, "/api/v1/transactions/tx-1")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"flagged":true`)
	assert.Contains(t, body, `"flag_reason":"structuring"`)
}

func TestIntegration_FlagUnknownTransaction(t *testing.T) {
	app := newTestApp(t, "auditor")
	defer app.close()

	creds := registerOperator(t, app, "auditor")

	status, body := app.hmacPost(t, creds, "/api/v1/transactions/ghost/flag", `{"reason":"whatever"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "LED_003")
}

func TestIntegration_PartyQueries(t *testing.T) {
	app := newTestApp(t, "auditor")
	defer app.close()

	creds := registerOperator(t, app, "auditor")
	token := loginAndGetToken(t, app, "auditor", "StrongPass123!")

	// alice -> bob -> carol, plus carol -> alice closing the cycle
	for _, tx := range []string{
		`{"id":"tx-1","sender":"alice","receiver":"bob","amount":100}`,
		`{"id":"tx-2","sender":"bob","receiver":"carol","amount":60}`,
		`{"id":"tx-3","sender":"carol","receiver":"alice","amount":30}`,
	} {
		status, body := app.hmacPost(t, creds, "/api/v1/transactions", tx)
		require.Equal(t, http.StatusCreated, status, "record response: %s", body)
	}

	status, body := app.jwtGet(t, token, "/api/v1/parties/alice/transactions")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"transaction_ids":["tx-1","tx-3"]`)

	status, body = app.jwtGet(t, token, "/api/v1/parties/alice/sent")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"transaction_ids":["tx-1"]`)

	// The trace follows the money through the cycle exactly once.
	status, body = app.jwtGet(t, token, "/api/v1/parties/alice/trace")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"transaction_ids":["tx-1","tx-2","tx-3"]`)

	status, body = app.jwtGet(t, token, "/api/v1/parties/ghost/transactions")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"transaction_ids":[]`)
}

func TestIntegration_KYC(t *testing.T) {
	app := newTestApp(t, "auditor")
	defer app.close()

	creds := registerOperator(t, app, "auditor")
	token := loginAndGetToken(t, app, "auditor", "StrongPass123!")

	status, body := app.hmacPut(t, creds, "/api/v1/parties/alice/kyc", `{"tag":"high-risk"}`)
	require.Equal(t, http.StatusOK, status, "kyc response: %s", body)

	status, body = app.jwtGet(t, token, "/api/v1/parties/alice/kyc")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"tag":"high-risk"`)

	// Untagged party reads back empty
	status, body = app.jwtGet(t, token, "/api/v1/parties/bob/kyc")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"tag":""`)
}

func TestIntegration_HMAC_MissingHeaders(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Post(app.server.URL+"/api/v1/transactions", "application/json", bytes.NewReader([]byte("{}")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_HMAC_ReplayedNonce(t *testing.T) {
	app := newTestApp(t, "auditor")
	defer app.close()

	creds := registerOperator(t, app, "auditor")

	body := `{"id":"tx-1","sender":"a","receiver":"b","amount":10}`
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	nonce := "replayed-nonce-001"

	status, _ := app.hmacDo(t, creds, http.MethodPost, "/api/v1/transactions", body, timestamp, nonce)
	require.Equal(t, http.StatusCreated, status)

	// Same nonce again: rejected before the handler runs
	status, respBody := app.hmacDo(t, creds, http.MethodPost, "/api/v1/transactions", body, timestamp, nonce)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, respBody, "SEC_004")
}

func TestIntegration_JWT_Unauthorized(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/transactions/tx-1", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// --- Helpers ---

type operatorCreds struct {
	accessKey string
	secretKey string
}

func registerOperator(t *testing.T, app *testApp, username string) operatorCreds {
	t.Helper()
	regBody, _ := json.Marshal(map[string]string{
		"username": username,
		"password": "StrongPass123!",
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	bodyBytes, _ := io.ReadAll(resp.Body)
	var regResp map[string]interface{}
	require.NoError(t, json.Unmarshal(bodyBytes, &regResp))
	data := regResp["data"].(map[string]interface{})
	return operatorCreds{
		accessKey: data["access_key"].(string),
		secretKey: data["secret_key"].(string),
	}
}

func loginAndGetToken(t *testing.T, app *testApp, username, password string) string {
	t.Helper()
	loginBody, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	var loginResp map[string]interface{}
	require.NoError(t, json.Unmarshal(bodyBytes, &loginResp))
	data := loginResp["data"].(map[string]interface{})
	return data["token"].(string)
}

func (a *testApp) hmacPost(t *testing.T, creds operatorCreds, path, body string) (int, string) {
	t.Helper()
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	return a.hmacDo(t, creds, http.MethodPost, path, body, timestamp, uuid.NewString())
}

func (a *testApp) hmacPut(t *testing.T, creds operatorCreds, path, body string) (int, string) {
	t.Helper()
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	return a.hmacDo(t, creds, http.MethodPut, path, body, timestamp, uuid.NewString())
}

func (a *testApp) hmacDo(t *testing.T, creds operatorCreds, method, path, body, timestamp, nonce string) (int, string) {
	t.Helper()

	canonical := fmt.Sprintf("%s|%s|%s|%s|%s", method, path, timestamp, nonce, body)
	mac := hmac.New(sha256.New, []byte(creds.secretKey))
	mac.Write([]byte(canonical))
	signature := hex.EncodeToString(mac.Sum(nil))

	req, _ := http.NewRequest(method, a.server.URL+path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Operator-Access-Key", creds.accessKey)
	req.Header.Set("X-Signature", signature)
	req.Header.Set("X-Timestamp", timestamp)
	req.Header.Set("X-Nonce", nonce)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(respBody)
}

func (a *testApp) jwtGet(t *testing.T, token, path string) (int, string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, a.server.URL+path, nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(respBody)
}

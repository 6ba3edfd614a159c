package handler

import (
	"flow-ledger/internal/adapter/http/middleware"
	redisStore "flow-ledger/internal/adapter/storage/redis"
	"flow-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LedgerSvc      ports.LedgerService
	KYCSvc         ports.KYCService
	OperatorRepo   ports.OperatorRepository
	EncSvc         ports.EncryptionService
	SigSvc         ports.SignatureService
	NonceStore     ports.NonceStore
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
// Writes (record, flag, kyc update) require HMAC-signed requests; reads
// require a JWT.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	hmacAuth := middleware.HMACAuth(deps.OperatorRepo, deps.EncSvc, deps.SigSvc, deps.NonceStore, deps.Logger)
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.OperatorRepo, deps.Logger)

	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	kycHandler := NewKYCHandler(deps.KYCSvc)

	// --- HMAC-authenticated routes (ledger writes) ---
	writes := v1.Group("", hmacAuth)
	{
		writes.POST("/transactions", rl("writes"), ledgerHandler.Record)
		writes.POST("/transactions/:id/flag", rl("writes"), ledgerHandler.Flag)
		writes.PUT("/parties/:party/kyc", rl("writes"), kycHandler.SetTag)
	}

	// --- JWT-authenticated routes (ledger reads) ---
	reads := v1.Group("", jwtAuth)
	{
		reads.GET("/transactions/:id", rl("reads"), ledgerHandler.Get)
		reads.GET("/parties/:party/transactions", rl("reads"), ledgerHandler.TransactionsOf)
		reads.GET("/parties/:party/sent", rl("reads"), ledgerHandler.SentBy)
		reads.GET("/parties/:party/trace", rl("reads"), ledgerHandler.TraceFlow)
		reads.GET("/parties/:party/kyc", rl("reads"), kycHandler.GetTag)
	}

	return r
}

package ports

import (
	"context"
	"time"

	"flow-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// Authorizer decides whether a caller may mutate the ledger. It is
// consulted before record, flag and KYC updates; a false answer aborts the
// operation with no mutation and no event.
type Authorizer interface {
	IsAuthorized(ctx context.Context, caller string) bool
}

// EventPublisher is the fire-and-forget notification sink. Delivery is
// best-effort: implementations log failures but never surface them to the
// ledger core.
type EventPublisher interface {
	RecordedEvent(ctx context.Context, ev domain.RecordedEvent)
	FlaggedEvent(ctx context.Context, ev domain.FlaggedEvent)
	KycUpdatedEvent(ctx context.Context, ev domain.KycUpdatedEvent)
}

// EncryptionService handles AES-256-GCM encryption/decryption of secrets
// at rest (operator secret keys).
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification for the
// write API.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations for the read API.
type TokenService interface {
	Generate(operatorID uuid.UUID, accessKey string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	OperatorID uuid.UUID
	AccessKey  string
}

// NonceStore manages nonce uniqueness for replay attack prevention.
type NonceStore interface {
	// CheckAndSet atomically checks if nonce exists, sets it if not.
	// Returns true if nonce is new (valid), false if already used.
	CheckAndSet(ctx context.Context, operatorID string, nonce string, ttl time.Duration) (bool, error)
}

// --- Service Ports (Business Logic) ---

// RecordRequest holds validated input for recording a transaction.
type RecordRequest struct {
	Caller   string // Operator identity performing the write
	ID       string
	Sender   string
	Receiver string
	Amount   int64
}

// FlagRequest holds validated input for flagging a transaction.
type FlagRequest struct {
	Caller string
	ID     string
	Reason string
}

// LedgerService defines the core ledger operations: owner-gated writes,
// zero-value reads, per-party lookup, the sent filter and the flow trace.
type LedgerService interface {
	Record(ctx context.Context, req RecordRequest) (*domain.Transaction, error)
	Get(ctx context.Context, id string) (domain.Transaction, error)
	Flag(ctx context.Context, req FlagRequest) (*domain.Transaction, error)
	TransactionsOf(ctx context.Context, party string) ([]string, error)
	SentBy(ctx context.Context, party string) ([]string, error)
	TraceFlow(ctx context.Context, root string) ([]string, error)
}

// KYCService manages per-party classification tags.
type KYCService interface {
	SetTag(ctx context.Context, caller, party, tag string) error
	GetTag(ctx context.Context, party string) (string, error)
}

// AuthService defines operator authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for operator registration.
type RegisterRequest struct {
	Username string
	Password string
	CanWrite bool
}

// RegisterResponse holds the registration result shown once.
type RegisterResponse struct {
	OperatorID uuid.UUID
	AccessKey  string
	SecretKey  string // Plaintext, shown only at registration
}

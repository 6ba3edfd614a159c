package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"flow-ledger/internal/core/domain"
	"flow-ledger/internal/core/ports"
	"flow-ledger/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc      *AuthServiceImpl
	opRepo   *mocks.MockOperatorRepository
	hashSvc  *mocks.MockHashService
	encSvc   *mocks.MockEncryptionService
	tokenSvc *mocks.MockTokenService
	ctrl     *gomock.Controller
}

func setupAuthService(t *testing.T, writers []string) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		opRepo:   mocks.NewMockOperatorRepository(ctrl),
		hashSvc:  mocks.NewMockHashService(ctrl),
		encSvc:   mocks.NewMockEncryptionService(ctrl),
		tokenSvc: mocks.NewMockTokenService(ctrl),
		ctrl:     ctrl,
	}
	d.svc = NewAuthService(d.opRepo, d.hashSvc, d.encSvc, d.tokenSvc, writers)
	return d
}

// ==================== Register Tests ====================

func TestAuthService_Register_Success(t *testing.T) {
	d := setupAuthService(t, []string{"auditor"})
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.opRepo.EXPECT().GetByUsername(ctx, "auditor").Return(nil, nil)
	d.hashSvc.EXPECT().Hash("s3cret").Return("argon2_hash", nil)
	d.encSvc.EXPECT().Encrypt(gomock.Any()).Return("enc_secret", nil)

	var created *domain.Operator
	d.opRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, op *domain.Operator) error {
			created = op
			return nil
		})

	resp, err := d.svc.Register(ctx, ports.RegisterRequest{Username: "auditor", Password: "s3cret"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Len(t, resp.AccessKey, 64)
	assert.Len(t, resp.SecretKey, 64)

	require.NotNil(t, created)
	assert.Equal(t, "auditor", created.Username)
	assert.Equal(t, "argon2_hash", created.PasswordHash)
	assert.Equal(t, "enc_secret", created.SecretKeyEnc)
	assert.True(t, created.CanWrite)
	assert.Equal(t, domain.OperatorStatusActive, created.Status)
}

func TestAuthService_Register_ReadOnlyByDefault(t *testing.T) {
	d := setupAuthService(t, []string{"auditor"})
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.opRepo.EXPECT().GetByUsername(ctx, "viewer").Return(nil, nil)
	d.hashSvc.EXPECT().Hash("pw").Return("h", nil)
	d.encSvc.EXPECT().Encrypt(gomock.Any()).Return("enc", nil)

	var created *domain.Operator
	d.opRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, op *domain.Operator) error {
			created = op
			return nil
		})

	_, err := d.svc.Register(ctx, ports.RegisterRequest{Username: "viewer", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.False(t, created.CanWrite)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	d := setupAuthService(t, nil)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.opRepo.EXPECT().GetByUsername(ctx, "auditor").Return(&domain.Operator{Username: "auditor"}, nil)

	resp, err := d.svc.Register(ctx, ports.RegisterRequest{Username: "auditor", Password: "pw"})
	assert.Nil(t, resp)
	require.Error(t, err)
	assertAppError(t, err, "AUTH_002")
}

// ==================== Login Tests ====================

func TestAuthService_Login_Success(t *testing.T) {
	d := setupAuthService(t, nil)
	defer d.ctrl.Finish()

	ctx := context.Background()
	opID := uuid.New()
	op := &domain.Operator{
		ID:           opID,
		Username:     "auditor",
		PasswordHash: "argon2_hash",
		AccessKey:    "ak_123",
		Status:       domain.OperatorStatusActive,
	}
	expiry := time.Now().Add(time.Hour)

	d.opRepo.EXPECT().GetByUsername(ctx, "auditor").Return(op, nil)
	d.hashSvc.EXPECT().Verify("s3cret", "argon2_hash").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(opID, "ak_123").Return("jwt_token", expiry, nil)

	token, exp, err := d.svc.Login(ctx, "auditor", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "jwt_token", token)
	assert.Equal(t, expiry, exp)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	d := setupAuthService(t, nil)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.opRepo.EXPECT().GetByUsername(ctx, "ghost").Return(nil, nil)

	_, _, err := d.svc.Login(ctx, "ghost", "pw")
	require.Error(t, err)
	assertAppError(t, err, "AUTH_001")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t, nil)
	defer d.ctrl.Finish()

	ctx := context.Background()
	op := &domain.Operator{
		Username:     "auditor",
		PasswordHash: "argon2_hash",
		Status:       domain.OperatorStatusActive,
	}
	d.opRepo.EXPECT().GetByUsername(ctx, "auditor").Return(op, nil)
	d.hashSvc.EXPECT().Verify("wrong", "argon2_hash").Return(false, nil)

	_, _, err := d.svc.Login(ctx, "auditor", "wrong")
	require.Error(t, err)
	assertAppError(t, err, "AUTH_001")
}

func TestAuthService_Login_SuspendedOperator(t *testing.T) {
	d := setupAuthService(t, nil)
	defer d.ctrl.Finish()

	ctx := context.Background()
	op := &domain.Operator{
		Username:     "auditor",
		PasswordHash: "argon2_hash",
		Status:       domain.OperatorStatusSuspended,
	}
	d.opRepo.EXPECT().GetByUsername(ctx, "auditor").Return(op, nil)
	d.hashSvc.EXPECT().Verify("s3cret", "argon2_hash").Return(true, nil)

	_, _, err := d.svc.Login(ctx, "auditor", "s3cret")
	require.Error(t, err)
	assertAppError(t, err, "AUTH_004")
}

func TestAuthService_Login_RepoFailure(t *testing.T) {
	d := setupAuthService(t, nil)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.opRepo.EXPECT().GetByUsername(ctx, "auditor").Return(nil, errors.New("db down"))

	_, _, err := d.svc.Login(ctx, "auditor", "pw")
	require.Error(t, err)
	assertAppError(t, err, "SYS_001")
}

// ==================== Authorizer Tests ====================

func TestOperatorAuthorizer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	opRepo := mocks.NewMockOperatorRepository(ctrl)
	authz := NewOperatorAuthorizer(opRepo, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name string
		op   *domain.Operator
		err  error
		want bool
	}{
		{
			name: "active writer",
			op:   &domain.Operator{Username: "auditor", CanWrite: true, Status: domain.OperatorStatusActive},
			want: true,
		},
		{
			name: "active reader",
			op:   &domain.Operator{Username: "viewer", CanWrite: false, Status: domain.OperatorStatusActive},
			want: false,
		},
		{
			name: "suspended writer",
			op:   &domain.Operator{Username: "auditor", CanWrite: true, Status: domain.OperatorStatusSuspended},
			want: false,
		},
		{
			name: "unknown caller",
			op:   nil,
			want: false,
		},
		{
			name: "lookup failure",
			err:  errors.New("db down"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opRepo.EXPECT().GetByUsername(ctx, gomock.Any()).Return(tt.op, tt.err)
			assert.Equal(t, tt.want, authz.IsAuthorized(ctx, "caller"))
		})
	}
}

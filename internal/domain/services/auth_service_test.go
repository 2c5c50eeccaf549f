package services

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"vdp-support-service/internal/infrastructure/config"
	"vdp-support-service/pkg/utils"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	return db, mock
}

var adminColumns = []string{"id", "created_at", "updated_at", "username", "password", "email", "role", "status"}

func TestStaticAuthenticator(t *testing.T) {
	auth := NewStaticAuthenticator(config.ParseCredentials("ops:secret,viewer:p:w"))

	identity, err := auth.Authenticate(context.Background(), "ops", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ops", identity.Username)
	assert.Equal(t, RoleAdmin, identity.Role)

	identity, err = auth.Authenticate(context.Background(), "viewer", "p:w")
	require.NoError(t, err)
	assert.Equal(t, "static", identity.Source)

	_, err = auth.Authenticate(context.Background(), "ops", "SECRET")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Authenticate(context.Background(), "nobody", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDBAuthenticator(t *testing.T) {
	db, mock := newMockDB(t)
	hash, err := utils.HashPasswordWithCost("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM .admins. WHERE username = \\?").
		WillReturnRows(sqlmock.NewRows(adminColumns).AddRow(7, now, now, "root", hash, "", "admin", "active"))
	mock.ExpectQuery("SELECT \\* FROM .admins. WHERE username = \\?").
		WillReturnRows(sqlmock.NewRows(adminColumns).AddRow(7, now, now, "root", hash, "", "admin", "active"))
	mock.ExpectQuery("SELECT \\* FROM .admins. WHERE username = \\?").
		WillReturnRows(sqlmock.NewRows(adminColumns).AddRow(8, now, now, "locked", hash, "", "admin", "locked"))
	mock.ExpectQuery("SELECT \\* FROM .admins. WHERE username = \\?").
		WillReturnRows(sqlmock.NewRows(adminColumns))

	auth := NewDBAuthenticator(NewAdminService(db))

	identity, err := auth.Authenticate(context.Background(), "root", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), identity.ID)
	assert.Equal(t, "database", identity.Source)

	_, err = auth.Authenticate(context.Background(), "root", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Authenticate(context.Background(), "locked", "s3cret")
	assert.ErrorIs(t, err, ErrAdminDisabled)

	_, err = auth.Authenticate(context.Background(), "ghost", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, mock.ExpectationsWereMet())
}

type failingAuthenticator struct{ err error }

func (f failingAuthenticator) Authenticate(ctx context.Context, username, password string) (*AdminIdentity, error) {
	return nil, f.err
}

func TestChainAuthenticator(t *testing.T) {
	static := NewStaticAuthenticator(map[string]string{"ops": "secret"})

	chain := ChainAuthenticator{failingAuthenticator{err: errors.New("db down")}, static}
	identity, err := chain.Authenticate(context.Background(), "ops", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ops", identity.Username)

	_, err = chain.Authenticate(context.Background(), "ops", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	chain = ChainAuthenticator{failingAuthenticator{err: ErrAdminDisabled}, static}
	_, err = chain.Authenticate(context.Background(), "x", "y")
	assert.ErrorIs(t, err, ErrAdminDisabled)

	_, err = ChainAuthenticator{}.Authenticate(context.Background(), "ops", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM .admins.").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM .admins. WHERE username = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO .admins.").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	created, err := NewAdminService(db).EnsureDefaultAdmin(context.Background(), "changeme")
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDefaultAdmin_SkipsWhenAdminsExist(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM .admins.").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))

	created, err := NewAdminService(db).EnsureDefaultAdmin(context.Background(), "changeme")
	require.NoError(t, err)
	assert.False(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJWTService_LoginAndExtract(t *testing.T) {
	cfg := &config.Config{JWTSecretKey: "test-secret", JWTExpiry: time.Hour}
	svc := NewJWTService(cfg, NewStaticAuthenticator(map[string]string{"ops": "secret"}))

	result, err := svc.Login(context.Background(), "ops", "secret")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, result.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, 5*time.Second)

	claims, err := svc.ExtractClaims(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = svc.Login(context.Background(), "ops", "bad")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	other := NewJWTService(&config.Config{JWTSecretKey: "another"}, nil)
	_, err = other.ExtractClaims(result.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ExtractClaims("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService(&config.Config{JWTSecretKey: "k", JWTExpiry: time.Nanosecond}, nil)
	token, _, err := svc.GenerateToken(&AdminIdentity{Username: "ops", Role: RoleAdmin})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = svc.ExtractClaims(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

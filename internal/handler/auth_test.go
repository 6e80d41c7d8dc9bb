package handler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tracewell/venuetrace/internal/session"
	"github.com/tracewell/venuetrace/internal/utils"
)

const signupBody = `{"user":"alice_01","pass":"Abcdef12","email":"a@b.com","given_name":"Alice","family_name":"Lee","type":"user"}`

func userRows(passwordHash string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "username", "email", "given_name", "family_name", "password_hash", "role", "created_at", "updated_at",
	}).AddRow(1, "alice_01", "a@b.com", "Alice", "Lee", passwordHash, "user", now, now)
}

func TestSignupCreatesUser(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectExec("INSERT INTO users").
		WithArgs("alice_01", "a@b.com", "Alice", "Lee", sqlmock.AnyArg(), "user").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := env.do(http.MethodPost, "/users/signup", signupBody)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestSignupDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectExec("INSERT INTO users").
		WithArgs("alice_01", "a@b.com", "Alice", "Lee", sqlmock.AnyArg(), "user").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice_01' for key 'users.username'"})

	rec := env.do(http.MethodPost, "/users/signup", signupBody)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username already exists")
}

func TestSignupDuplicateUsernameContainingEmail(t *testing.T) {
	env := newTestEnv(t)

	// The duplicate value itself mentions "email"; only the violated index
	// name after "for key" may drive the conflict message.
	body := `{"user":"email_fan","pass":"Abcdef12","email":"fan@b.com","given_name":"Alice","family_name":"Lee","type":"user"}`
	env.mock.ExpectExec("INSERT INTO users").
		WithArgs("email_fan", "fan@b.com", "Alice", "Lee", sqlmock.AnyArg(), "user").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'email_fan' for key 'users.username'"})

	rec := env.do(http.MethodPost, "/users/signup", body)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username already exists")
	assert.NotContains(t, rec.Body.String(), "Email already exists")
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectExec("INSERT INTO users").
		WithArgs("alice_01", "a@b.com", "Alice", "Lee", sqlmock.AnyArg(), "user").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.com' for key 'users.email'"})

	rec := env.do(http.MethodPost, "/users/signup", signupBody)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already exists")
}

func TestSignupRejectsUnexpectedField(t *testing.T) {
	env := newTestEnv(t)

	// Valid fields plus one unknown key: the gate must reject before any
	// store access (no expectations are registered on the mock).
	body := `{"user":"alice_01","pass":"Abcdef12","email":"a@b.com","given_name":"Alice","family_name":"Lee","type":"user","role":"admin"}`
	rec := env.do(http.MethodPost, "/users/signup", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unexpected field: role")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestSignupValidationErrorsAreComplete(t *testing.T) {
	env := newTestEnv(t)

	body := `{"user":"alice_01","pass":"short","email":"nope","given_name":"Alice","family_name":"Lee","type":"user"}`
	rec := env.do(http.MethodPost, "/users/signup", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "pass", resp.Errors[0].Field)
	assert.Equal(t, "email", resp.Errors[1].Field)
}

func TestLoginSuccessSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)
	hash, err := utils.HashPassword("Abcdef12", bcrypt.MinCost)
	require.NoError(t, err)
	env.mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("alice_01").
		WillReturnRows(userRows(hash))

	rec := env.do(http.MethodPost, "/users/login", `{"user":"alice_01","pass":"Abcdef12"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice_01", resp["username"])
	assert.Equal(t, "user", resp["user_type"])

	var ck *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			ck = c
		}
	}
	require.NotNil(t, ck, "login must set the session cookie")
	assert.NotEmpty(t, ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)

	// The cookie resolves to a snapshot without the password hash.
	snap, err := env.sessions.Get(context.Background(), ck.Value)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "alice_01", snap.Username)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestLoginGenericFailureMessages(t *testing.T) {
	env := newTestEnv(t)

	// Unknown user and wrong password must be indistinguishable.
	env.mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("alice_01").
		WillReturnError(sql.ErrNoRows)
	recUnknown := env.do(http.MethodPost, "/users/login", `{"user":"alice_01","pass":"Abcdef12"}`)

	hash, err := utils.HashPassword("Abcdef12", bcrypt.MinCost)
	require.NoError(t, err)
	env.mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("alice_01").
		WillReturnRows(userRows(hash))
	recWrong := env.do(http.MethodPost, "/users/login", `{"user":"alice_01","pass":"Wrongpass1"}`)

	require.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	require.Equal(t, http.StatusUnauthorized, recWrong.Code)
	assert.JSONEq(t, recUnknown.Body.String(), recWrong.Body.String())
}

func TestLoginMigratesLegacyHash(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("alice_01").
		WillReturnRows(userRows(utils.LegacyHash("Abcdef12")))
	env.mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(sqlmock.AnyArg(), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := env.do(http.MethodPost, "/users/login", `{"user":"alice_01","pass":"Abcdef12"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	// The rewrite happened exactly once, with the login still succeeding.
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestLoginSucceedsWhenMigrationWriteFails(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("alice_01").
		WillReturnRows(userRows(utils.LegacyHash("Abcdef12")))
	env.mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(sqlmock.AnyArg(), uint64(1)).
		WillReturnError(errors.New("connection lost"))

	rec := env.do(http.MethodPost, "/users/login", `{"user":"alice_01","pass":"Abcdef12"}`)

	assert.Equal(t, http.StatusOK, rec.Code, "migration failure must not block login")
}

func TestLoginLegacyMismatchDoesNotMigrate(t *testing.T) {
	env := newTestEnv(t)
	env.mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("alice_01").
		WillReturnRows(userRows(utils.LegacyHash("Abcdef12")))

	rec := env.do(http.MethodPost, "/users/login", `{"user":"alice_01","pass":"Wrongpass1"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, env.mock.ExpectationsWereMet(), "no rewrite on mismatch")
}

func TestLogoutDestroysSessionAndClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	ck := env.sessionCookie(t, aliceSnapshot())

	rec := env.do(http.MethodPost, "/users/logout", "", ck)

	require.Equal(t, http.StatusOK, rec.Code)

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)

	snap, err := env.sessions.Get(context.Background(), ck.Value)
	require.NoError(t, err)
	assert.Nil(t, snap, "session must be destroyed server-side")
}

func TestLogoutWithoutSessionStillSucceeds(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/users/logout", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHeaderReflectsSessionState(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/header", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "out", rec.Body.String())

	ck := env.sessionCookie(t, aliceSnapshot())
	rec = env.do(http.MethodGet, "/header", "", ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "in", rec.Body.String())
}

func TestUsernameAndEmailEndpoints(t *testing.T) {
	env := newTestEnv(t)
	ck := env.sessionCookie(t, aliceSnapshot())

	rec := env.do(http.MethodGet, "/username", "", ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice_01", rec.Body.String())

	rec = env.do(http.MethodGet, "/email", "", ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@b.com", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/username", "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/email", "").Code)
}

func TestExpiredSessionIsRejected(t *testing.T) {
	env := newTestEnv(t)

	store := session.NewMemoryStore()
	require.NoError(t, store.Create(context.Background(), "stale", aliceSnapshot(), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	// Unknown/expired cookie values behave identically: 401.
	ck := &http.Cookie{Name: session.CookieName, Value: "stale"}
	rec := env.do(http.MethodGet, "/username", "", ck)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

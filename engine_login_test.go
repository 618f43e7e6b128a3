package authcore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func registerTestAccount(t *testing.T, engine *Engine) *Account {
	t.Helper()
	res, err := engine.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("seed register failed: %v", err)
	}
	return res.Account
}

func TestLoginSuccess(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	engine, _ := newTestEngine(t, rdb)
	registerTestAccount(t, engine)

	res, err := engine.Login(context.Background(), "alice@example.com", "Str0ngPass", false)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Error("expected both tokens")
	}

	// the login's refresh token supersedes the registration one
	tracked, err := mr.Get("refresh_token:" + res.Account.ID)
	if err != nil || tracked != res.Tokens.RefreshToken {
		t.Errorf("login must replace the tracked refresh token: %v", err)
	}
}

func TestLoginCaseInsensitiveEmail(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	engine, _ := newTestEngine(t, rdb)
	registerTestAccount(t, engine)

	if _, err := engine.Login(context.Background(), "ALICE@Example.com", "Str0ngPass", false); err != nil {
		t.Errorf("email lookup must be case-insensitive: %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	engine, _ := newTestEngine(t, rdb)
	registerTestAccount(t, engine)

	_, errUnknown := engine.Login(context.Background(), "nobody@example.com", "Str0ngPass", false)
	_, errWrongPw := engine.Login(context.Background(), "alice@example.com", "WrongPass1", false)

	if !errors.Is(errUnknown, ErrInvalidCredentials) || !errors.Is(errWrongPw, ErrInvalidCredentials) {
		t.Fatalf("both failures must be ErrInvalidCredentials: %v / %v", errUnknown, errWrongPw)
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("failure messages differ: %q vs %q", errUnknown, errWrongPw)
	}
}

func TestLoginRestrictedAccount(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	engine, accounts := newTestEngine(t, rdb)
	account := registerTestAccount(t, engine)

	for _, status := range []AccountStatus{StatusSuspended, StatusBanned} {
		if err := accounts.SetStatus(context.Background(), account.ID, status); err != nil {
			t.Fatalf("SetStatus failed: %v", err)
		}
		// wrong password too: the status check comes first
		_, err := engine.Login(context.Background(), "alice@example.com", "WrongPass1", false)
		if !errors.Is(err, ErrAccountRestricted) {
			t.Errorf("status %s: expected ErrAccountRestricted, got %v", status, err)
		}
	}
}

func TestLoginRememberMeExtendsRefreshTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	engine, _ := newTestEngine(t, rdb)
	account := registerTestAccount(t, engine)

	if _, err := engine.Login(context.Background(), "alice@example.com", "Str0ngPass", false); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	normalTTL := mr.TTL("refresh_token:" + account.ID)

	if _, err := engine.Login(context.Background(), "alice@example.com", "Str0ngPass", true); err != nil {
		t.Fatalf("remember-me login failed: %v", err)
	}
	rememberTTL := mr.TTL("refresh_token:" + account.ID)

	if normalTTL > 7*24*time.Hour || normalTTL <= 0 {
		t.Errorf("normal TTL = %v, want ~7d", normalTTL)
	}
	if rememberTTL <= normalTTL {
		t.Errorf("remember-me TTL %v must exceed normal TTL %v", rememberTTL, normalTTL)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	engine, _ := newTestEngine(t, rdb)
	account := registerTestAccount(t, engine)

	res, err := engine.Login(context.Background(), "alice@example.com", "Str0ngPass", false)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := engine.Logout(context.Background(), account.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if mr.Exists("refresh_token:" + account.ID) {
		t.Error("refresh token must be deleted on logout")
	}

	// the old refresh token must no longer rotate
	if _, err := engine.Refresh(context.Background(), res.Tokens.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized after logout, got %v", err)
	}

	// logout is idempotent
	if err := engine.Logout(context.Background(), account.ID); err != nil {
		t.Errorf("second logout must succeed: %v", err)
	}
}

func TestLogoutSurvivesRedisOutage(t *testing.T) {
	mr, rdb := newTestRedis(t)
	engine, _ := newTestEngine(t, rdb)
	account := registerTestAccount(t, engine)
	mr.Close()

	if err := engine.Logout(context.Background(), account.ID); err != nil {
		t.Errorf("logout must succeed during store outage: %v", err)
	}
}

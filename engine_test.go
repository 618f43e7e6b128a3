package authcore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	// low cost keeps the suite fast; production stays at 12
	cfg.Password.Cost = 4
	return cfg
}

func newTestEngine(t *testing.T, rdb *redis.Client) (*Engine, *MemoryAccounts) {
	t.Helper()

	accounts := NewMemoryAccounts()
	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithAccounts(accounts).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, accounts
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username:        "alice_w",
		Email:           "alice@example.com",
		Password:        "Str0ngPass",
		ConfirmPassword: "Str0ngPass",
		FirstName:       "Alice",
		LastName:        "Walker",
		AccountType:     AccountTypeFan,
		BirthDate:       time.Date(1990, time.April, 2, 0, 0, 0, 0, time.UTC),
		AgreeToTerms:    true,
	}
}

func TestRegisterSuccess(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	engine, _ := newTestEngine(t, rdb)

	res, err := engine.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if res.Account.ID == "" {
		t.Fatal("expected non-empty account ID")
	}
	if res.Account.Status != StatusActive {
		t.Errorf("status = %q, want %q", res.Account.Status, StatusActive)
	}
	if res.Account.EmailVerified {
		t.Error("new account must have emailVerified=false")
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Error("expected both tokens to be issued")
	}
	if res.Tokens.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("ExpiresIn = %d, want %d", res.Tokens.ExpiresIn, 900)
	}

	// refresh token is tracked for rotation
	if got, err := mr.Get("refresh_token:" + res.Account.ID); err != nil || got != res.Tokens.RefreshToken {
		t.Errorf("tracked refresh token mismatch: %v", err)
	}
}

func TestRegisterNormalizesIdentifiers(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	engine, _ := newTestEngine(t, rdb)

	in := validRegisterInput()
	in.Username = "Alice_W"
	in.Email = "ALICE@Example.COM"

	res, err := engine.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if res.Account.Username != "alice_w" {
		t.Errorf("username = %q, want lowercase", res.Account.Username)
	}
	if res.Account.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercase", res.Account.Email)
	}

	// a differently-cased duplicate must conflict
	dup := validRegisterInput()
	dup.Username = "zeta_user"
	dup.Email = "Alice@example.com"
	if _, err := engine.Register(context.Background(), dup); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterCollectsAllViolations(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	engine, _ := newTestEngine(t, rdb)

	in := RegisterInput{
		Username:        "a!",      // too short and bad charset
		Email:           "nope",    // not an email
		Password:        "weak",    // fails all strength rules
		ConfirmPassword: "different",
		AccountType:     "wizard",
		BirthDate:       time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		AgreeToTerms:    false,
	}

	_, err := engine.Register(context.Background(), in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Violations) < 5 {
		t.Errorf("expected all violations reported, got %d: %v", len(verr.Violations), verr.Violations)
	}
	if HTTPStatus(err) != 422 {
		t.Errorf("HTTPStatus = %d, want 422", HTTPStatus(err))
	}
}

func TestRegisterConflictOrder(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	engine, _ := newTestEngine(t, rdb)

	if _, err := engine.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("seed register failed: %v", err)
	}

	// same email and username: email conflict wins
	if _, err := engine.Register(context.Background(), validRegisterInput()); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	in := validRegisterInput()
	in.Email = "other@example.com"
	if _, err := engine.Register(context.Background(), in); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegisterConcurrentDuplicates(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	engine, _ := newTestEngine(t, rdb)

	const racers = 2
	errs := make([]error, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Register(context.Background(), validRegisterInput())
		}(i)
	}
	wg.Wait()

	// exactly one registration wins, whichever order the store sees them
	var won, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrUsernameTaken):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != 1 || conflicts != racers-1 {
		t.Errorf("got %d successes and %d conflicts, want 1 and %d", won, conflicts, racers-1)
	}
}

func TestRegisterAgeBoundary(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	engine, _ := newTestEngine(t, rdb)

	registrationDay := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return registrationDay }

	// 18th birthday today: allowed
	in := validRegisterInput()
	in.BirthDate = time.Date(2008, time.June, 15, 0, 0, 0, 0, time.UTC)
	if _, err := engine.Register(context.Background(), in); err != nil {
		t.Errorf("18th birthday today should register, got %v", err)
	}

	// 18th birthday tomorrow: rejected
	in = validRegisterInput()
	in.Username = "bob_b"
	in.Email = "bob@example.com"
	in.BirthDate = time.Date(2008, time.June, 16, 0, 0, 0, 0, time.UTC)
	if _, err := engine.Register(context.Background(), in); !errors.Is(err, ErrAgeRestriction) {
		t.Errorf("expected ErrAgeRestriction, got %v", err)
	}
}

func TestRegisterIssuesVerificationToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	accounts := NewMemoryAccounts()
	sender := &captureSender{verification: make(chan string, 1)}
	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithAccounts(accounts).
		WithNotifier(sender).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	res, err := engine.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	engine.Close() // waits for the email dispatch goroutine

	select {
	case token := <-sender.verification:
		got, err := mr.Get("email_verification:" + token)
		if err != nil || got != res.Account.ID {
			t.Errorf("token should map to the account: got %q, err %v", got, err)
		}
	default:
		t.Fatal("expected a verification email to be dispatched")
	}
}

func TestRegisterSurvivesRedisOutage(t *testing.T) {
	mr, rdb := newTestRedis(t)
	engine, _ := newTestEngine(t, rdb)
	mr.Close() // ephemeral store down before registration

	res, err := engine.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("registration must degrade, not fail: %v", err)
	}
	if res.Tokens.AccessToken == "" {
		t.Error("tokens must still be issued while degraded")
	}
}

type captureSender struct {
	verification chan string
	reset        chan string
}

func (s *captureSender) SendVerificationEmail(_ context.Context, _, token string) error {
	if s.verification != nil {
		s.verification <- token
	}
	return nil
}

func (s *captureSender) SendPasswordResetEmail(_ context.Context, _, token string) error {
	if s.reset != nil {
		s.reset <- token
	}
	return nil
}

func TestNilEngine(t *testing.T) {
	var engine *Engine
	if _, err := engine.Login(context.Background(), "a@b.c", "pw", false); !errors.Is(err, ErrEngineNotReady) {
		t.Errorf("expected ErrEngineNotReady, got %v", err)
	}
	if !strings.Contains(ErrEngineNotReady.Error(), "not ready") {
		t.Errorf("unexpected sentinel message: %v", ErrEngineNotReady)
	}
}

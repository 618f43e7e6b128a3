package authcore

import (
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vipconnect/authcore/internal/analytics"
	"github.com/vipconnect/authcore/internal/stores"
	"github.com/vipconnect/authcore/jwt"
	"github.com/vipconnect/authcore/password"
)

// Builder assembles an [Engine] from explicit dependencies. Redis and an
// [AccountProvider] are required; everything else has safe defaults.
type Builder struct {
	config   Config
	redis    redis.UniversalClient
	accounts AccountProvider
	notifier NotificationSender
	sink     AnalyticsSink
	logger   *slog.Logger
}

// New returns a [Builder] preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the ephemeral store client used for refresh tracking
// and single-use tokens.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAccounts sets the credential store.
func (b *Builder) WithAccounts(provider AccountProvider) *Builder {
	b.accounts = provider
	return b
}

// WithNotifier sets the transactional email sender. Defaults to
// [NoOpSender].
func (b *Builder) WithNotifier(sender NotificationSender) *Builder {
	b.notifier = sender
	return b
}

// WithAnalyticsSink sets the destination for usage events. Defaults to
// discarding them.
func (b *Builder) WithAnalyticsSink(sink AnalyticsSink) *Builder {
	b.sink = sink
	return b
}

// WithLogger sets the structured logger. Defaults to [slog.Default].
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and returns a ready [Engine].
func (b *Builder) Build() (*Engine, error) {
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if b.accounts == nil {
		return nil, errors.New("account provider is required")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		Secret:    b.config.JWT.Secret,
		AccessTTL: b.config.JWT.AccessTTL,
		Issuer:    b.config.JWT.Issuer,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(b.config.Password.Cost)
	if err != nil {
		return nil, err
	}

	notifier := b.notifier
	if notifier == nil {
		notifier = NoOpSender{}
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	dispatcher := analytics.NewDispatcher(analytics.Config{
		Enabled:    b.config.Analytics.Enabled,
		BufferSize: b.config.Analytics.BufferSize,
		DropIfFull: b.config.Analytics.DropIfFull,
	}, b.sink)

	return &Engine{
		config:       b.config,
		accounts:     b.accounts,
		refreshStore: stores.NewRefreshTokenStore(b.redis),
		tokenStore:   stores.NewOneTimeTokenStore(b.redis),
		jwtManager:   jwtManager,
		hasher:       hasher,
		notifier:     notifier,
		analytics:    dispatcher,
		logger:       logger,
		now:          time.Now,
	}, nil
}

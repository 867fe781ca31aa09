package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cmdbus "campuspulse-backend/application/commands/bus"
	cmdhandlers "campuspulse-backend/application/commands/handlers"
	"campuspulse-backend/application/ports"
	qrybus "campuspulse-backend/application/queries/bus"
	qryhandlers "campuspulse-backend/application/queries/handlers"
	"campuspulse-backend/application/services"
	domainconfig "campuspulse-backend/domain/config"
	"campuspulse-backend/infrastructure/config"
	"campuspulse-backend/infrastructure/persistence/breaker"
	dynamostore "campuspulse-backend/infrastructure/persistence/dynamodb"
	memorystore "campuspulse-backend/infrastructure/persistence/memory"
	supabasestore "campuspulse-backend/infrastructure/persistence/supabase"
	"campuspulse-backend/infrastructure/persistence/traced"
	pkgerrors "campuspulse-backend/pkg/errors"
	"campuspulse-backend/pkg/observability"
	"campuspulse-backend/pkg/utils"
)

// Repositories bundles the four record repositories.
type Repositories struct {
	Posts     ports.PostRepository
	Votes     ports.VoteRepository
	Reactions ports.ReactionRepository
	Replies   ports.ReplyRepository
}

// Container holds the wired application graph.
type Container struct {
	Config       *config.Config
	DomainConfig *domainconfig.DomainConfig
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	Clock        utils.Clock

	Repos     *Repositories
	Sessions  *services.SessionManager
	Scheduler *services.RefreshScheduler

	CommandBus *cmdbus.CommandBus
	QueryBus   *qrybus.QueryBus

	CreatePostHandler  *cmdhandlers.CreatePostHandler
	CreateReplyHandler *cmdhandlers.CreateReplyHandler

	ErrorHandler    *pkgerrors.ErrorHandler
	TracingShutdown func(context.Context) error
}

// ProvideLogger builds the process logger.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}

// ProvideClock returns the production clock.
func ProvideClock() utils.Clock {
	return utils.SystemClock{}
}

// ProvideMetrics builds the Prometheus collectors.
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics()
}

// ProvideDomainConfig returns the business rules.
func ProvideDomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig()
}

// ProvideRepositories selects the storage backend and decorates it.
// Remote backends get circuit breakers; every backend gets tracing and
// store metrics.
func ProvideRepositories(
	ctx context.Context,
	cfg *config.Config,
	clock utils.Clock,
	logger *zap.Logger,
	metrics *observability.Metrics,
) (*Repositories, error) {
	var repos *Repositories

	switch cfg.StorageBackend {
	case config.BackendMemory:
		repos = &Repositories{
			Posts:     memorystore.NewPostStore(clock),
			Votes:     memorystore.NewVoteStore(),
			Reactions: memorystore.NewReactionStore(),
			Replies:   memorystore.NewReplyStore(clock),
		}

	case config.BackendSupabase:
		client, err := supabasestore.NewClient(cfg.SupabaseURL, cfg.SupabaseAPIKey)
		if err != nil {
			return nil, err
		}
		repos = &Repositories{
			Posts:     breaker.NewPostRepository(supabasestore.NewPostStore(client), logger),
			Votes:     breaker.NewVoteRepository(supabasestore.NewVoteStore(client), logger),
			Reactions: breaker.NewReactionRepository(supabasestore.NewReactionStore(client), logger),
			Replies:   breaker.NewReplyRepository(supabasestore.NewReplyStore(client), logger),
		}

	case config.BackendDynamoDB:
		client, err := dynamostore.NewClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		repos = &Repositories{
			Posts:     breaker.NewPostRepository(dynamostore.NewPostStore(client, cfg.DynamoDBTable, clock, logger), logger),
			Votes:     breaker.NewVoteRepository(dynamostore.NewVoteStore(client, cfg.DynamoDBTable, logger), logger),
			Reactions: breaker.NewReactionRepository(dynamostore.NewReactionStore(client, cfg.DynamoDBTable, logger), logger),
			Replies:   breaker.NewReplyRepository(dynamostore.NewReplyStore(client, cfg.DynamoDBTable, clock, logger), logger),
		}

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	return &Repositories{
		Posts:     traced.NewPostRepository(repos.Posts, metrics),
		Votes:     traced.NewVoteRepository(repos.Votes, metrics),
		Reactions: traced.NewReactionRepository(repos.Reactions, metrics),
		Replies:   traced.NewReplyRepository(repos.Replies, metrics),
	}, nil
}

// ProvideSessionManager builds the per-user session graph.
func ProvideSessionManager(
	repos *Repositories,
	domainCfg *domainconfig.DomainConfig,
	clock utils.Clock,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *services.SessionManager {
	aggregator := services.NewAggregator(logger)

	factory := func(userID string) *services.Session {
		store := services.NewEngagementStore()
		coordinator := services.NewMutationCoordinator(
			userID, store,
			repos.Posts, repos.Votes, repos.Reactions, repos.Replies,
			aggregator, domainCfg, logger, metrics,
		)
		feed := services.NewFeedService(
			userID,
			repos.Posts, repos.Votes, repos.Reactions, repos.Replies,
			store, coordinator.OutstandingKeys,
			aggregator, domainCfg, logger, metrics, clock,
		)
		notifications := services.NewNotificationService(userID, repos.Posts, repos.Replies, domainCfg, logger)

		return &services.Session{
			UserID:        userID,
			Store:         store,
			Coordinator:   coordinator,
			Feed:          feed,
			Notifications: notifications,
		}
	}

	return services.NewSessionManager(factory, domainCfg.SessionIdleTimeout, clock, logger, metrics)
}

// ProvideScheduler builds the refresh scheduler over the session
// manager.
func ProvideScheduler(
	sessions *services.SessionManager,
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *services.RefreshScheduler {
	return services.NewRefreshScheduler(
		sessions,
		cfg.EngagementRefreshInterval,
		cfg.NotificationRefreshInterval,
		logger,
		metrics,
	)
}

// ProvideBuses builds the command and query buses with every handler
// registered.
func ProvideBuses(
	repos *Repositories,
	sessions *services.SessionManager,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) (*cmdbus.CommandBus, *qrybus.QueryBus, *cmdhandlers.CreatePostHandler, *cmdhandlers.CreateReplyHandler, error) {
	createPost := cmdhandlers.NewCreatePostHandler(repos.Posts, domainCfg, logger)
	createReply := cmdhandlers.NewCreateReplyHandler(repos.Posts, repos.Replies, domainCfg, logger)
	markRead := cmdhandlers.NewMarkNotificationReadHandler(sessions, logger)

	getFeed := qryhandlers.NewGetFeedHandler(sessions, logger)
	getPost := qryhandlers.NewGetPostHandler(sessions, logger)
	getNotifications := qryhandlers.NewGetNotificationsHandler(sessions, logger)

	commandBus := cmdbus.NewCommandBus()
	queryBus := qrybus.NewQueryBus()

	logging := cmdbus.LoggingMiddleware(logger)

	if err := registerCommands(commandBus, logging, createPost, createReply, markRead); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := registerQueries(queryBus, logger, getFeed, getPost, getNotifications); err != nil {
		return nil, nil, nil, nil, err
	}

	return commandBus, queryBus, createPost, createReply, nil
}

// ProvideErrorHandler builds the HTTP error responder.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideTracing installs the trace provider and returns its shutdown
// function.
func ProvideTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	return observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.EnableTracing,
		ServiceName: "campuspulse-backend",
		Endpoint:    cfg.OTLPEndpoint,
		SampleRate:  cfg.TraceSample,
	})
}

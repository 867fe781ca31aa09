package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"campuspulse-backend/application/commands"
	cmdbus "campuspulse-backend/application/commands/bus"
	cmdhandlers "campuspulse-backend/application/commands/handlers"
	"campuspulse-backend/application/queries"
	qrybus "campuspulse-backend/application/queries/bus"
	qryhandlers "campuspulse-backend/application/queries/handlers"
)

// registerCommands wires the typed command handlers into the bus
// behind type-asserting adapters.
func registerCommands(
	bus *cmdbus.CommandBus,
	logging cmdbus.Middleware,
	createPost *cmdhandlers.CreatePostHandler,
	createReply *cmdhandlers.CreateReplyHandler,
	markRead *cmdhandlers.MarkNotificationReadHandler,
) error {
	createPostAdapter := cmdbus.Chain(cmdbus.CommandHandlerFunc(func(ctx context.Context, cmd cmdbus.Command) error {
		c, ok := cmd.(commands.CreatePostCommand)
		if !ok {
			return fmt.Errorf("unexpected command type %T", cmd)
		}
		_, err := createPost.Handle(ctx, c)
		return err
	}), logging)

	createReplyAdapter := cmdbus.Chain(cmdbus.CommandHandlerFunc(func(ctx context.Context, cmd cmdbus.Command) error {
		c, ok := cmd.(commands.CreateReplyCommand)
		if !ok {
			return fmt.Errorf("unexpected command type %T", cmd)
		}
		_, err := createReply.Handle(ctx, c)
		return err
	}), logging)

	markReadAdapter := cmdbus.Chain(cmdbus.CommandHandlerFunc(func(ctx context.Context, cmd cmdbus.Command) error {
		c, ok := cmd.(commands.MarkNotificationReadCommand)
		if !ok {
			return fmt.Errorf("unexpected command type %T", cmd)
		}
		return markRead.Handle(ctx, c)
	}), logging)

	if err := bus.Register(commands.CreatePostCommand{}, createPostAdapter); err != nil {
		return err
	}
	if err := bus.Register(commands.CreateReplyCommand{}, createReplyAdapter); err != nil {
		return err
	}
	return bus.Register(commands.MarkNotificationReadCommand{}, markReadAdapter)
}

// registerQueries wires the typed query handlers into the bus.
func registerQueries(
	bus *qrybus.QueryBus,
	logger *zap.Logger,
	getFeed *qryhandlers.GetFeedHandler,
	getPost *qryhandlers.GetPostHandler,
	getNotifications *qryhandlers.GetNotificationsHandler,
) error {
	logging := qrybus.LoggingMiddleware(logger)

	feedAdapter := logging(qrybus.QueryHandlerFunc(func(ctx context.Context, q qrybus.Query) (interface{}, error) {
		query, ok := q.(queries.GetFeedQuery)
		if !ok {
			return nil, fmt.Errorf("unexpected query type %T", q)
		}
		return getFeed.Handle(ctx, query)
	}))

	postAdapter := logging(qrybus.QueryHandlerFunc(func(ctx context.Context, q qrybus.Query) (interface{}, error) {
		query, ok := q.(queries.GetPostQuery)
		if !ok {
			return nil, fmt.Errorf("unexpected query type %T", q)
		}
		return getPost.Handle(ctx, query)
	}))

	notificationsAdapter := logging(qrybus.QueryHandlerFunc(func(ctx context.Context, q qrybus.Query) (interface{}, error) {
		query, ok := q.(queries.GetNotificationsQuery)
		if !ok {
			return nil, fmt.Errorf("unexpected query type %T", q)
		}
		return getNotifications.Handle(ctx, query)
	}))

	if err := bus.Register(queries.GetFeedQuery{}, feedAdapter); err != nil {
		return err
	}
	if err := bus.Register(queries.GetPostQuery{}, postAdapter); err != nil {
		return err
	}
	return bus.Register(queries.GetNotificationsQuery{}, notificationsAdapter)
}

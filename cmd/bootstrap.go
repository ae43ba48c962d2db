package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	chatapp "github.com/akhdanrgya/teluhub-client/application/chat"
	notificationapp "github.com/akhdanrgya/teluhub-client/application/notification"
	orderapp "github.com/akhdanrgya/teluhub-client/application/order"
	productapp "github.com/akhdanrgya/teluhub-client/application/product"
	"github.com/akhdanrgya/teluhub-client/application/session"
	uploadapp "github.com/akhdanrgya/teluhub-client/application/upload"
	userapp "github.com/akhdanrgya/teluhub-client/application/user"
	"github.com/akhdanrgya/teluhub-client/cmd/config"
	redisclient "github.com/akhdanrgya/teluhub-client/cmd/redis"
	"github.com/akhdanrgya/teluhub-client/repository/api"
	authRepo "github.com/akhdanrgya/teluhub-client/repository/auth"
	cartRepo "github.com/akhdanrgya/teluhub-client/repository/cart"
	notificationRepo "github.com/akhdanrgya/teluhub-client/repository/notification"
	orderRepo "github.com/akhdanrgya/teluhub-client/repository/order"
	productRepo "github.com/akhdanrgya/teluhub-client/repository/product"
	redisRepo "github.com/akhdanrgya/teluhub-client/repository/redis"
	uploadRepo "github.com/akhdanrgya/teluhub-client/repository/upload"
	userRepo "github.com/akhdanrgya/teluhub-client/repository/user"
	"github.com/akhdanrgya/teluhub-client/thirdparty/rabbitmq"
	"github.com/akhdanrgya/teluhub-client/thirdparty/wsclient"
	"github.com/akhdanrgya/teluhub-client/utils/logger"
	validatorx "github.com/akhdanrgya/teluhub-client/utils/validator"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app is the wired client shared by every command.
type app struct {
	cfg       *config.Config
	redis     *goredis.Client
	store     *session.Store
	ws        *wsclient.Client
	products  productapp.ProductApp
	orders    orderapp.OrderApp
	users     userapp.UserApp
	uploads   uploadapp.UploadApp
	chat      chatapp.ChatApp
	orderRepo orderRepo.OrderRepository
	notifRepo notificationRepo.NotificationRepository
}

var client *app

func bootstrap(ctx context.Context, profile string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration from environment variables
	cfg := config.Load()
	if profile != "" {
		cfg.Profile = profile
	}

	// Initialize global logger
	if err := logger.Init(logger.Options{
		Environment: cfg.Environment,
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		Profile:     cfg.Profile,
	}); err != nil {
		return err
	}
	validatorx.Init()

	// Token storage: Redis when reachable, otherwise the process only
	tokens := redisRepo.NewMemoryRepository(os.Getenv("TELUHUB_TOKEN"))
	rdb, err := redisclient.Connect(ctx, cfg.Redis)
	switch {
	case err == nil:
		tokens = redisRepo.NewRepository(rdb, cfg.Profile)
	case stderrors.Is(err, redisclient.ErrDisabled):
		logger.Debug("redis disabled, session kept in memory")
	default:
		logger.Warn("redis unavailable, session will not persist", zap.String("error", err.Error()))
	}

	// Initialize repositories
	apiClient := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	AuthRepo := authRepo.NewAuthRepository(apiClient)
	CartRepo := cartRepo.NewCartRepository(apiClient)
	ProductRepo := productRepo.NewProductRepository(apiClient)
	OrderRepo := orderRepo.NewOrderRepository(apiClient)
	UserRepo := userRepo.NewUserRepository(apiClient)
	NotificationRepo := notificationRepo.NewNotificationRepository(apiClient)
	UploadRepo := uploadRepo.NewUploadRepository(apiClient)

	// Initialize application layers
	store := session.NewStore(AuthRepo, CartRepo, tokens, cfg.Auth.TokenTTL)
	store.Init(ctx)

	ws := wsclient.NewClient(cfg.WebSocketBaseURL(), wsclient.Options{
		ReconnectAttempts: cfg.WebSocket.ReconnectAttempts,
		ReconnectInterval: cfg.WebSocket.ReconnectInterval,
		HandshakeTimeout:  cfg.WebSocket.HandshakeTimeout,
	})

	client = &app{
		cfg:       cfg,
		redis:     rdb,
		store:     store,
		ws:        ws,
		products:  productapp.NewProductApp(store, ProductRepo),
		orders:    orderapp.NewOrderApp(store, store, OrderRepo, nil),
		users:     userapp.NewUserApp(store, store, UserRepo),
		uploads:   uploadapp.NewUploadApp(store, UploadRepo),
		chat:      chatapp.NewChatApp(store, ws),
		orderRepo: OrderRepo,
		notifRepo: NotificationRepo,
	}

	logger.Debug("client ready",
		zap.String("env", cfg.Environment),
		zap.String("profile", cfg.Profile),
		zap.String("api", cfg.API.BaseURL),
		zap.Bool("authenticated", store.IsAuthenticated()),
	)
	return nil
}

// feed builds the notification feed, relaying pushes when publisher is set.
func (a *app) feed(publisher notificationapp.EventPublisher) *notificationapp.Feed {
	return notificationapp.NewFeed(a.store, a.notifRepo, a.ws, publisher)
}

// checkout builds an order app whose checkouts are announced to publisher.
func (a *app) checkout(publisher orderapp.EventPublisher) orderapp.OrderApp {
	return orderapp.NewOrderApp(a.store, a.store, a.orderRepo, publisher)
}

// relay connects to the event exchange of the configured profile.
func (a *app) relay() (*rabbitmq.Publisher, error) {
	rmq := a.cfg.RabbitMQ
	publisher, err := rabbitmq.NewPublisher(rmq.Host, rmq.Port, rmq.User, rmq.Password, rmq.Exchange, a.cfg.Profile)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	return publisher, nil
}

func shutdown() {
	if client != nil && client.redis != nil {
		_ = client.redis.Close()
	}
	_ = logger.Close()
}

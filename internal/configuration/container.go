package configuration

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/divverma2003/chat-with-me/internal/auth"
	"github.com/divverma2003/chat-with-me/internal/db"
	"github.com/divverma2003/chat-with-me/internal/delivery"
	"github.com/divverma2003/chat-with-me/internal/directory"
	"github.com/divverma2003/chat-with-me/internal/handler"
	"github.com/divverma2003/chat-with-me/internal/hub"
	"github.com/divverma2003/chat-with-me/internal/mail"
	"github.com/divverma2003/chat-with-me/internal/media"
	"github.com/divverma2003/chat-with-me/internal/middleware"
	"github.com/divverma2003/chat-with-me/internal/model"
	"github.com/divverma2003/chat-with-me/internal/repo"
	"github.com/divverma2003/chat-with-me/internal/service"
)

type Container struct {
	Config         Config
	Logger         *zap.Logger
	Hub            *hub.Hub
	AuthService    service.AuthService
	AuthHandler    handler.AuthHandler
	MessageHandler handler.MessageHandler
	MonitorHandler handler.MonitorHandler
	Limiter        *middleware.LimiterStore

	// private - for cleanup
	mongoClient *mongo.Database
}

func BuildContainer() (*Container, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}

	var logger *zap.Logger
	if config.Server.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}

	con, err := db.OpenConnection(config.ChatDatabase.Uri, config.ChatDatabase.Database)
	if err != nil {
		return nil, err
	}

	userMongoRepo := db.NewRepository[model.User](con, config.ChatDatabase.UsersCollection)
	messageMongoRepo := db.NewRepository[model.Message](con, config.ChatDatabase.MessagesCollection)

	userRepo := repo.NewUserRepository(userMongoRepo)
	messageRepo := repo.NewMessageRepository(messageMongoRepo, logger)

	jwtMgr := auth.NewJWTManager(config.Auth.JwtSecret, time.Duration(config.Auth.TokenTTLHours)*time.Hour)

	mediaStore, err := media.NewDiskStore(config.Media.Dir, config.Media.BaseURL)
	if err != nil {
		return nil, err
	}

	var mailer mail.Mailer
	if config.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(config.SMTP.Host, config.SMTP.Port, config.SMTP.Username, config.SMTP.Password, config.SMTP.From)
	} else {
		mailer = &mail.LogMailer{Logger: logger}
	}

	dir := directory.New()
	chatHub := hub.NewHub(dir, config.Server.AllowedOrigins, logger)
	deliveryRouter := delivery.NewRouter(dir, chatHub, logger)

	authService := service.NewAuthService(userRepo, jwtMgr, mediaStore, mailer, config.Server.AppBaseURL, logger)
	chatService := service.NewChatService(userRepo, messageRepo, mediaStore, deliveryRouter, logger)

	limiter := middleware.NewLimiterStore(config.RateLimit.PerMinute, config.RateLimit.Burst, 5*time.Minute)

	cookieSecure := config.Server.Environment != "development"
	authHandler := handler.NewAuthHandler(authService, cookieSecure)
	messageHandler := handler.NewMessageHandler(chatService)
	monitorHandler := handler.NewMonitorHandler(hub.NewMonitorService(chatHub))

	return &Container{
		Config:         *config,
		Logger:         logger,
		Hub:            chatHub,
		AuthService:    authService,
		AuthHandler:    authHandler,
		MessageHandler: messageHandler,
		MonitorHandler: monitorHandler,
		Limiter:        limiter,
		mongoClient:    con,
	}, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	if c.Limiter != nil {
		c.Limiter.Stop()
	}

	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}

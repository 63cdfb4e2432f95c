package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	gormlogger "gorm.io/gorm/logger"

	"github.com/kangsive/ai-chat-bot/internal/config"
	"github.com/kangsive/ai-chat-bot/internal/domain/chat"
	"github.com/kangsive/ai-chat-bot/internal/domain/user"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/auth"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/database"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/database/repository/chatrepo"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/database/repository/userrepo"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/database/transaction"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/inference"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/logger"
	"github.com/kangsive/ai-chat-bot/internal/infrastructure/storage"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/handlers/attachmenthandler"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/handlers/authhandler"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/handlers/chathandler"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/handlers/userhandler"
	authroute "github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/routes/auth"
	v1 "github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/routes/v1"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/routes/v1/attachmentroute"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/routes/v1/chatroute"
	"github.com/kangsive/ai-chat-bot/internal/interfaces/httpserver/routes/v1/userroute"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(database.Config{
		DatabaseURL: cfg.DatabaseURL,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxLifetime: cfg.DBConnMaxLifetime,
		LogLevel:    gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if cfg.AutoMigrate {
		if err := database.Migration(db); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
	}

	files, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	txDB := transaction.NewDatabase(db)
	userRepo := userrepo.NewRepository(txDB)
	chatRepo := chatrepo.NewChatRepository(txDB)
	messageRepo := chatrepo.NewMessageRepository(txDB)
	attachmentRepo := chatrepo.NewAttachmentRepository(txDB)

	resolver := chat.NewAttachmentResolver(files, log)
	streamer := inference.NewClient(cfg, log)
	chatService := chat.NewService(
		chatRepo,
		messageRepo,
		attachmentRepo,
		files,
		resolver,
		streamer,
		txDB,
		cfg.StreamFlushThreshold,
		log,
	)

	tokens := auth.NewJWTManager(cfg)
	userService := user.NewService(userRepo, auth.NewSaltedHasher(), tokens, log)

	authHandler := authhandler.NewAuthHandler(userService, tokens, log)
	chatHandler := chathandler.NewChatHandler(chatService, cfg, log)
	sendHandler := chathandler.NewSendHandler(chatService, cfg.UploadMaxBytes)
	attachmentHandler := attachmenthandler.NewAttachmentHandler(chatService)
	userHandler := userhandler.NewUserHandler(userService)

	v1Route := v1.NewV1Route(
		userroute.NewUserRoute(userHandler),
		chatroute.NewChatRoute(chatHandler, sendHandler),
		attachmentroute.NewAttachmentRoute(attachmentHandler),
	)
	authRoute := authroute.NewAuthRoute(authHandler)

	server := httpserver.New(cfg, log, v1Route, authRoute, tokens, userRepo, db, files)
	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}

	log.Info().Msg("server exited cleanly")
}

package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"chatcore-service/internal/auth"
	"chatcore-service/internal/config"
	"chatcore-service/internal/db"
	"chatcore-service/internal/handlers"
	"chatcore-service/internal/middleware"
	"chatcore-service/internal/observability"
	"chatcore-service/internal/repositories"
	"chatcore-service/internal/telemetry"
	"chatcore-service/internal/ws"
)

func main() {
	cfg := config.Load()

	shutdownTracer, err := telemetry.InitTracer(context.Background(), cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer shutdownTracer(context.Background())

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	publisher := observability.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	observability.SetPublisher(publisher)

	audit := telemetry.NewAuditEmitter(publisher, "audit.chats", "chatcore-service", cfg.Environment)

	userRepo := repositories.NewUserRepo(database)
	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	authenticator := auth.NewAuthenticator(cfg.JWTSecret, userRepo)

	hub := ws.NewHub()
	gateway := ws.NewGateway(hub, authenticator, roomRepo, messageRepo)
	chatHandler := handlers.NewChatHandler(roomRepo, messageRepo, hub, audit)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("chatcore-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(authenticator)

	router.GET("/chats", authMiddleware, chatHandler.ListChats)
	router.POST("/chats", authMiddleware, chatHandler.CreateChatRoom)
	router.GET("/chats/:chat_id/messages", authMiddleware, chatHandler.GetChatMessages)
	router.POST("/chats/:chat_id/messages", authMiddleware, chatHandler.SendMessage)

	router.GET("/ws", gateway.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"net/http"

	_ "scholarchat/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"scholarchat/internal/assistant"
	"scholarchat/internal/auth"
	"scholarchat/internal/cache"
	"scholarchat/internal/config"
	"scholarchat/internal/db"
	"scholarchat/internal/handler"
	"scholarchat/internal/model"
	"scholarchat/internal/notify"
	"scholarchat/internal/otp"
	"scholarchat/internal/repository"
	"scholarchat/internal/router"
	"scholarchat/internal/search"
	"scholarchat/internal/service"
	"scholarchat/internal/session"
)

// @title Scholarship Assistant API
// @version 1.0
// @description Student signup with email OTP verification, profile intake, and a scholarship chat assistant.
// @host localhost:8080
// @BasePath /
// @schemes http
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.Student{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories and stores
	studentRepo := repository.NewStudentRepository(gormDB)
	sessionStore := session.NewRedisStore(cacheClient)
	issuer := otp.NewIssuer(cacheClient)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Initialize external collaborators; a missing credential degrades the
	// feature instead of failing startup.
	sender := notify.NewEmailSender(notify.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		User:      cfg.SMTPUser,
		Password:  cfg.SMTPPass,
		FromEmail: cfg.FromEmail,
	})

	searchClient := search.New(cfg.SearchAPIKey, cfg.SearchEngineID, cfg.SearchTimeout)
	if !searchClient.Enabled() {
		log.Println("search credentials missing, assistant will answer without web results")
	}

	var gatewayModel assistant.Model
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGeminiModel(context.Background(), cfg.GeminiAPIKey, cfg.AssistantModel)
		if err != nil {
			log.Printf("gemini init: %v; assistant disabled", err)
		} else {
			gatewayModel = gemini
		}
	} else {
		log.Println("GEMINI_API_KEY missing, assistant disabled")
	}
	gateway := assistant.New(assistant.ParseMode(cfg.AssistantMode), gatewayModel, searchClient, cfg.ModelTimeout)

	// Initialize services
	signupService := service.NewSignupService(studentRepo, issuer, sender, cfg.OTPDelivery == config.OTPDeliveryEmail)
	chatService := service.NewChatService(studentRepo, sessionStore, gateway)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(signupService, sessionStore, jwtService, cfg.OTPDelivery)
	chatHandler := handler.NewChatHandler(chatService)

	// Register routes
	router.Register(e, cfg, sessionStore, authHandler, chatHandler)

	if cfg.OTPDelivery == config.OTPDeliveryResponse {
		log.Println("OTP_DELIVERY=response: verification codes are returned to the caller, do not use in production")
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

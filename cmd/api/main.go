// cmd/api/main.go
// Main entry point. Bootstraps all components and starts the server.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/amoria-app/amoria-backend/internal/admin"
	"github.com/amoria-app/amoria-backend/internal/auth"
	"github.com/amoria-app/amoria-backend/internal/billing"
	"github.com/amoria-app/amoria-backend/internal/chat"
	"github.com/amoria-app/amoria-backend/internal/common/database"
	"github.com/amoria-app/amoria-backend/internal/config"
	"github.com/amoria-app/amoria-backend/internal/matching"
	"github.com/amoria-app/amoria-backend/internal/moderation"
	"github.com/amoria-app/amoria-backend/internal/notifications"
	"github.com/amoria-app/amoria-backend/internal/profile"
	"github.com/amoria-app/amoria-backend/internal/translation"
	"github.com/amoria-app/amoria-backend/internal/video"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found (%v), using environment variables", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("configuration invalid: ", err)
	}

	// Storage
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()

	redisClient, err := database.NewRedisClientFromURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to connect to Redis: ", err)
	}
	defer redisClient.Close()

	if err := runMigrations(db); err != nil {
		log.Fatal("failed to run migrations: ", err)
	}
	log.Println("database migrations completed")

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Notifications. Wired first because auth, matching, chat, moderation
	// and video all deliver through it.
	var pushService notifications.PushService
	if cfg.EnablePush {
		pushService, err = notifications.NewFCMPushService(rootCtx, cfg.FirebaseCredentials, "")
		if err != nil {
			log.Printf("FCM unavailable (%v), push notifications disabled", err)
			pushService = notifications.NewMockPushService()
		}
	} else {
		pushService = notifications.NewMockPushService()
		log.Println("using mock push service")
	}

	var emailService notifications.EmailService
	switch cfg.EmailProvider {
	case "sendgrid":
		emailService, err = notifications.NewSendGridEmailService(cfg.SendGridAPIKey, cfg.EmailFrom, "Amoria")
		if err != nil {
			log.Fatal("failed to init SendGrid: ", err)
		}
	case "smtp":
		emailService, err = notifications.NewSMTPEmailService(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword,
			cfg.EmailFrom, "Amoria",
		)
		if err != nil {
			log.Fatal("failed to init SMTP: ", err)
		}
	default:
		emailService = notifications.NewMockEmailService()
		log.Println("using mock email service")
	}

	var smsService notifications.SMSService
	switch cfg.SMSProvider {
	case "twilio":
		smsService, err = notifications.NewTwilioSMSService(
			cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber,
		)
		if err != nil {
			log.Fatal("failed to init Twilio: ", err)
		}
	default:
		smsService = notifications.NewMockSMSService()
		log.Println("using mock SMS service")
	}

	notificationsRepo := notifications.NewPostgresRepository(db)
	notificationsService := notifications.NewService(notificationsRepo, pushService, emailService, smsService)
	notificationsHandler := notifications.NewHandler(notificationsService)
	notificationsService.StartMaintenance(rootCtx, 24*time.Hour)

	// Auth
	authRepo := auth.NewPostgresRepository(db)
	authService := auth.NewService(authRepo, redisClient, notificationsService, &auth.Config{
		JWTSecret:          cfg.JWTSecret,
		AccessTokenExpiry:  cfg.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.RefreshTokenExpiry,
		BCryptCost:         cfg.BCryptCost,
		CodeLength:         cfg.VerificationCodeLength,
		CodeExpiry:         cfg.VerificationCodeExpiry,
		MaxVerifyAttempts:  cfg.MaxVerifyAttempts,
	})
	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(authService)

	// Moderation. Wired before profile and matching, which consult it for
	// block checks.
	moderationRepo := moderation.NewPostgresRepository(db)
	moderationService := moderation.NewService(moderationRepo, redisClient, notificationsService, moderation.Config{
		ReportWindow:   cfg.ReportWindow,
		ReportsPerHour: cfg.ReportsPerHour,
	})
	moderationHandler := moderation.NewHandler(moderationService)
	moderationService.StartBanExpiry(rootCtx, time.Minute)

	// Profiles
	var uploadService profile.UploadService
	if cfg.UseS3 {
		uploadService, err = profile.NewS3UploadService(cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			log.Printf("S3 unavailable (%v), falling back to local uploads", err)
			uploadService = profile.NewLocalUploadService(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
		}
	} else {
		uploadService = profile.NewLocalUploadService(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
	}

	profileRepo := profile.NewPostgresRepository(db)
	profileService := profile.NewService(profileRepo, uploadService, moderationService)
	profileHandler := profile.NewHandler(profileService)

	// Billing and entitlements
	billingRepo := billing.NewPostgresRepository(db)
	entitlements := billing.NewEntitlementService(billingRepo, redisClient, cfg.FreeDailyLikes)
	billingService := billing.NewService(billingRepo, entitlements, billing.Config{
		SecretKey:       cfg.StripeSecretKey,
		WebhookSecret:   cfg.StripeWebhookSecret,
		PremiumPriceID:  cfg.StripePremiumPriceID,
		PlatinumPriceID: cfg.StripePlatinumPriceID,
		SuccessURL:      cfg.BillingSuccessURL,
		CancelURL:       cfg.BillingCancelURL,
	})
	billingHandler := billing.NewHandler(billingService)
	if !cfg.BillingEnabled() {
		log.Println("Stripe not configured, checkout disabled")
	}

	// Matching
	matchingRepo := matching.NewPostgresRepository(db)
	matchingService := matching.NewService(matchingRepo, entitlements, notificationsService, moderationService, matching.Config{
		FeedSize:        cfg.DiscoveryFeedSize,
		SwipesPerMinute: cfg.SwipesPerMinute,
	})
	matchingHandler := matching.NewHandler(matchingService)

	limiterStop := make(chan struct{})
	matchingService.StartLimiterCleanup(limiterStop)

	// Translation
	var translator translation.Service
	if cfg.GoogleTranslateAPIKey != "" {
		translator, err = translation.NewGoogleService(rootCtx, cfg.GoogleTranslateAPIKey, redisClient, cfg.TranslationCacheTTL)
		if err != nil {
			log.Fatal("failed to init translation service: ", err)
		}
	} else {
		translator = translation.NoopService{}
		log.Println("translation API key not set, messages pass through untranslated")
	}
	translationHandler := translation.NewHandler(translator)

	// Chat
	hub := chat.NewHub()
	chatRepo := chat.NewPostgresRepository(db)
	chatService := chat.NewService(chatRepo, hub, chatMatchSource{matchingRepo}, notificationsService, translator)
	chatHandler := chat.NewHandler(chatService, hub)
	go hub.Run()

	// Video calls
	videoRepo := video.NewPostgresRepository(db)
	videoIssuer := video.NewTokenIssuer(cfg.VideoAPIKey, cfg.VideoAPISecret, cfg.VideoTokenTTL)
	videoService := video.NewService(videoRepo, videoIssuer, videoMatchSource{matchingRepo}, entitlements, notificationsService)
	videoHandler := video.NewHandler(videoService)

	// Admin back office
	adminRepo := admin.NewPostgresRepository(db)
	adminService := admin.NewService(adminRepo, moderationService, hub)
	adminHandler := admin.NewHandler(adminService)

	// Routes
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/",
				http.FileServer(http.Dir(cfg.LocalUploadDir))))
	}

	auth.RegisterRoutes(router, authHandler, authMiddleware)
	profile.RegisterRoutes(router, profileHandler, authMiddleware)
	matching.RegisterRoutes(router, matchingHandler, authMiddleware)
	chat.RegisterRoutes(router, chatHandler, authMiddleware)
	moderation.RegisterRoutes(router, moderationHandler, authMiddleware)
	billing.RegisterRoutes(router, billingHandler, authMiddleware)
	notifications.RegisterRoutes(router, notificationsHandler, authMiddleware)
	translation.RegisterRoutes(router, translationHandler, authMiddleware)
	video.RegisterRoutes(router, videoHandler, authMiddleware)
	admin.RegisterRoutes(router, adminHandler, authMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server starting on :%s (%s)", cfg.Port, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutdown signal received")

	close(limiterStop)
	cancel()
	hub.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown: ", err)
	}

	log.Println("server exited gracefully")
}

// chatMatchSource adapts the matching repository to the chat package's
// match lookup interface.
type chatMatchSource struct {
	repo matching.Repository
}

func (s chatMatchSource) Lookup(ctx context.Context, matchID int64) (*chat.MatchInfo, error) {
	m, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return &chat.MatchInfo{ID: m.ID, UserA: m.UserLo, UserB: m.UserHi, IsActive: m.IsActive}, nil
}

// videoMatchSource does the same for video calls.
type videoMatchSource struct {
	repo matching.Repository
}

func (s videoMatchSource) Lookup(ctx context.Context, matchID int64) (*video.MatchInfo, error) {
	m, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return &video.MatchInfo{ID: m.ID, UserA: m.UserLo, UserB: m.UserHi, IsActive: m.IsActive}, nil
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

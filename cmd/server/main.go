package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"chorequest/internal/config"
	"chorequest/internal/database"
	"chorequest/internal/handlers"
	"chorequest/internal/repository"
	"chorequest/internal/security"
	"chorequest/internal/service"
	"chorequest/migrations"
)

func main() {
	// Load .env if present; real environments set variables directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := config.Load()

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		// Sessions won't survive a restart without a configured secret.
		log.Println("Warning: JWT_SECRET not set, using an ephemeral secret")
		secret, err := security.GenerateSecureToken(32)
		if err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		jwtSecret = secret
	}

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithType(cfg.DatabaseType, cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(migrations.FS); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	kidRepo := repository.NewKidRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	pointLogRepo := repository.NewPointLogRepository(db)
	streakRepo := repository.NewStreakRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	tokens := security.NewTokenCodec(jwtSecret, cfg.TokenDuration)
	permService := service.NewPermissionService(familyRepo, kidRepo)
	ledgerService := service.NewLedgerService(db, kidRepo, pointLogRepo, permService, cfg.GemRatio)
	streakService := service.NewStreakService(db, streakRepo, ledgerService, permService)
	taskService := service.NewTaskService(db, taskRepo, streakService, ledgerService, permService)
	familyService := service.NewFamilyService(db, familyRepo, kidRepo, userRepo, invitationRepo, emailService, permService)
	rewardService := service.NewRewardService(db, rewardRepo, ledgerService, permService)
	authService := service.NewAuthService(cfg, userRepo, kidRepo, familyService, tokens)

	if _, err := familyService.EnsureDefaultFamily("My Family"); err != nil {
		log.Fatalf("Failed to ensure default family: %v", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	familyHandler := handlers.NewFamilyHandler(familyService, ledgerService)
	kidHandler := handlers.NewKidHandler(familyService, ledgerService, taskService, streakService)
	taskHandler := handlers.NewTaskHandler(taskService)
	streakHandler := handlers.NewStreakHandler(streakService)
	rewardHandler := handlers.NewRewardHandler(rewardService)
	middleware := handlers.NewMiddleware(authService)

	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/kid", authHandler.KidLogin)
	mux.HandleFunc("GET /api/auth/google/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /api/auth/google/callback", authHandler.OAuthCallback)

	// Family routes
	mux.HandleFunc("GET /api/families", middleware.RequireGuardian(familyHandler.ListFamilies))
	mux.HandleFunc("POST /api/families", middleware.RequireGuardian(familyHandler.CreateFamily))
	mux.HandleFunc("POST /api/families/join", middleware.RequireGuardian(familyHandler.JoinFamily))
	mux.HandleFunc("GET /api/families/{id}", middleware.RequireAuth(familyHandler.GetFamily))
	mux.HandleFunc("PUT /api/families/{id}", middleware.RequireGuardian(familyHandler.UpdateFamily))
	mux.HandleFunc("DELETE /api/families/{id}", middleware.RequireGuardian(familyHandler.DeleteFamily))
	mux.HandleFunc("POST /api/families/{id}/invitations", middleware.RequireGuardian(familyHandler.InviteMember))
	mux.HandleFunc("PUT /api/families/{id}/members/{userId}", middleware.RequireGuardian(familyHandler.UpdateMember))
	mux.HandleFunc("DELETE /api/families/{id}/members/{userId}", middleware.RequireGuardian(familyHandler.RemoveMember))
	mux.HandleFunc("GET /api/invitations/{code}", familyHandler.GetInvitation)
	mux.HandleFunc("POST /api/invitations/{code}/accept", middleware.RequireGuardian(familyHandler.AcceptInvitation))

	// Kid routes
	mux.HandleFunc("POST /api/families/{id}/kids", middleware.RequireGuardian(kidHandler.CreateKid))
	mux.HandleFunc("GET /api/kids/{id}", middleware.RequireAuth(kidHandler.GetKid))
	mux.HandleFunc("PUT /api/kids/{id}", middleware.RequireGuardian(kidHandler.UpdateKid))
	mux.HandleFunc("DELETE /api/kids/{id}", middleware.RequireGuardian(kidHandler.DeleteKid))
	mux.HandleFunc("POST /api/kids/{id}/rotate-token", middleware.RequireGuardian(kidHandler.RotateAccessToken))
	mux.HandleFunc("POST /api/kids/{id}/reset-pin", middleware.RequireGuardian(kidHandler.ResetPIN))
	mux.HandleFunc("POST /api/kids/{id}/verify-pin", middleware.RequireAuth(authHandler.VerifyKidPIN))
	mux.HandleFunc("GET /api/kids/{id}/stats", middleware.RequireAuth(kidHandler.GetStats))
	mux.HandleFunc("GET /api/kids/{id}/balance", middleware.RequireAuth(kidHandler.GetBalance))
	mux.HandleFunc("GET /api/kids/{id}/history", middleware.RequireAuth(kidHandler.GetHistory))
	mux.HandleFunc("PUT /api/kids/{id}/points", middleware.RequireGuardian(kidHandler.AdjustPoints))

	// Task routes
	mux.HandleFunc("POST /api/kids/{id}/tasks", middleware.RequireAuth(taskHandler.CreateTask))
	mux.HandleFunc("GET /api/kids/{id}/tasks", middleware.RequireAuth(taskHandler.ListTasks))
	mux.HandleFunc("GET /api/tasks/{id}", middleware.RequireAuth(taskHandler.GetTask))
	mux.HandleFunc("POST /api/tasks/{id}/review", middleware.RequireGuardian(taskHandler.ReviewTask))
	mux.HandleFunc("POST /api/tasks/{id}/complete", middleware.RequireAuth(taskHandler.CompleteTask))
	mux.HandleFunc("POST /api/tasks/{id}/feedback-request", middleware.RequireAuth(taskHandler.RequestFeedback))
	mux.HandleFunc("POST /api/tasks/{id}/comment", middleware.RequireGuardian(taskHandler.AddComment))
	mux.HandleFunc("PUT /api/tasks/{id}/points", middleware.RequireGuardian(taskHandler.SetPointValue))
	mux.HandleFunc("DELETE /api/tasks/{id}", middleware.RequireGuardian(taskHandler.DeleteTask))

	// Streak routes
	mux.HandleFunc("GET /api/kids/{id}/streak", middleware.RequireAuth(streakHandler.GetStreak))
	mux.HandleFunc("POST /api/kids/{id}/milestones/{milestone}/claim", middleware.RequireAuth(streakHandler.ClaimMilestone))

	// Reward routes
	mux.HandleFunc("GET /api/kids/{id}/rewards", middleware.RequireAuth(rewardHandler.ListRewards))
	mux.HandleFunc("POST /api/kids/{id}/rewards", middleware.RequireAuth(rewardHandler.SuggestReward))
	mux.HandleFunc("POST /api/rewards/{id}/review", middleware.RequireGuardian(rewardHandler.ReviewReward))
	mux.HandleFunc("POST /api/rewards/{id}/redeem", middleware.RequireAuth(rewardHandler.RedeemReward))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/vertexhq/vertex-api/internal/config"
	"github.com/vertexhq/vertex-api/internal/db"
	"github.com/vertexhq/vertex-api/internal/handlers"
	"github.com/vertexhq/vertex-api/internal/middleware"
	"github.com/vertexhq/vertex-api/internal/models"
	"github.com/vertexhq/vertex-api/internal/realtime"
	"github.com/vertexhq/vertex-api/internal/services/notify"
	"github.com/vertexhq/vertex-api/internal/services/onboarding"
	"github.com/vertexhq/vertex-api/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.OnboardingDraft{},
		&models.ProfessionalProfile{},
		&models.WorkExperience{},
		&models.Education{},
		&models.ProfileSkill{},
		&models.Notification{},
	); err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Redis not reachable:", err)
	}

	hub := realtime.NewHub()
	go hub.Run()
	go realtime.Subscribe(context.Background(), rdb, hub)

	drafts := storage.NewDraftStore(gdb)
	profiles := storage.NewProfileStore(gdb)
	notifications := storage.NewNotificationStore(gdb)
	uow := storage.NewUnitOfWork(gdb)

	dispatcher := notify.NewDispatcher(notifications, realtime.NewBridge(rdb))
	onboardingSvc := onboarding.NewService(drafts, profiles, uow, dispatcher)

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	onboardingH := handlers.NewOnboardingHandler(onboardingSvc)
	notificationsH := handlers.NewNotificationsHandler(notifications)
	wsH := handlers.NewWSHandler(hub, cfg.JWTSecret)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://127.0.0.1:3000, http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)

	// protected (JWT from cookie)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	onb := protected.Group("/onboarding")
	onb.Post("/save", onboardingH.SaveProgress)
	onb.Get("/resume", onboardingH.Resume)
	onb.Post("/complete", onboardingH.Complete)

	notif := protected.Group("/notifications")
	notif.Get("/", notificationsH.List)
	notif.Get("/unread", notificationsH.ListUnread)
	notif.Get("/unread/count", notificationsH.UnreadCount)
	notif.Put("/:id/read", notificationsH.MarkRead)
	notif.Put("/read-all", notificationsH.MarkAllRead)

	// WebSocket endpoint (auth via token query param)
	app.Get("/ws/notifications", websocket.New(wsH.Serve))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}

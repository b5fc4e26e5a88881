package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/riverlabs/rivergauge/internal/auth"
	"github.com/riverlabs/rivergauge/internal/config"
	"github.com/riverlabs/rivergauge/internal/database"
	"github.com/riverlabs/rivergauge/internal/health"
	"github.com/riverlabs/rivergauge/internal/machines"
	"github.com/riverlabs/rivergauge/internal/models"
	"github.com/riverlabs/rivergauge/internal/readings"
	"github.com/riverlabs/rivergauge/internal/store"
	"github.com/riverlabs/rivergauge/internal/worker"
)

func main() {
	cfg := config.Load()

	if cfg.TokenEncryptionKey != "" {
		if err := models.InitEncryption(cfg.TokenEncryptionKey); err != nil {
			log.Fatalf("Failed to initialize token encryption: %v", err)
		}
	} else {
		log.Println("WARNING: TOKEN_ENCRYPTION_KEY not set. OAuth tokens will be stored unencrypted.")
	}

	var (
		userStore    store.UserStore
		sessionStore store.SessionStore
		machineStore store.MachineStore
		readingStore store.ReadingStore
	)

	if cfg.DatabaseURL != "" {
		db, err := database.Init(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close(db)

		if err := database.RunMigrations(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		if cfg.SeedDevData {
			if err := database.SeedDevData(db); err != nil {
				log.Printf("Failed to seed dev data: %v", err)
			}
		}

		userStore = store.NewGormUserStore(db)
		sessionStore = store.NewGormSessionStore(db)
		machineStore = store.NewGormMachineStore(db)
		readingStore = store.NewGormReadingStore(db)
	} else {
		log.Println("WARNING: DATABASE_URL not set. Using in-memory stores; data will not survive restarts.")
		userStore = store.NewMemoryUserStore()
		sessionStore = store.NewMemorySessionStore()
		machineStore = store.NewMemoryMachineStore()
		readingStore = store.NewMemoryReadingStore()
	}

	auth.InitProviders(cfg)
	svc := auth.NewService(userStore, sessionStore)

	if cfg.RedisURL != "" {
		if err := worker.InitClient(cfg.RedisURL); err != nil {
			log.Fatalf("Failed to initialize task client: %v", err)
		}
		defer worker.CloseClient()

		stopWorker, err := worker.Start(cfg, sessionStore)
		if err != nil {
			log.Fatalf("Failed to start worker: %v", err)
		}
		defer stopWorker()

		stopScheduler, err := worker.StartScheduler(cfg)
		if err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer stopScheduler()

		stopConsumer, err := readings.StartConsumer(cfg.RedisURL, machineStore, readingStore)
		if err != nil {
			log.Fatalf("Failed to start ingest consumer: %v", err)
		}
		defer stopConsumer()
	} else {
		log.Println("WARNING: REDIS_URL not set. Session purge and reading ingest are disabled.")
	}

	router := buildRouter(cfg, svc, machineStore, readingStore)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Block until interrupted, then drain in-flight requests.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}

func buildRouter(cfg *config.Config, svc *auth.Service, machineStore store.MachineStore, readingStore store.ReadingStore) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	cookieStore := cookie.NewStore([]byte(cfg.SessionSecret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		Secure:   cfg.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("rivergauge_session", cookieStore))

	router.LoadHTMLGlob("web/templates/*.html")

	router.GET("/health", gin.WrapF(health.Handler))

	router.GET("/", renderPage("index.html", "Home - River Monitoring"))

	guest := router.Group("/", auth.GuestOnly(svc))
	{
		guest.GET("/login", auth.ShowLogin)
		guest.GET("/signup", auth.ShowSignup)
	}

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/signup", auth.HandleSignup(svc))
		authRoutes.POST("/login", auth.HandleLogin(svc))
		authRoutes.GET("/google", auth.HandleGoogleLogin)
		authRoutes.GET("/google/callback", auth.HandleGoogleCallback(svc))
		authRoutes.POST("/logout", auth.HandleLogout(svc))
	}

	private := router.Group("/", auth.RequireAuth(svc))
	{
		private.GET("/dashboard", renderPage("dashboard.html", "Dashboard - River Monitoring"))
		private.GET("/addmachine", renderPage("add_machine.html", "Add Machine"))
		private.GET("/view_machine", renderPage("view_machine.html", "View Machine"))
		private.GET("/user_detail", auth.HandleUserDetail)

		api := private.Group("/api")
		{
			api.POST("/machines", machines.CreateMachineHandler(machineStore))
			api.GET("/machines", machines.ListMachinesHandler(machineStore))
			api.GET("/machines/:code", machines.GetMachineHandler(machineStore))
			api.DELETE("/machines/:code", machines.DeleteMachineHandler(machineStore))
			api.GET("/machines/:code/readings", readings.GetSeriesHandler(machineStore, readingStore))
		}
	}

	return router
}

// renderPage renders a template with the current user (if any) and the
// queued flash messages.
func renderPage(template, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, template, gin.H{
			"title":   title,
			"user":    auth.CurrentUser(c),
			"flashes": auth.ConsumeFlashes(c),
		})
	}
}

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

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"adminhub/internal/admins"
	"adminhub/internal/articles"
	"adminhub/internal/auth"
	"adminhub/internal/clients"
	"adminhub/internal/realtime"
	"adminhub/pkg/database"
	"adminhub/pkg/models"
	"adminhub/pkg/utils"
)

func main() {
	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	srvCfg := utils.LoadServerConfig()
	if err := os.MkdirAll(srvCfg.UploadDir, 0o755); err != nil {
		log.Fatalf("create upload dir: %v", err)
	}

	router := gin.Default()

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}

	hub := realtime.NewHub()
	router.GET("/hubs/notifications", realtime.WSHandler(hub, tokenSvc))
	router.GET("/hubs/notifications/poll", realtime.PollHandler(hub, tokenSvc))

	// image refs stored as /uploads/<name> resolve here
	router.Static("/uploads", srvCfg.UploadDir)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":        "not_ready",
				"db_error":      err.Error(),
				"ws_clients":    stats.WSClients,
				"poll_sessions": stats.PollSessions,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":        "ready",
			"db":            "ok",
			"ws_clients":    stats.WSClients,
			"poll_sessions": stats.PollSessions,
		})
	})

	api := router.Group("/api")

	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(api.Group("/Auth"))

	// Articles: reads public, mutations protected
	articleRepo := articles.NewRepo(db)
	articleHandler := articles.NewHandler(articleRepo, hub, srvCfg.UploadDir)
	articleHandler.RegisterRoutes(api.Group("/Articles"))
	protectedArticles := api.Group("/Articles")
	protectedArticles.Use(auth.AuthMiddleware(tokenSvc))
	articleHandler.RegisterProtectedRoutes(protectedArticles)

	protected := api.Group("")
	protected.Use(auth.AuthMiddleware(tokenSvc))

	clientRepo := clients.NewRepo(db)
	clientHandler := clients.NewHandler(clientRepo, hub)
	clientHandler.RegisterRoutes(protected.Group("/Clients"))

	adminRepo := admins.NewRepo(db)
	adminHandler := admins.NewHandler(adminRepo)
	adminHandler.RegisterRoutes(protected.Group("/Admins"))

	if err := bootstrapAdmin(adminRepo); err != nil {
		log.Fatalf("bootstrap admin failed: %v", err)
	}

	// reap long-poll sessions whose consumer went away
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-janitorCtx.Done():
				return
			case <-ticker.C:
				hub.PurgeIdle()
			}
		}
	}()

	httpSrv := &http.Server{
		Addr:    srvCfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", srvCfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	stopJanitor()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}

// bootstrapAdmin creates the first admin account on an empty install so
// the console can log in at all. Credentials come from the environment,
// with loud dev defaults.
func bootstrapAdmin(repo *admins.Repo) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	username := os.Getenv("ADMINHUB_ADMIN_USER")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMINHUB_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123!"
		log.Printf("[bootstrap] using default admin password; set ADMINHUB_ADMIN_PASSWORD")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = repo.Create(ctx, models.Admin{
		Username: username,
		FullName: "Administrator",
		Email:    username + "@localhost",
	}, string(hash))
	if err != nil {
		return err
	}
	log.Printf("[bootstrap] created initial admin %q", username)
	return nil
}

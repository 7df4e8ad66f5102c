package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"thuvien-backend/internal/catalog"
	"thuvien-backend/internal/ledger"
	"thuvien-backend/internal/members"
	"thuvien-backend/internal/metadata"
	"thuvien-backend/internal/platform/auth"
	"thuvien-backend/internal/platform/db"
	"thuvien-backend/internal/platform/middleware"
)

func main() {
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if mode != "dev" && mode != "release" {
		fmt.Println("Usage: set mode to dev or release in config/config.yaml")
		return
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	if err := db.Migrate(context.Background(), conn, cfg.DB.Driver); err != nil {
		log.Fatal(err)
	}
	log.Printf("[INFO] connected to DB (%s)", cfg.DB.Driver)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS is only needed while the frontend runs on its own port.
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// Services share one pool; the ledger engine consumes the catalog and
	// member stores through its narrow interfaces.
	catalogSvc := catalog.NewService(conn)
	quota := members.Quota{Limited: cfg.Lending.LimitedQuota, Staff: cfg.Lending.StaffQuota}
	memberSvc := members.NewService(conn, quota)
	ledgerSvc := ledger.NewService(conn, catalogSvc.Store(), memberSvc.Store(), ledger.Policy{
		LoanPeriodDays: cfg.Lending.LoanPeriodDays,
		FinePerDay:     cfg.Lending.FinePerDay,
		Quota:          quota,
	})
	authSvc := auth.NewService(conn, cfg.Auth.Secret, time.Duration(cfg.Auth.TokenTTL)*time.Hour)
	booksAPI := metadata.NewClient(os.Getenv("GOOGLE_BOOKS_API_KEY"))

	// /api/v1: login is public, everything else requires a librarian token.
	api := r.Group("/api/v1")
	secured := api.Group("", auth.RequireAuth(authSvc.Secret()))

	auth.RegisterRoutes(api, secured, authSvc)
	catalog.RegisterRoutes(secured, catalogSvc)
	members.RegisterRoutes(secured, memberSvc)
	ledger.RegisterRoutes(secured, ledgerSvc)
	metadata.RegisterRoutes(secured, booksAPI)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		log.Printf("[INFO] listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/kumarbhakta81/Garment-platform/internal/auth"
	"github.com/kumarbhakta81/Garment-platform/internal/cart"
	"github.com/kumarbhakta81/Garment-platform/internal/categories"
	"github.com/kumarbhakta81/Garment-platform/internal/config"
	"github.com/kumarbhakta81/Garment-platform/internal/db"
	"github.com/kumarbhakta81/Garment-platform/internal/health"
	"github.com/kumarbhakta81/Garment-platform/internal/mail"
	"github.com/kumarbhakta81/Garment-platform/internal/middleware"
	"github.com/kumarbhakta81/Garment-platform/internal/notifications"
	"github.com/kumarbhakta81/Garment-platform/internal/orders"
	"github.com/kumarbhakta81/Garment-platform/internal/policy"
	"github.com/kumarbhakta81/Garment-platform/internal/products"
	"github.com/kumarbhakta81/Garment-platform/internal/samples"
	"github.com/kumarbhakta81/Garment-platform/internal/upload"
	"github.com/kumarbhakta81/Garment-platform/internal/wishlist"
)

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.NewPostgres(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	mailer := mail.New(mail.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}, log)

	jwtMgr := auth.NewJWTManager(auth.JWTConfig{
		Issuer:   cfg.JWTIssuer,
		Secret:   cfg.JWTSecret,
		TTLHours: cfg.SessionTTLHours,
	})
	files := upload.NewStore(cfg.UploadDir, cfg.UploadMaxMB)

	// Repos
	userRepo := auth.NewUserRepo(pool)
	sessionRepo := auth.NewSessionRepo(pool)

	h := auth.NewHandler(auth.Dependencies{
		JWT:      jwtMgr,
		Users:    userRepo,
		Sessions: sessionRepo,
		Resets:   auth.NewResetRepo(pool),
		Mailer:   mailer,
		Log:      log,
		OTPTTL:   time.Duration(cfg.OTPTTLMin) * time.Minute,
	})
	usersHandler := auth.NewUsersHandler(userRepo)

	catHandler := categories.NewHandler(categories.NewRepo(pool))
	prodHandler := products.NewHandler(products.NewRepo(pool), files)
	sampleHandler := samples.NewHandler(samples.NewRepo(pool), files)
	cartHandler := cart.NewHandler(cart.NewRepo(pool))
	wishHandler := wishlist.NewHandler(wishlist.NewRepo(pool))
	orderHandler := orders.NewHandler(orders.NewRepo(pool))
	noteHandler := notifications.NewHandler(notifications.NewRepo(pool))
	healthHandler := health.NewHandler(pool)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.UseJSONFieldNames()

	r := gin.New()
	r.MaxMultipartMemory = files.MaxBytes()
	r.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		middleware.SecurityHeaders(),
		middleware.ErrorHandler(log, cfg.IsProduction()),
	)

	generalLimit := middleware.NewRateLimiter(cfg.RateLimitPerMin, time.Minute,
		"Too many requests from this IP, please try again later.").Limit()
	authLimit := middleware.NewRateLimiter(cfg.AuthRateLimitPerMin, time.Minute,
		"Too many authentication attempts, please try again later.").Limit()
	orderLimit := middleware.NewRateLimiter(cfg.OrderRateLimitPerHour, time.Hour,
		"Too many orders placed, please try again later.").Limit()
	uploadLimit := middleware.NewRateLimiter(cfg.UploadRateLimitPerHour, time.Hour,
		"Too many uploads, please try again later.").Limit()

	r.GET("/health", healthHandler.Live)
	r.Static(upload.URLPrefix, cfg.UploadDir)

	api := r.Group("/api")
	api.Use(generalLimit)
	api.GET("/health", healthHandler.Live)
	api.GET("/health/db", healthHandler.DB)

	// Auth routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authLimit, h.Register)
		authGroup.POST("/signup", authLimit, h.Register)
		authGroup.POST("/login", authLimit, h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.POST("/forgot-password", authLimit, h.ForgotPassword)
		authGroup.POST("/reset-password", authLimit, h.ResetPassword)
	}

	// Public catalog routes (no login required)
	api.GET("/categories", catHandler.ListPublic)
	api.GET("/products", prodHandler.ListPublic)
	api.GET("/products/brands", prodHandler.Brands)
	api.GET("/products/:id", prodHandler.GetPublic)
	api.GET("/products/:id/variants", prodHandler.ListVariants)

	protected := api.Group("")
	protected.Use(auth.AuthMiddleware(jwtMgr, sessionRepo))
	{
		protected.GET("/auth/me", h.Me)

		users := protected.Group("/users", auth.RequireAction(policy.UserManage))
		users.GET("", usersHandler.List)
		users.PUT("/:id", usersHandler.Update)
		users.DELETE("/:id", usersHandler.Delete)

		adminCats := protected.Group("/admin/categories", auth.RequireAction(policy.CategoryManage))
		adminCats.GET("", catHandler.AdminList)
		adminCats.POST("", catHandler.AdminCreate)
		adminCats.PUT("/:id", catHandler.AdminUpdate)
		adminCats.DELETE("/:id", catHandler.AdminDelete)

		seller := protected.Group("", auth.RequireAction(policy.ProductCreate))
		seller.GET("/products/manage", prodHandler.ManageList)
		seller.GET("/products/analytics", prodHandler.Analytics)
		seller.POST("/products", prodHandler.Create)
		seller.PUT("/products/:id", prodHandler.Update)
		seller.DELETE("/products/:id", prodHandler.Delete)
		seller.POST("/products/:id/images", uploadLimit, prodHandler.UploadImages)
		seller.POST("/products/:id/variants", prodHandler.CreateVariant)
		seller.PUT("/variants/:id", prodHandler.UpdateVariant)
		seller.DELETE("/variants/:id", prodHandler.DeleteVariant)
		protected.PATCH("/products/:id/status", auth.RequireAction(policy.ProductModerate), prodHandler.UpdateStatus)

		protected.GET("/samples", sampleHandler.List)
		sampleOwners := protected.Group("/samples", auth.RequireAction(policy.SampleCreate))
		sampleOwners.POST("", uploadLimit, sampleHandler.Create)
		sampleOwners.PUT("/:id", uploadLimit, sampleHandler.Update)
		sampleOwners.DELETE("/:id", sampleHandler.Delete)
		protected.PATCH("/samples/:id/status", auth.RequireAction(policy.SampleModerate), sampleHandler.UpdateStatus)

		c := protected.Group("/cart")
		c.GET("", cartHandler.GetMyCart)
		c.GET("/summary", cartHandler.Summary)
		c.GET("/validate", cartHandler.Validate)
		c.POST("/items", cartHandler.AddItem)
		c.PUT("/items/:variantId", cartHandler.UpdateQty)
		c.DELETE("/items/:variantId", cartHandler.RemoveItem)
		c.DELETE("", cartHandler.Clear)
		c.POST("/items/:variantId/move-to-wishlist", cartHandler.MoveToWishlist)

		wl := protected.Group("/wishlist")
		wl.GET("", wishHandler.List)
		wl.GET("/count", wishHandler.Count)
		wl.GET("/recommendations", wishHandler.Recommendations)
		wl.POST("/items", wishHandler.Add)
		wl.DELETE("/items/:productId", wishHandler.Remove)
		wl.DELETE("", wishHandler.Clear)
		wl.POST("/items/:productId/move-to-cart", wishHandler.MoveToCart)

		o := protected.Group("/orders")
		o.GET("", orderHandler.List)
		o.GET("/analytics", orderHandler.Analytics)
		o.GET("/:id", orderHandler.Get)
		o.POST("", orderLimit, orderHandler.Create)
		o.PATCH("/:id/status", auth.RequireAction(policy.OrderCancel), orderHandler.UpdateStatus)

		n := protected.Group("/notifications")
		n.GET("", noteHandler.List)
		n.GET("/counts", noteHandler.Counts)
		n.GET("/all", auth.RequireAction(policy.NotificationListAll), noteHandler.ListAll)
		n.PATCH("/read-all", noteHandler.MarkAllRead)
		n.PATCH("/:id/read", noteHandler.MarkRead)
		n.DELETE("/:id", noteHandler.Delete)
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
}

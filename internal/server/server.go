package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/freshlook-dev/FreshWallet/internal/auth"
	"github.com/freshlook-dev/FreshWallet/internal/config"
	"github.com/freshlook-dev/FreshWallet/internal/email"
	"github.com/freshlook-dev/FreshWallet/internal/points"
	"github.com/freshlook-dev/FreshWallet/internal/redemption"
	"github.com/freshlook-dev/FreshWallet/internal/reward"
	"github.com/freshlook-dev/FreshWallet/internal/user"
	"github.com/freshlook-dev/FreshWallet/internal/wallet"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	email  *email.Service
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	userHandler := user.NewHandler(db, emailService, cfg.JWTSecret, cfg.BaseURL)
	walletHandler := wallet.NewHandler(db)
	pointsHandler := points.NewHandler(db)
	rewardHandler := reward.NewHandler(db)
	redemptionHandler := redemption.NewHandler(db, emailService)

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
		public.GET("/verify", userHandler.Verify)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.DELETE("/me", userHandler.DeleteMe)
		protected.GET("/wallet", walletHandler.GetBalance)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)
		protected.POST("/earn", pointsHandler.Earn)
		protected.GET("/rewards", rewardHandler.ListRewards)
		protected.POST("/rewards/:rewardID/redeem", redemptionHandler.Redeem)
		protected.GET("/redemptions", redemptionHandler.ListMine)
	}

	staff := router.Group("/staff")
	staff.Use(authMiddleware, auth.RequireRole(auth.RoleStaff, auth.RoleAdmin))
	{
		staff.POST("/redemptions/consume", redemptionHandler.Consume)
		staff.GET("/redemptions", redemptionHandler.ListAll)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/rewards", rewardHandler.CreateReward)
		admin.PATCH("/rewards/:rewardID", rewardHandler.UpdateReward)
		admin.POST("/users/:userID/role", userHandler.PromoteRole)
		admin.POST("/wallets/:userID/adjust", walletHandler.Adjust)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

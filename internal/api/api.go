package api

import (
	"fmt"
	"log"
	"strings"
	"time"

	account_store "github.com/amverse/amverse/internal/stores/account"
	chat_store "github.com/amverse/amverse/internal/stores/chat"
	"github.com/amverse/amverse/pkg/utils"
	api_utils "github.com/ethanbaker/api/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"

	auth_module "github.com/amverse/amverse/internal/api/modules/auth"
	chat_module "github.com/amverse/amverse/internal/api/modules/chat"
	compare_module "github.com/amverse/amverse/internal/api/modules/compare"
	custom_module "github.com/amverse/amverse/internal/api/modules/custom"
	health_module "github.com/amverse/amverse/internal/api/modules/health"
)

func Start(cfg *utils.Config) {
	// Initialized configuration settings
	port := cfg.GetWithDefault("API_PORT", "8080")

	// Add app level settings/routes
	engine := gin.Default()
	engine.NoRoute(api_utils.NoRouteHandler)

	// Add trusted proxies
	engine.SetTrustedProxies(nil)

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.GetWithDefault("CORS_ALLOWED_ORIGINS", "*"), ","),
		AllowMethods:     []string{"OPTIONS", "GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Base group '/api' for all API routes
	baseGroup := engine.Group("/api")

	// Create MySQL config
	dbConfig := mysql.Config{
		User:      cfg.Get("MYSQL_USERNAME"),
		Passwd:    cfg.Get("MYSQL_ROOT_PASSWORD"),
		Net:       "tcp",
		Addr:      fmt.Sprintf("%s:%s", cfg.Get("MYSQL_HOST"), cfg.Get("MYSQL_PORT")),
		DBName:    cfg.Get("MYSQL_DATABASE"),
		ParseTime: true,
	}

	// The stores are built once and shared by every module that needs them
	accountStore, err := account_store.NewMySqlStore(dbConfig.FormatDSN())
	if err != nil {
		log.Fatal("[API-MAIN]: Failed to initialize account store: ", err)
	}
	chatStore, err := chat_store.NewMySqlStore(dbConfig.FormatDSN())
	if err != nil {
		log.Fatal("[API-MAIN]: Failed to initialize chat store: ", err)
	}

	// Modules must be initialized before their routes are registered
	// because the session guard is attached at registration time
	if err := auth_module.Init(cfg, accountStore); err != nil {
		log.Fatal("[API-MAIN]: Failed to initialize auth module: ", err)
	}
	if err := chat_module.Init(cfg, chatStore); err != nil {
		log.Fatal("[API-MAIN]: Failed to initialize chat module: ", err)
	}
	if err := custom_module.Init(cfg, chatStore); err != nil {
		log.Fatal("[API-MAIN]: Failed to initialize custom module: ", err)
	}
	if err := compare_module.Init(cfg); err != nil {
		log.Fatal("[API-MAIN]: Failed to initialize compare module: ", err)
	}

	health_module.RegisterRoutes(baseGroup)
	auth_module.RegisterRoutes(baseGroup)
	chat_module.RegisterRoutes(baseGroup)
	custom_module.RegisterRoutes(baseGroup)
	compare_module.RegisterRoutes(baseGroup)

	// Then after performing initial setup, start the server
	if err := engine.Run(":" + port); err != nil {
		log.Fatal("[API-MAIN]: Failed to start server: ", err)
	}
}

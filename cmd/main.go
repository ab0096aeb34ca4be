package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/api"
	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/config"
	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/repository"
	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/service"
	"github.com/alex-rublevsky/rublevsky-studio-sub002/migrations"
)

func connectDB() (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		os.Getenv("DB_USER"), os.Getenv("DB_PASS"), os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_NAME"))

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Printf("Connected to DB %s", os.Getenv("DB_NAME"))
				return db, nil
			}
		}
		log.Printf("Retry %d: failed to connect to DB: %v", i+1, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB after retries: %v", err)
}

func main() {
	db, err := connectDB()
	if err != nil {
		panic(err)
	}

	if err := migrations.AutoMigrate(db, 3); err != nil {
		log.Fatalf("Failed to migrate tables: %v", err)
	}

	rdb := config.NewRedisClient()
	kafkaWriter := config.NewKafkaWriter("order-events")

	orderRepo := repository.NewMySQLOrderRepository(db)
	catalogRepo := repository.NewMySQLCatalogRepository(db)

	orderService := service.NewOrderService(orderRepo, kafkaWriter, rdb)
	catalogService := service.NewCatalogService(catalogRepo, rdb)
	handler := api.NewHandler(orderService, catalogService)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(5),
				Burst:     10,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.Request().RemoteAddr, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	e.POST("/checkout", handler.Checkout)
	e.POST("/cart/validate", handler.ValidateCart)
	e.GET("/products", handler.ListProducts)
	e.GET("/products/:id/availability", handler.ProductAvailability)
	e.GET("/orders/:id", handler.GetOrder)

	admin := e.Group("/admin")
	admin.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(os.Getenv("JWT_SECRET")),
	}))
	admin.PATCH("/orders/:id/status", handler.UpdateOrderStatus)
	admin.PATCH("/orders/:id/payment-status", handler.UpdatePaymentStatus)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "storefront-order-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.Logger.Fatal(e.Start(":8080"))
}

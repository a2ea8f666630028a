package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Knight069/ecommerce-microservice/internal/clients/userclient"
	"github.com/Knight069/ecommerce-microservice/internal/config"
	"github.com/Knight069/ecommerce-microservice/internal/email"
	"github.com/Knight069/ecommerce-microservice/internal/handlers/order"
	"github.com/Knight069/ecommerce-microservice/internal/logging"
	"github.com/Knight069/ecommerce-microservice/internal/models"
	"github.com/Knight069/ecommerce-microservice/internal/mykafka"
	"github.com/Knight069/ecommerce-microservice/pkg/db"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.DATABASE_URL, "DATABASE_URL")

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	database, err := db.Open(context.Background(), configuration.DATABASE_URL, &models.Order{}, &models.OrderItem{})
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var pub mykafka.Publisher
	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod, err = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
		if err != nil {
			log.Fatal(err)
		}
		pub = prod
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logging.RequestLogger(logger))

	order.Register(e, &order.Handler{
		DB:       database,
		Users:    userclient.NewClient(configuration.USER_SERVICE_URL),
		Producer: pub,
		Email:    email.NewSender(configuration.SENDGRID_API_KEY, configuration.EMAIL_FROM),
	})

	srv := &http.Server{
		Addr:         ":" + configuration.ORDER_SERVICE_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}

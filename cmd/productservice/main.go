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

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Knight069/ecommerce-microservice/internal/config"
	"github.com/Knight069/ecommerce-microservice/internal/es"
	"github.com/Knight069/ecommerce-microservice/internal/handlers/product"
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

	database, err := db.Open(context.Background(), configuration.DATABASE_URL, &models.Product{})
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

	var esClient *elasticsearch.Client
	if configuration.ES_URL != "" {
		esClient, err = es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logging.RequestLogger(logger))

	product.Register(e, &product.Handler{
		DB:       database,
		Producer: pub,
		ES:       esClient,
		Index:    "product",
	})

	srv := &http.Server{
		Addr:         ":" + configuration.PRODUCT_SERVICE_PORT,
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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"cvgateway/config"
	"cvgateway/engine"
	"cvgateway/messaging"
	"cvgateway/metrics"
	"cvgateway/recordcache"
	"cvgateway/store"
	"cvgateway/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "cvgateway.yaml", "path to config file")
	noMessaging := flag.Bool("no-messaging", false, "do not publish audit events")
	operator := flag.String("operator", "admin", "operator account for -set-operator-password")
	newPassword := flag.String("set-operator-password", "", "set the operator's console password and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("cvgateway", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	metrics.Register()

	// Database
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Printf("cvgateway: database open (%s)", cfg.Database.Driver)

	if *newPassword != "" {
		if err := www.SetOperatorPassword(db, *operator, *newPassword); err != nil {
			log.Fatalf("set operator password: %v", err)
		}
		log.Printf("cvgateway: password updated for operator %q", *operator)
		return
	}

	// Redis
	var redisStore *recordcache.RedisStore
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("cvgateway: redis not available (%v), running without cache", err)
	} else {
		log.Printf("cvgateway: redis connected (%s)", cfg.Redis.Address)
		redisStore = recordcache.NewRedisStore(redisClient, cfg.Redis.TTL)
	}
	cancel()
	defer redisClient.Close()

	// Messaging client
	var msgClient *messaging.Client
	if !*noMessaging {
		msgClient = messaging.NewClient(cfg.Messaging)
		if err := msgClient.Connect(); err != nil {
			log.Printf("cvgateway: messaging connect failed (%v), events stay in the outbox", err)
		} else {
			log.Printf("cvgateway: messaging connected (%s)", cfg.Messaging.Backend)
		}
		defer msgClient.Close()
	}

	// Engine
	eng := engine.New(engine.Config{
		AppConfig:  cfg,
		ConfigPath: *configPath,
		DB:         db,
		Redis:      redisStore,
		MsgClient:  msgClient,
	})
	eng.Start()
	defer eng.Stop()

	// Web server
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           www.NewRouter(eng),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("cvgateway: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("cvgateway: ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("cvgateway: shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Printf("cvgateway: stopped")
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/swaggo/swag"

	_ "github.com/insurance4you/agency/docs"
	"github.com/insurance4you/agency/internal/core"
	transporthttp "github.com/insurance4you/agency/internal/http"
	"github.com/insurance4you/agency/internal/http/handlers"
	"github.com/insurance4you/agency/internal/http/health"
	"github.com/insurance4you/agency/internal/middleware"
	"github.com/insurance4you/agency/internal/platform/config"
	"github.com/insurance4you/agency/internal/platform/logging"
	"github.com/insurance4you/agency/internal/store/mongo"
	"github.com/insurance4you/agency/internal/store/postgres"
)

// stores bundles the repository set of whichever backend DB_TYPE selects.
type stores struct {
	users     core.UserRepo
	customers core.CustomerRepo
	agents    core.AgentRepo
	packages  core.PackageRepo
	purchased core.PurchasedPolicyRepo
	custom    core.CustomPolicyRepo
	claims    core.ClaimRepo
	payments  core.PaymentRepo
	tx        core.TxRunner
	pinger    health.Pinger
	close     func(ctx context.Context) error
}

func main() {
	cfg := config.MustLoad()
	log := logging.New(cfg.Env)
	slog.SetDefault(log)

	st, err := openStores(cfg, log)
	if err != nil {
		log.Error("failed to open store", "db_type", cfg.DBType, "err", err)
		os.Exit(1)
	}
	defer st.close(context.Background())

	// Services
	userSvc := core.NewUserService(st.users, st.customers, st.agents, st.tx)
	policySvc := core.NewPolicyService(st.packages, st.purchased, st.agents, st.users, st.tx)
	customSvc := core.NewCustomPolicyService(st.packages, st.custom, st.purchased, st.agents, st.tx)
	claimSvc := core.NewClaimService(st.claims, st.purchased)
	paymentSvc := core.NewPaymentService(st.payments, st.purchased, st.tx)
	agentSvc := core.NewAgentService(st.agents, st.packages, st.purchased)

	jwtTTL := time.Duration(cfg.JWTTTLMin) * time.Minute
	api := transporthttp.NewRouter(transporthttp.Deps{
		Mounts: []handlers.Mountable{
			handlers.NewAuthHandler(userSvc, log, cfg.JWTSecret, jwtTTL),
			handlers.NewPolicyHandler(policySvc, userSvc, log, cfg.JWTSecret),
			handlers.NewCustomPolicyHandler(customSvc, userSvc, log, cfg.JWTSecret),
			handlers.NewClaimHandler(claimSvc, userSvc, log, cfg.JWTSecret),
			handlers.NewPaymentHandler(paymentSvc, userSvc, log, cfg.JWTSecret),
			handlers.NewAgentHandler(agentSvc, userSvc, log, cfg.JWTSecret),
			handlers.NewAdminHandler(policySvc, agentSvc, log, cfg.JWTSecret),
		},
	})

	// Root router: cross-cutting middleware, health, docs, then the API.
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(time.Duration(cfg.HTTPRequestTimeoutSec) * time.Second))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.LimitRequestBody(middleware.MaxBodySize))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPM, time.Minute)
	defer limiter.Stop()
	r.Use(limiter.Middleware)

	opTimeout := time.Duration(cfg.StoreOpTimeoutMs) * time.Millisecond
	r.Mount("/", health.New(log, st.pinger, opTimeout))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, "swagger doc unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	})
	r.Mount("/api/v1", api)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.HTTPIdleTimeoutSec) * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", addr, "env", cfg.Env, "db_type", cfg.DBType)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
}

func openStores(cfg *config.Config, log *slog.Logger) (stores, error) {
	opTimeout := time.Duration(cfg.StoreOpTimeoutMs) * time.Millisecond

	switch cfg.DBType {
	case "postgres":
		client, err := postgres.NewClient(cfg)
		if err != nil {
			return stores{}, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := client.EnsureSchema(ctx); err != nil {
			_ = client.Close(ctx)
			return stores{}, err
		}
		log.Info("connected to postgres")
		return stores{
			users:     postgres.NewUserRepo(client.DB, opTimeout),
			customers: postgres.NewCustomerRepo(client.DB, opTimeout),
			agents:    postgres.NewAgentRepo(client.DB, opTimeout),
			packages:  postgres.NewPackageRepo(client.DB, opTimeout),
			purchased: postgres.NewPurchasedPolicyRepo(client.DB, opTimeout),
			custom:    postgres.NewCustomPolicyRepo(client.DB, opTimeout),
			claims:    postgres.NewClaimRepo(client.DB, opTimeout),
			payments:  postgres.NewPaymentRepo(client.DB, opTimeout),
			tx:        postgres.NewTxRunner(client.DB),
			pinger:    client,
			close:     client.Close,
		}, nil

	case "mongo":
		client, err := mongo.NewClient(cfg)
		if err != nil {
			return stores{}, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, client.DB); err != nil {
			_ = client.Close(ctx)
			return stores{}, err
		}
		log.Info("connected to mongo", "db", cfg.MongoDB)
		return stores{
			users:     mongo.NewUserRepo(client.DB, opTimeout),
			customers: mongo.NewCustomerRepo(client.DB, opTimeout),
			agents:    mongo.NewAgentRepo(client.DB, opTimeout),
			packages:  mongo.NewPackageRepo(client.DB, opTimeout),
			purchased: mongo.NewPurchasedPolicyRepo(client.DB, opTimeout),
			custom:    mongo.NewCustomPolicyRepo(client.DB, opTimeout),
			claims:    mongo.NewClaimRepo(client.DB, opTimeout),
			payments:  mongo.NewPaymentRepo(client.DB, opTimeout),
			tx:        mongo.NewTxRunner(client.Client),
			pinger:    client,
			close:     client.Close,
		}, nil
	}
	return stores{}, fmt.Errorf("unknown DB_TYPE %q (want postgres or mongo)", cfg.DBType)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"outfitorbit/addresses"
	"outfitorbit/cart"
	"outfitorbit/checkout"
	"outfitorbit/db"
	"outfitorbit/globals"
	"outfitorbit/mq"
	"outfitorbit/orders"
	"outfitorbit/pay"
	"outfitorbit/products"
	"outfitorbit/ratelim"
	"outfitorbit/rdx"
	"outfitorbit/routes"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// XSS, content sniffing, framing
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		// HSTS (must be on HTTPS)
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs each request method, path, status, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		globals.Log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("took", time.Since(start)))
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func setupRouter(cfg globals.Config) (*httprouter.Router, context.CancelFunc) {
	productSvc := products.NewProductService(products.NewMongoStore())
	cartSvc := cart.NewCartService(cart.NewMongoStore(), productSvc)
	addressStore := addresses.NewMongoStore()
	events := &mq.RedisEmitter{Client: rdx.Conn}
	orderStore := orders.NewMongoStore()
	orderSvc := orders.NewOrderService(orderStore, addressStore, events, cfg.StoreName)
	locker := rdx.NewLocker()

	ctl := checkout.NewController(checkout.NewRedisSessions(rdx.Conn), locker, orderSvc, cartSvc)
	paySvc := pay.NewPaymentService(
		orderStore,
		pay.NewRazorpayClient(cfg.GatewayURL, cfg.GatewayKey, cfg.GatewaySecret),
		pay.NewMongoTxnStore(),
		locker,
		events,
		pay.Settings{
			KeyID:      cfg.GatewayKey,
			KeySecret:  cfg.GatewaySecret,
			StoreName:  cfg.StoreName,
			ThemeColor: cfg.ThemeColor,
			UPIPayee:   cfg.UPIPayee,
		},
	)

	router := httprouter.New()
	router.GET("/health", Index)
	routes.RoutesWrapper(router, routes.Services{
		Products:    productSvc,
		Cart:        cartSvc,
		Addresses:   &addresses.AddressService{Store: addressStore},
		Checkout:    checkout.NewCheckoutService(ctl, cartSvc, addressStore),
		Orders:      orderSvc,
		Pay:         paySvc,
		Idempotency: pay.NewMongoIdempotencyStore(),
	}, ratelim.NewRateLimiter(30, 10))

	workerCtx, stop := context.WithCancel(context.Background())
	go mq.StartOrderWorker(workerCtx, rdx.Conn, mq.RemoveOrderedLines(cartSvc))
	return router, stop
}

func main() {
	cfg := globals.LoadConfig()

	logger, err := globals.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	globals.Log = logger
	defer logger.Sync()

	if cfg.JwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}
	if cfg.GatewayKey == "" || cfg.GatewaySecret == "" {
		logger.Warn("RAZORPAY_KEY_ID or RAZORPAY_KEY_SECRET missing; gateway payments will fail")
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := db.Connect(startCtx, cfg.MongoURI, cfg.MongoDB); err != nil {
		logger.Fatal("mongo", zap.Error(err))
	}
	if err := db.CreateIndexes(startCtx); err != nil {
		logger.Fatal("mongo indexes", zap.Error(err))
	}
	if err := rdx.Connect(startCtx, cfg.RedisAddr, cfg.RedisPassword); err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	cancel()

	router, stopWorker := setupRouter(cfg)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	// WriteTimeout leaves room for a full order submission
	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		logger.Info("stopping order worker")
		stopWorker()
	})

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ListenAndServe", zap.Error(err))
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received; shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := db.Disconnect(ctx); err != nil {
		logger.Warn("mongo disconnect", zap.Error(err))
	}
	if err := rdx.Conn.Close(); err != nil {
		logger.Warn("redis close", zap.Error(err))
	}
	logger.Info("server stopped cleanly")
}

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mossfall/grottobot/internal/catalog"
	"github.com/mossfall/grottobot/internal/database"
	"github.com/mossfall/grottobot/internal/handler"
	"github.com/mossfall/grottobot/internal/inventory"
	"github.com/mossfall/grottobot/internal/ledger"
	"github.com/mossfall/grottobot/internal/logger"
	"github.com/mossfall/grottobot/internal/metrics"
)

type Server struct {
	httpServer       *http.Server
	dbPool           database.Pool
	ledgerService    ledger.Service
	inventoryService inventory.Service
	catalogService   catalog.Service
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, trustedProxies []string, dbPool database.Pool, ledgerService ledger.Service, inventoryService inventory.Service, catalogService catalog.Service) *Server {
	r := chi.NewRouter()

	// Middleware stack, outermost first
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(RateLimitMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/account", func(r chi.Router) {
			r.Get("/", handler.HandleGetAccount(ledgerService))
			r.Post("/daily", handler.HandleClaimDaily(ledgerService))
			r.Post("/work", handler.HandleWork(ledgerService))
			r.Post("/fish", handler.HandleFish(ledgerService))
			r.Post("/transfer", handler.HandleTransfer(ledgerService))
			r.Post("/deposit", handler.HandleDeposit(ledgerService))
			r.Post("/withdraw", handler.HandleWithdraw(ledgerService))
			r.Get("/history", handler.HandleHistory(ledgerService))
		})

		r.Get("/leaderboard", handler.HandleLeaderboard(ledgerService))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", handler.HandleGetInventory(inventoryService))
			r.Get("/effects", handler.HandleGetActiveEffects(inventoryService))

			r.Route("/item", func(r chi.Router) {
				r.Post("/add", handler.HandleAddItem(inventoryService))
				r.Post("/remove", handler.HandleRemoveItem(inventoryService))
				r.Post("/use", handler.HandleUseItem(inventoryService))
				r.Post("/sell", handler.HandleSellItem(inventoryService))
				r.Post("/buy", handler.HandlePurchase(ledgerService))
			})
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", handler.HandleGetCatalog(catalogService))
			r.Get("/item", handler.HandleGetCatalogItem(catalogService))
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/balance", handler.HandleAdminAdjust(ledgerService))
			r.Post("/catalog/item", handler.HandleUpsertItem(catalogService))
			r.Post("/catalog/item/delete", handler.HandleDeleteItem(catalogService))
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool:           dbPool,
		ledgerService:    ledgerService,
		inventoryService: inventoryService,
		catalogService:   catalogService,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Health checks and metrics scrapes are noise at info level
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

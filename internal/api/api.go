// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/qota-finance/backend-go/internal/api/handlers"
	"github.com/andresuchdata/qota-finance/backend-go/internal/api/middleware"
	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/andresuchdata/qota-finance/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Records *service.RecordService
	Metrics *service.MetricsService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.NoCache())

	if services == nil {
		return router
	}

	if services.Records != nil {
		records := handlers.NewRecordsHandler(services.Records)

		apiGroup.GET("/gastos", records.ListExpenses)
		apiGroup.POST("/gastos", records.CreateExpense)
		apiGroup.DELETE("/gastos/:id", records.Delete(domain.KindExpense))

		apiGroup.GET("/investimentos", records.ListInvestments)
		apiGroup.POST("/investimentos", records.CreateInvestment)
		apiGroup.DELETE("/investimentos/:id", records.Delete(domain.KindInvestment))

		apiGroup.GET("/produtos", records.ListProducts)
		apiGroup.POST("/produtos", records.CreateProduct)
		apiGroup.DELETE("/produtos/:id", records.Delete(domain.KindProduct))

		apiGroup.GET("/amazon_receitas", records.ListReceipts)
		apiGroup.POST("/amazon_receitas", records.CreateReceipt)
		apiGroup.DELETE("/amazon_receitas/:id", records.Delete(domain.KindReceipt))

		apiGroup.GET("/amazon_saldos/latest", records.LatestBalance)
		apiGroup.POST("/amazon_saldos", records.CreateBalance)

		apiGroup.GET("/revenues", records.ListRevenues)
	}

	if services.Metrics != nil {
		metrics := handlers.NewMetricsHandler(services.Metrics)
		metricsGroup := apiGroup.Group("/metrics")
		{
			metricsGroup.GET("/resumo", metrics.Summary)
			metricsGroup.GET("/totais", metrics.Totals)
			metricsGroup.GET("/lucros", metrics.Profits)
			metricsGroup.GET("/series", metrics.Series)
			metricsGroup.GET("/products/sales", metrics.ProductSales)
		}
	}

	return router
}

// corsConfig allows the configured origins, or the local dev server when none
// are set. "*" allows any origin.
func corsConfig(allowedOrigins []string) cors.Config {
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	cfg := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			cfg.AllowOrigins = nil
			cfg.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			cfg.AllowOrigins = normalizedOrigins
		}
	}
	return cfg
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, strings.TrimRight(trimmed, "/"))
		}
	}
	return parsed, allowAll
}

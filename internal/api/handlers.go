package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jeovahfialho/trade-excursion/internal/domain"
	"github.com/jeovahfialho/trade-excursion/internal/marketdata"
	"github.com/jeovahfialho/trade-excursion/internal/service"
	"github.com/jeovahfialho/trade-excursion/pkg/logger"
	"go.uber.org/zap"
)

const version = "1.0.0"

type Runner interface {
	Run(ctx context.Context, window domain.TradeWindow) (*domain.RunResult, error)
}

type AnalyticsReader interface {
	Get(ctx context.Context, tradeID string) (*domain.TradeAnalytics, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Handler struct {
	runner        Runner
	analytics     AnalyticsReader
	checks        map[string]HealthChecker
	hasCredential bool
	now           func() time.Time
}

// NewHandler recebe as dependências que entram no /ready em checks; entradas
// ausentes (ex.: redis desligado) simplesmente não aparecem.
func NewHandler(runner Runner, analytics AnalyticsReader, hasCredential bool, checks map[string]HealthChecker) *Handler {
	if checks == nil {
		checks = map[string]HealthChecker{}
	}

	return &Handler{
		runner:        runner,
		analytics:     analytics,
		checks:        checks,
		hasCredential: hasCredential,
		now:           time.Now,
	}
}

func (h *Handler) ComputeTradeData(c *fiber.Ctx) error {
	requestID := getRequestID(c)

	window, err := service.ParseWindow(c.Query("from"), c.Query("to"), h.now())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(RunErrorResponse{
			Success:   false,
			Error:     err.Error(),
			RequestID: requestID,
		})
	}

	ctx := c.UserContext()
	result, err := h.runner.Run(ctx, window)
	if err != nil {
		logger.WithContext(ctx).Error("erro ao calcular excursões", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(RunErrorResponse{
			Success:   false,
			Error:     err.Error(),
			RequestID: requestID,
		})
	}

	return c.JSON(result)
}

func (h *Handler) GetTradeAnalytics(c *fiber.Ctx) error {
	tradeID := c.Params("tradeId")

	analytics, err := h.analytics.Get(c.UserContext(), tradeID)
	if errors.Is(err, domain.ErrAnalyticsNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:     "analytics não encontrado para o trade " + tradeID,
			Code:      fiber.StatusNotFound,
			RequestID: getRequestID(c),
			Timestamp: h.now(),
		})
	}
	if err != nil {
		logger.WithContext(c.UserContext()).Error("erro ao buscar analytics",
			zap.String("trade_id", tradeID),
			zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:     "erro ao buscar analytics",
			Code:      fiber.StatusInternalServerError,
			RequestID: getRequestID(c),
			Timestamp: h.now(),
		})
	}

	return c.JSON(analytics)
}

func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Version:   version,
		Timestamp: h.now(),
	})
}

func (h *Handler) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	services := make(map[string]ServiceHealth, len(h.checks)+1)

	for name, checker := range h.checks {
		start := time.Now()
		if err := checker.HealthCheck(ctx); err != nil {
			services[name] = ServiceHealth{
				Status: "unhealthy",
				Error:  err.Error(),
			}
			continue
		}
		services[name] = ServiceHealth{
			Status:  "healthy",
			Latency: time.Since(start).String(),
		}
	}

	if h.hasCredential {
		services["market_data"] = ServiceHealth{Status: "healthy"}
	} else {
		services["market_data"] = ServiceHealth{
			Status: "unhealthy",
			Error:  marketdata.ErrMissingAPIKey.Error(),
		}
	}

	status := "ready"
	for _, s := range services {
		if s.Status != "healthy" {
			status = "not_ready"
			break
		}
	}

	response := HealthResponse{
		Status:    status,
		Version:   version,
		Timestamp: h.now(),
		Services:  services,
	}

	if status != "ready" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response)
	}

	return c.JSON(response)
}

func getRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestID").(string); ok {
		return id
	}
	return ""
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/engine"
	"github.com/mamadbah2/feedlot/internal/repository"
	"github.com/mamadbah2/feedlot/internal/service/accounting"
	"github.com/mamadbah2/feedlot/internal/service/digest"
)

const dateLayout = "2006-01-02"

// AccountingService is the engine surface exposed over HTTP.
type AccountingService interface {
	CostReport(ctx context.Context, farmID string) (*accounting.CostReport, error)
	GrowthReport(ctx context.Context, farmID string) (*accounting.GrowthReport, error)
	Project(ctx context.Context, farmID string, params engine.ProjectionParams) (*accounting.ProjectionReport, error)
	RecalculateStock(ctx context.Context, farmID string) (*models.StockRecalculation, error)
	FeedStockReport(ctx context.Context, farmID string) (*accounting.FeedStockReport, error)
	WeighingDay(ctx context.Context, farmID string, day time.Time) (*accounting.WeighingDayReport, error)
	VeterinaryDay(ctx context.Context, farmID string, day time.Time) (*accounting.VeterinaryDayReport, error)
	AnimalProfile(ctx context.Context, farmID, animalID string, valuation accounting.Valuation) (*models.AnimalProfile, error)
}

// DigestSender delivers a herd digest on demand.
type DigestSender interface {
	SendDigest(ctx context.Context, farmID, to string) error
}

// AccountingHandler serves the cost, growth and stock reports of a farm.
type AccountingHandler struct {
	svc    AccountingService
	digest DigestSender
	logger *zap.Logger
}

// NewAccountingHandler constructs the HTTP handler adapter. digest may be nil.
func NewAccountingHandler(svc AccountingService, digest DigestSender, logger *zap.Logger) *AccountingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountingHandler{svc: svc, digest: digest, logger: logger}
}

// Costs returns the cost breakdown of every animal with group aggregates.
func (h *AccountingHandler) Costs(c *gin.Context) {
	report, err := h.svc.CostReport(c.Request.Context(), c.Param("farmID"))
	if err != nil {
		h.writeError(c, "cost report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Growth returns the growth metrics of every animal.
func (h *AccountingHandler) Growth(c *gin.Context) {
	report, err := h.svc.GrowthReport(c.Request.Context(), c.Param("farmID"))
	if err != nil {
		h.writeError(c, "growth report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Projections simulates the herd forward using query parameters.
func (h *AccountingHandler) Projections(c *gin.Context) {
	params, err := parseProjectionParams(c)
	if err != nil {
		h.logger.Warn("invalid projection query", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.svc.Project(c.Request.Context(), c.Param("farmID"), params)
	if err != nil {
		h.writeError(c, "projection", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Animal returns the profile of one animal valued at its current weight.
func (h *AccountingHandler) Animal(c *gin.Context) {
	valuation := accounting.Valuation{YieldPercent: 50}
	var err error
	if valuation.LivePricePerKg, err = queryDecimal(c, "live_price"); err == nil {
		valuation.CarcassPricePerKg, err = queryDecimal(c, "carcass_price")
	}
	if err == nil && c.Query("yield") != "" {
		valuation.YieldPercent, err = strconv.ParseFloat(c.Query("yield"), 64)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.svc.AnimalProfile(c.Request.Context(), c.Param("farmID"), c.Param("animalID"), valuation)
	if err != nil {
		h.writeError(c, "animal profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// FeedStock returns the days and bags of stock left per feed.
func (h *AccountingHandler) FeedStock(c *gin.Context) {
	report, err := h.svc.FeedStockReport(c.Request.Context(), c.Param("farmID"))
	if err != nil {
		h.writeError(c, "feed stock report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// RecalculateStock recomputes and writes back the stock of every feed.
// A partial write answers 207 with the computed levels.
func (h *AccountingHandler) RecalculateStock(c *gin.Context) {
	run, err := h.svc.RecalculateStock(c.Request.Context(), c.Param("farmID"))
	if err != nil {
		if errors.Is(err, accounting.ErrPartialStockWrite) && run != nil {
			h.logger.Warn("stock recalculation partially written", zap.Error(err))
			c.JSON(http.StatusMultiStatus, gin.H{"run": run, "error": err.Error()})
			return
		}
		h.writeError(c, "stock recalculation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run})
}

// WeighingDay reports the weighings recorded on the :date path parameter.
func (h *AccountingHandler) WeighingDay(c *gin.Context) {
	day, ok := h.pathDate(c)
	if !ok {
		return
	}
	report, err := h.svc.WeighingDay(c.Request.Context(), c.Param("farmID"), day)
	if err != nil {
		h.writeError(c, "weighing day", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// VeterinaryDay reports the procedures performed on the :date path parameter.
func (h *AccountingHandler) VeterinaryDay(c *gin.Context) {
	day, ok := h.pathDate(c)
	if !ok {
		return
	}
	report, err := h.svc.VeterinaryDay(c.Request.Context(), c.Param("farmID"), day)
	if err != nil {
		h.writeError(c, "veterinary day", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// SendDigest sends the herd digest now.
func (h *AccountingHandler) SendDigest(c *gin.Context) {
	if h.digest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "digest delivery is not configured"})
		return
	}

	var req models.DigestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("invalid digest payload", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	if err := h.digest.SendDigest(c.Request.Context(), c.Param("farmID"), req.To); err != nil {
		switch {
		case errors.Is(err, digest.ErrNoRecipient), errors.Is(err, accounting.ErrUnknownFarm):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("failed sending digest", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send digest"})
		}
		return
	}

	c.Status(http.StatusAccepted)
}

func (h *AccountingHandler) pathDate(c *gin.Context) (time.Time, bool) {
	day, err := time.Parse(dateLayout, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("date must use %s", dateLayout)})
		return time.Time{}, false
	}
	return day, true
}

func (h *AccountingHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, accounting.ErrUnknownFarm), errors.Is(err, engine.ErrInvalidProjection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.String("operation", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// parseProjectionParams reads projection parameters from the query string.
// Omitted selectors default to weight mode, last GCAA, recent overhead and
// carcass valuation. Range checks are left to ProjectionParams.Validate.
func parseProjectionParams(c *gin.Context) (engine.ProjectionParams, error) {
	p := engine.ProjectionParams{
		Mode:           engine.TargetMode(c.DefaultQuery("mode", string(engine.TargetWeight))),
		GainSource:     engine.GainSource(c.DefaultQuery("gain", string(engine.GainLastInterval))),
		OverheadSource: engine.OverheadSource(c.DefaultQuery("overhead", string(engine.OverheadRecent))),
		Valuation:      engine.Valuation(c.DefaultQuery("valuation", string(engine.ValuationCarcass))),
	}

	var err error
	if p.TargetWeightKg, err = queryFloat(c, "target_weight"); err != nil {
		return p, err
	}
	if raw := c.Query("target_date"); raw != "" {
		if p.TargetDate, err = time.Parse(dateLayout, raw); err != nil {
			return p, fmt.Errorf("target_date must use %s", dateLayout)
		}
	}
	if p.CustomGcaa, err = queryFloat(c, "custom_gcaa"); err != nil {
		return p, err
	}
	if p.CustomMonthlyOverhead, err = queryDecimal(c, "monthly_overhead"); err != nil {
		return p, err
	}
	if p.CarcassPricePerKg, err = queryDecimal(c, "carcass_price"); err != nil {
		return p, err
	}
	if p.YieldPercent, err = queryFloat(c, "yield"); err != nil {
		return p, err
	}
	if p.LivePricePerKg, err = queryDecimal(c, "live_price"); err != nil {
		return p, err
	}
	if raw := c.Query("groups"); raw != "" {
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				p.Groups = append(p.Groups, g)
			}
		}
	}
	return p, nil
}

func queryFloat(c *gin.Context, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return f, nil
}

func queryDecimal(c *gin.Context, key string) (decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number", key)
	}
	return d, nil
}

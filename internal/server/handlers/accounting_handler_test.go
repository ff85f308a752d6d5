package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/engine"
	"github.com/mamadbah2/feedlot/internal/repository"
	"github.com/mamadbah2/feedlot/internal/service/accounting"
	"github.com/mamadbah2/feedlot/internal/service/digest"
)

type fakeService struct {
	err       error
	run       *models.StockRecalculation
	params    engine.ProjectionParams
	day       time.Time
	valuation accounting.Valuation
}

func (f *fakeService) CostReport(_ context.Context, farmID string) (*accounting.CostReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &accounting.CostReport{FarmID: farmID, Total: decimal.RequireFromString("1234.5")}, nil
}

func (f *fakeService) GrowthReport(_ context.Context, farmID string) (*accounting.GrowthReport, error) {
	return &accounting.GrowthReport{FarmID: farmID}, f.err
}

func (f *fakeService) Project(_ context.Context, farmID string, params engine.ProjectionParams) (*accounting.ProjectionReport, error) {
	f.params = params
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &accounting.ProjectionReport{FarmID: farmID}, f.err
}

func (f *fakeService) RecalculateStock(_ context.Context, _ string) (*models.StockRecalculation, error) {
	return f.run, f.err
}

func (f *fakeService) FeedStockReport(_ context.Context, farmID string) (*accounting.FeedStockReport, error) {
	return &accounting.FeedStockReport{FarmID: farmID}, f.err
}

func (f *fakeService) WeighingDay(_ context.Context, farmID string, day time.Time) (*accounting.WeighingDayReport, error) {
	f.day = day
	return &accounting.WeighingDayReport{FarmID: farmID, Date: day}, f.err
}

func (f *fakeService) VeterinaryDay(_ context.Context, farmID string, day time.Time) (*accounting.VeterinaryDayReport, error) {
	f.day = day
	return &accounting.VeterinaryDayReport{FarmID: farmID, Date: day}, f.err
}

func (f *fakeService) AnimalProfile(_ context.Context, _, animalID string, valuation accounting.Valuation) (*models.AnimalProfile, error) {
	f.valuation = valuation
	if f.err != nil {
		return nil, f.err
	}
	return &models.AnimalProfile{Animal: models.Animal{ID: animalID}}, nil
}

type fakeDigest struct {
	to  string
	err error
}

func (f *fakeDigest) SendDigest(_ context.Context, _, to string) error {
	f.to = to
	return f.err
}

func newTestRouter(h *AccountingHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	farms := r.Group("/farms/:farmID")
	farms.GET("/costs", h.Costs)
	farms.GET("/projections", h.Projections)
	farms.GET("/animals/:animalID", h.Animal)
	farms.POST("/feeds/recalculate", h.RecalculateStock)
	farms.GET("/weighings/:date", h.WeighingDay)
	farms.GET("/veterinary/:date", h.VeterinaryDay)
	farms.POST("/digest", h.SendDigest)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestAccountingHandler_Costs(t *testing.T) {
	r := newTestRouter(NewAccountingHandler(&fakeService{}, nil, nil))

	rec := serve(r, http.MethodGet, "/farms/farm-1/costs", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "farm-1", body["farm_id"])
	assert.Equal(t, "1234.5", body["total"])
}

func TestAccountingHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown farm", accounting.ErrUnknownFarm, http.StatusBadRequest},
		{"not found", fmt.Errorf("animal x: %w", repository.ErrNotFound), http.StatusNotFound},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(NewAccountingHandler(&fakeService{err: tt.err}, nil, nil))
			rec := serve(r, http.MethodGet, "/farms/farm-1/animals/x", "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAccountingHandler_ProjectionQuery(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(NewAccountingHandler(svc, nil, nil))

	rec := serve(r, http.MethodGet,
		"/farms/farm-1/projections?mode=date&target_date=2026-06-01&gain=custom&custom_gcaa=1.2"+
			"&overhead=custom&monthly_overhead=3000&valuation=live&live_price=25&groups=pen-a,%20pen-b", "")
	require.Equal(t, http.StatusOK, rec.Code)

	p := svc.params
	assert.Equal(t, engine.TargetDate, p.Mode)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), p.TargetDate)
	assert.Equal(t, engine.GainCustom, p.GainSource)
	assert.Equal(t, 1.2, p.CustomGcaa)
	assert.Equal(t, engine.OverheadCustom, p.OverheadSource)
	assert.True(t, decimal.NewFromInt(3000).Equal(p.CustomMonthlyOverhead))
	assert.Equal(t, engine.ValuationLive, p.Valuation)
	assert.True(t, decimal.NewFromInt(25).Equal(p.LivePricePerKg))
	assert.Equal(t, []string{"pen-a", "pen-b"}, p.Groups)
}

func TestAccountingHandler_ProjectionDefaultsAndValidation(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(NewAccountingHandler(svc, nil, nil))

	rec := serve(r, http.MethodGet, "/farms/farm-1/projections?target_weight=450&carcass_price=60&yield=52", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, engine.TargetWeight, svc.params.Mode)
	assert.Equal(t, engine.GainLastInterval, svc.params.GainSource)
	assert.Equal(t, engine.OverheadRecent, svc.params.OverheadSource)
	assert.Equal(t, engine.ValuationCarcass, svc.params.Valuation)

	rec = serve(r, http.MethodGet, "/farms/farm-1/projections?target_weight=450", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "carcass valuation without yield")

	rec = serve(r, http.MethodGet, "/farms/farm-1/projections?target_weight=heavy", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, http.MethodGet, "/farms/farm-1/projections?mode=date&target_date=01/06/2026", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountingHandler_AnimalValuation(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(NewAccountingHandler(svc, nil, nil))

	rec := serve(r, http.MethodGet, "/farms/farm-1/animals/a1?live_price=20&carcass_price=50&yield=55", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decimal.NewFromInt(20).Equal(svc.valuation.LivePricePerKg))
	assert.True(t, decimal.NewFromInt(50).Equal(svc.valuation.CarcassPricePerKg))
	assert.Equal(t, 55.0, svc.valuation.YieldPercent)

	rec = serve(r, http.MethodGet, "/farms/farm-1/animals/a1?live_price=cheap", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountingHandler_RecalculateStockPartialWrite(t *testing.T) {
	run := &models.StockRecalculation{RunID: "run-1", FeedsFailed: []string{"corn"}}
	svc := &fakeService{run: run, err: fmt.Errorf("%w: 1 of 2 feeds failed", accounting.ErrPartialStockWrite)}
	r := newTestRouter(NewAccountingHandler(svc, nil, nil))

	rec := serve(r, http.MethodPost, "/farms/farm-1/feeds/recalculate", "")
	require.Equal(t, http.StatusMultiStatus, rec.Code)

	var body struct {
		Run   models.StockRecalculation `json:"run"`
		Error string                    `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.Run.RunID)
	assert.Equal(t, []string{"corn"}, body.Run.FeedsFailed)
	assert.Contains(t, body.Error, "partially written")
}

func TestAccountingHandler_DayRoutes(t *testing.T) {
	svc := &fakeService{}
	r := newTestRouter(NewAccountingHandler(svc, nil, nil))

	rec := serve(r, http.MethodGet, "/farms/farm-1/weighings/2026-03-06", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), svc.day)

	rec = serve(r, http.MethodGet, "/farms/farm-1/veterinary/2026-03-07", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, svc.day.Day())

	rec = serve(r, http.MethodGet, "/farms/farm-1/veterinary/yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountingHandler_SendDigest(t *testing.T) {
	d := &fakeDigest{}
	r := newTestRouter(NewAccountingHandler(&fakeService{}, d, nil))

	rec := serve(r, http.MethodPost, "/farms/farm-1/digest", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, d.to)

	rec = serve(r, http.MethodPost, "/farms/farm-1/digest", `{"to":"224600000000"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "224600000000", d.to)

	rec = serve(r, http.MethodPost, "/farms/farm-1/digest", `{"to":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	d.err = digest.ErrNoRecipient
	rec = serve(r, http.MethodPost, "/farms/farm-1/digest", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	d.err = errors.New("whatsapp api error")
	rec = serve(r, http.MethodPost, "/farms/farm-1/digest", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAccountingHandler_SendDigestNotConfigured(t *testing.T) {
	r := newTestRouter(NewAccountingHandler(&fakeService{}, nil, nil))

	rec := serve(r, http.MethodPost, "/farms/farm-1/digest", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

func carcassParams() ProjectionParams {
	return ProjectionParams{
		Mode:              TargetWeight,
		TargetWeightKg:    420,
		GainSource:        GainLastInterval,
		OverheadSource:    OverheadRecent,
		Valuation:         ValuationCarcass,
		CarcassPricePerKg: dec("10"),
		YieldPercent:      50,
	}
}

func TestProject_TargetWeight(t *testing.T) {
	today := date(2024, 6, 1)
	animal := activeAnimal("a1", "g1", date(2024, 1, 1))

	p := Project(ProjectionInput{
		Animal:          animal,
		CurrentWeightKg: 400,
		Gcaa:            2,
		DailyRationCost: dec("16"),
		DailyOverhead:   dec("4"),
		ExistingCost:    dec("1000"),
	}, carcassParams(), today)

	assert.Equal(t, 10.0, p.DaysNeeded)
	assert.Equal(t, 420.0, p.ProjectedWeightKg)
	assert.Equal(t, date(2024, 6, 11), p.TargetDate)
	assertDecimal(t, "20", p.DailyCost)
	assertDecimal(t, "200", p.IncrementalCost)
	assertDecimal(t, "2100", p.SaleValue)
	assertDecimal(t, "900", p.Profit)
}

func TestProject_AlreadyAboveTarget(t *testing.T) {
	p := Project(ProjectionInput{
		Animal:          activeAnimal("a1", "g1", date(2024, 1, 1)),
		CurrentWeightKg: 450,
		Gcaa:            2,
		DailyRationCost: dec("16"),
	}, carcassParams(), date(2024, 6, 1))

	assert.Equal(t, 0.0, p.DaysNeeded)
	assert.Equal(t, 450.0, p.ProjectedWeightKg)
	assertDecimal(t, "0", p.IncrementalCost)
	assert.Equal(t, date(2024, 6, 1), p.TargetDate)
}

func TestProject_TargetDate(t *testing.T) {
	params := carcassParams()
	params.Mode = TargetDate
	params.TargetDate = date(2024, 6, 16)

	p := Project(ProjectionInput{
		Animal:          activeAnimal("a1", "g1", date(2024, 1, 1)),
		CurrentWeightKg: 400,
		Gcaa:            1.5,
		DailyRationCost: dec("10"),
	}, params, date(2024, 6, 1))

	assert.Equal(t, 15.0, p.DaysNeeded)
	assert.Equal(t, 422.5, p.ProjectedWeightKg)
	assert.Equal(t, date(2024, 6, 16), p.TargetDate)
	assertDecimal(t, "150", p.IncrementalCost)
}

func TestProject_TargetDateInThePast(t *testing.T) {
	params := carcassParams()
	params.Mode = TargetDate
	params.TargetDate = date(2024, 5, 1)

	p := Project(ProjectionInput{CurrentWeightKg: 400, Gcaa: 1.5}, params, date(2024, 6, 1))

	assert.Equal(t, 0.0, p.DaysNeeded)
	assert.Equal(t, 400.0, p.ProjectedWeightKg)
	assert.Equal(t, date(2024, 6, 1), p.TargetDate)
}

func TestEffectiveGcaa_SubstitutesEpsilon(t *testing.T) {
	assert.Equal(t, MinGcaa, EffectiveGcaa(0))
	assert.Equal(t, MinGcaa, EffectiveGcaa(-1.2))
	assert.Equal(t, 1.2, EffectiveGcaa(1.2))

	days := DaysToWeight(400, 401, 0)
	assert.InDelta(t, 1000, days, 1e-6)
}

func TestSaleValue_Live(t *testing.T) {
	params := carcassParams()
	params.Valuation = ValuationLive
	params.LivePricePerKg = dec("5")

	assertDecimal(t, "1500", SaleValue(300, params))
}

func TestProjectionParams_Validate(t *testing.T) {
	cases := map[string]func(p *ProjectionParams){
		"non-positive target weight": func(p *ProjectionParams) { p.TargetWeightKg = 0 },
		"missing target date":        func(p *ProjectionParams) { p.Mode = TargetDate },
		"unknown mode":               func(p *ProjectionParams) { p.Mode = "age" },
		"unknown gain source":        func(p *ProjectionParams) { p.GainSource = "median" },
		"negative custom overhead": func(p *ProjectionParams) {
			p.OverheadSource = OverheadCustom
			p.CustomMonthlyOverhead = dec("-1")
		},
		"yield above 100":      func(p *ProjectionParams) { p.YieldPercent = 120 },
		"negative live price":  func(p *ProjectionParams) { p.Valuation = ValuationLive; p.LivePricePerKg = dec("-2") },
		"unknown valuation":    func(p *ProjectionParams) { p.Valuation = "auction" },
		"unknown overhead src": func(p *ProjectionParams) { p.OverheadSource = "yearly" },
	}

	require.NoError(t, carcassParams().Validate())
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			params := carcassParams()
			mutate(&params)
			err := params.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidProjection))
		})
	}
}

func TestDailyOverheadPerAnimal(t *testing.T) {
	today := date(2024, 1, 31)
	expenses := []models.GeneralExpense{
		{Date: date(2023, 12, 31), Amount: dec("5000")},
		{Date: date(2024, 1, 1), Amount: dec("200")},
		{Date: date(2024, 1, 31), Amount: dec("400")},
	}

	t.Run("recent expenses", func(t *testing.T) {
		got := DailyOverheadPerAnimal(carcassParams(), expenses, 2, today)
		assertDecimal(t, "10", got)
	})

	t.Run("custom monthly amount", func(t *testing.T) {
		params := carcassParams()
		params.OverheadSource = OverheadCustom
		params.CustomMonthlyOverhead = dec("900")
		assertDecimal(t, "10", DailyOverheadPerAnimal(params, expenses, 3, today))
	})

	t.Run("empty herd counts as one", func(t *testing.T) {
		assertDecimal(t, "20", DailyOverheadPerAnimal(carcassParams(), expenses, 0, today))
	})
}

func TestProjectHerd_FiltersAndUsesCosts(t *testing.T) {
	today := date(2024, 2, 1)
	a1 := activeAnimal("a1", "g1", date(2024, 1, 1))
	a2 := activeAnimal("a2", "g2", date(2024, 1, 1))
	a2.LastWeight = 380
	loose := activeAnimal("loose", "", date(2024, 1, 1))
	loose.RegistrationWeight = 300
	sold := passiveAnimal("sold", "g1", date(2024, 1, 1), date(2024, 1, 20))

	snapshot := &models.Snapshot{
		Animals: []models.Animal{a1, a2, loose, sold},
		Weighings: []models.Weighing{
			{AnimalID: "a1", Date: date(2024, 1, 21), WeightKg: 410},
			{AnimalID: "a1", Date: date(2024, 1, 1), WeightKg: 380},
			{AnimalID: "a1", Date: date(2024, 1, 11), WeightKg: 390},
		},
		Feeds: []models.Feed{{ID: "corn", PricePerKg: dec("2.5")}},
		Rations: []models.Ration{
			{GroupID: "g1", StartDate: ptr(date(2024, 1, 1)), Items: []models.RationItem{{FeedID: "corn", AmountKg: 4}}},
		},
	}
	breakdowns := []models.CostBreakdown{{AnimalID: "a1", Total: dec("2000")}}

	params := carcassParams()
	params.Groups = []string{"g1", models.UngroupedKey}

	projections := ProjectHerd(snapshot, breakdowns, params, today)
	require.Len(t, projections, 2)

	a1p := projections[0]
	assert.Equal(t, "a1", a1p.AnimalID)
	assert.Equal(t, 410.0, a1p.CurrentWeightKg)
	assert.Equal(t, 2.0, a1p.Gcaa)
	assert.Equal(t, 5.0, a1p.DaysNeeded)
	assertDecimal(t, "10", a1p.DailyCost)
	assertDecimal(t, "2000", a1p.CurrentCost)

	looseP := projections[1]
	assert.Equal(t, "loose", looseP.AnimalID)
	assert.Equal(t, 300.0, looseP.CurrentWeightKg)
	assert.Equal(t, MinGcaa, looseP.Gcaa)
	assertDecimal(t, "0", looseP.DailyCost)
}

func TestProjectHerd_CustomGain(t *testing.T) {
	a := activeAnimal("a1", "g1", date(2024, 1, 1))
	a.RegistrationWeight = 400
	snapshot := &models.Snapshot{Animals: []models.Animal{a}}

	params := carcassParams()
	params.GainSource = GainCustom
	params.CustomGcaa = 1.0

	projections := ProjectHerd(snapshot, nil, params, date(2024, 2, 1))
	require.Len(t, projections, 1)
	assert.Equal(t, 20.0, projections[0].DaysNeeded)
}

func TestSummarizeProjections(t *testing.T) {
	summary := SummarizeProjections([]models.Projection{
		{Profit: dec("100")},
		{Profit: dec("-40")},
		{Profit: dec("240")},
	})

	assert.Equal(t, 3, summary.Count)
	assertDecimal(t, "300", summary.TotalProfit)
	assertDecimal(t, "100", summary.AverageProfit)

	empty := SummarizeProjections(nil)
	assert.Equal(t, 0, empty.Count)
	assertDecimal(t, "0", empty.AverageProfit)
}

package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func activeAnimal(id, group string, registered time.Time) models.Animal {
	return models.Animal{
		ID:               id,
		TagNumber:        "TR-" + id,
		GroupID:          group,
		RegistrationDate: registered,
		Status:           models.StatusActive,
	}
}

func passiveAnimal(id, group string, registered, deactivated time.Time) models.Animal {
	a := activeAnimal(id, group, registered)
	a.Status = models.StatusPassive
	a.DeactivatedAt = ptr(deactivated)
	return a
}

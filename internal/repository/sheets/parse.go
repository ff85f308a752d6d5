package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

const dateLayout = "2006-01-02"

func cell(row []interface{}, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(value) > 10 {
		value = value[:10]
	}
	return time.Parse(dateLayout, value)
}

// parseOptionalDate returns nil for an empty cell.
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseFloat(value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
}

// parseOptionalFloat reads an empty cell as zero.
func parseOptionalFloat(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	return parseFloat(value)
}

func parseMoney(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
}

// parseRationContent reads "feed:amount" pairs separated by semicolons,
// e.g. "corn:4.5;straw:2".
func parseRationContent(value string) ([]models.RationItem, error) {
	items := make([]models.RationItem, 0)
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		feedID, amount, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("ration item %q: missing amount", part)
		}
		kg, err := parseFloat(strings.TrimSpace(amount))
		if err != nil {
			return nil, fmt.Errorf("ration item %q: %w", part, err)
		}
		items = append(items, models.RationItem{FeedID: strings.TrimSpace(feedID), AmountKg: kg})
	}
	return items, nil
}

// columnLetter converts a zero-based column index to its A1 letter.
func columnLetter(idx int) string {
	letters := ""
	for idx >= 0 {
		letters = string(rune('A'+idx%26)) + letters
		idx = idx/26 - 1
	}
	return letters
}

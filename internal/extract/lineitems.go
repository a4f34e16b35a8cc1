package extract

import (
	"regexp"
	"strings"

	"github.com/garyjia/invoice-qc/internal/models"
)

var (
	headerDescPattern  = regexp.MustCompile(`(?i)description`)
	headerQtyPattern   = regexp.MustCompile(`(?i)qty|quantity`)
	headerPricePattern = regexp.MustCompile(`(?i)rate|price`)
	totalRowPattern    = regexp.MustCompile(`(?i)total`)
)

// defaultDescription is used when every leading token of a row turned out to
// be numeric and nothing is left to describe the item.
const defaultDescription = "Item"

// ExtractLineItems heuristically parses the itemized section of an invoice.
// It locates a header line containing "description" plus a quantity or price
// column, then segments each following line until a "total" row or the end of
// input. Columns are positionally inferred: the last token must parse as an
// amount (the line total) or the row is skipped, the first parseable leading
// token becomes the quantity and the next one the unit price.
func ExtractLineItems(text string) []models.LineItem {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(ln); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	headerIndex := -1
	for i, ln := range lines {
		if headerDescPattern.MatchString(ln) &&
			(headerQtyPattern.MatchString(ln) || headerPricePattern.MatchString(ln)) {
			headerIndex = i
			break
		}
	}
	if headerIndex < 0 {
		return nil
	}

	var items []models.LineItem
	for _, ln := range lines[headerIndex+1:] {
		if totalRowPattern.MatchString(ln) {
			break
		}

		parts := strings.Fields(ln)
		if len(parts) == 0 {
			continue
		}

		lineTotal := ParseAmount(parts[len(parts)-1])
		if lineTotal == nil {
			continue
		}

		var qty, unitPrice *float64
		var descTokens []string
		for _, p := range parts[:len(parts)-1] {
			if qty == nil {
				if q := ParseAmount(p); q != nil {
					qty = q
					continue
				}
			}
			if qty != nil && unitPrice == nil {
				if u := ParseAmount(p); u != nil {
					unitPrice = u
					continue
				}
			}
			descTokens = append(descTokens, p)
		}

		description := defaultDescription
		if len(descTokens) > 0 {
			description = strings.Join(descTokens, " ")
		}

		items = append(items, models.LineItem{
			Description: description,
			Quantity:    qty,
			UnitPrice:   unitPrice,
			LineTotal:   lineTotal,
		})
	}

	return items
}

// internal/gls/annotations.go
package gls

import (
	"strconv"
	"strings"

	"github.com/simonepenna/adibodyes/internal/domain"
)

const maxAnnotationSKULen = 20

// ParseAnnotations reads the "SLIP.S.BLx2, SLIP.M.BLx1" notation the warehouse
// writes into the consignment observation field and returns quantities per
// SKU. An entry without a trailing xN counts as one unit. Anything that does
// not look like a SKU is ignored.
func ParseAnnotations(observation string) map[string]int {
	result := make(map[string]int)
	for _, part := range strings.Split(observation, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}

		sku := part
		qty := 1
		// The quantity separator is the last 'x', since sizes like XS or XL
		// put the letter inside the SKU itself.
		if i := strings.LastIndex(part, "X"); i > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(part[i+1:])); err == nil && n > 0 {
				sku = strings.TrimSpace(part[:i])
				qty = n
			}
		}

		if !validAnnotationSKU(sku) {
			continue
		}
		result[sku] += qty
	}
	return result
}

func validAnnotationSKU(sku string) bool {
	if len(sku) == 0 || len(sku) > maxAnnotationSKULen {
		return false
	}
	if strings.ContainsAny(sku, " /\\:;") {
		return false
	}
	return domain.ValidSKU(sku)
}

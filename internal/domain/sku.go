// internal/domain/sku.go
package domain

import "strings"

// SKU identifiers follow the MODEL.SIZE.COLOR convention, e.g. SLIP.XS.BE.
// Anything that does not decompose into at least three non-empty dot-separated
// segments is rejected at the boundary and never enters an aggregate.

// ValidSKU reports whether s is a well-formed SKU.
func ValidSKU(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) < 3 {
		return false
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return false
		}
	}
	return true
}

// ParseSKU derives the display model and size from a SKU.
// SLIP.XS.BE -> modelo "SLIP BE", talla "XS". Malformed SKUs fall back to
// the raw string with an empty talla.
func ParseSKU(sku string) (modelo, talla string) {
	parts := strings.Split(sku, ".")
	if len(parts) >= 3 {
		return parts[0] + " " + parts[2], parts[1]
	}
	return sku, ""
}

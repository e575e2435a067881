package extract

import (
	"context"
	"fmt"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
)

// Extractor reads field values out of an uploaded document. Keys are field ids.
type Extractor interface {
	Extract(ctx context.Context, name, contentType string, data []byte) (map[string]any, error)
}

// acordKeyMap renames extractor output keys to template field ids. Keys not
// listed keep their name.
var acordKeyMap = map[string]string{
	"certificate_date": "date",
	"name":             "applicant_name",
	"address":          "premises_address",
}

// MapACORDKeys renames raw extractor keys to field ids.
func MapACORDKeys(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if mapped, ok := acordKeyMap[k]; ok {
			k = mapped
		}
		out[k] = v
	}
	return out
}

// StaticACORDExtractor returns a fixed set of ACORD 125 values for every PDF.
// It stands in for a real OCR engine.
type StaticACORDExtractor struct{}

var _ Extractor = StaticACORDExtractor{}

// Extract implements Extractor.
func (StaticACORDExtractor) Extract(_ context.Context, name, contentType string, data []byte) (map[string]any, error) {
	if !IsPDF(name, contentType, data) {
		return nil, fmt.Errorf("%w: only PDF documents can be extracted", apperrors.ErrBadRequest)
	}
	return MapACORDKeys(map[string]any{
		"certificate_date":        "07/22/2024",
		"name":                    "The Laundry Genius Inc",
		"address":                 "7807 Evergreen Way, Everett, WA 98203-6427",
		"policy_number":           "BIP-4W906929-24-42",
		"carrier_name":            "Fidelity and Guaranty Insurance Company",
		"agency_name":             "Brooks Waterburn Corp",
		"agency_address":          "1105 Broadhollow Rd",
		"agency_city":             "Farmingdale",
		"agency_state":            "NY",
		"agency_zip":              "11735-4818",
		"proposed_effective_date": "09/01/2024",
		"policy_expiration_date":  "09/01/2025",
		"billing_plan_direct":     "True",
		"policy_premium":          "$3,932.00",
		"business_type":           "Corporation",
		"business_description":    "Laundromat Business",
	}), nil
}

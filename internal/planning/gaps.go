package planning

import (
	"context"
	"fmt"
	"strings"
)

type Gap struct {
	Category        string `json:"category"`
	Issue           string `json:"issue"`
	SuggestedAction string `json:"suggested_action"`
}

// vendorCategories are the planning categories a wedding cannot go without
// a booked vendor for.
var vendorCategories = []string{"venue", "catering", "photography", "florals", "music"}

// bookedStatuses are the vendor statuses that count as "taken care of".
// Matching is case-insensitive on both category and status.
var bookedStatuses = map[string]struct{}{
	"booked":       {},
	"confirmed":    {},
	"paid":         {},
	"deposit paid": {},
}

// AnalyzeGaps scans the tenant's vendor collection and reports every
// category without a satisfying booked vendor. Read-only.
func AnalyzeGaps(ctx context.Context, repo *Repo, tenantID uint64) ([]Gap, error) {
	page, err := repo.GetOrCreate(ctx, tenantID, KindVendors)
	if err != nil {
		return nil, err
	}
	var vendors []Vendor
	if err := page.DecodeItems(&vendors); err != nil {
		return nil, err
	}

	booked := make(map[string]bool)
	for _, v := range vendors {
		cat := strings.ToLower(strings.TrimSpace(v.Category))
		status := strings.ToLower(strings.TrimSpace(v.Status))
		if _, ok := bookedStatuses[status]; ok {
			booked[cat] = true
		}
	}

	gaps := make([]Gap, 0)
	for _, cat := range vendorCategories {
		if booked[cat] {
			continue
		}
		gaps = append(gaps, Gap{
			Category:        cat,
			Issue:           fmt.Sprintf("no %s booked yet", cat),
			SuggestedAction: fmt.Sprintf("shortlist and book a %s vendor", cat),
		})
	}
	return gaps, nil
}

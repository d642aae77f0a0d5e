package kernel

import (
	"strings"
	"time"

	"github.com/everafter-ai/everafter/internal/extract"
)

// negativeMarkers is the vocabulary an emotional-marker tag must hit before
// it counts as a stressor. Anything outside it is dropped.
var negativeMarkers = map[string]struct{}{
	"stressed":    {},
	"anxious":     {},
	"overwhelmed": {},
	"worried":     {},
	"frustrated":  {},
	"exhausted":   {},
	"pressured":   {},
	"nervous":     {},
}

// Merge reconciles extracted fields into k in place and reports whether
// anything changed. Absent fields never clear existing values.
func Merge(k *Kernel, f extract.Fields) bool {
	changed := false

	// scalars: overwrite only when present
	if f.Location != "" && f.Location != k.Location {
		k.Location = f.Location
		changed = true
	}
	if f.GuestCount > 0 && f.GuestCount != k.GuestCount {
		k.GuestCount = f.GuestCount
		changed = true
	}
	if f.BudgetTotal > 0 && f.BudgetTotal != k.BudgetTotal {
		k.BudgetTotal = f.BudgetTotal
		changed = true
	}
	if f.PlanningPhase != "" && f.PlanningPhase != k.PlanningPhase {
		k.PlanningPhase = f.PlanningPhase
		changed = true
	}
	// tone is last-write-wins, never accumulated
	if f.Tone != "" && f.Tone != k.Tone {
		k.Tone = f.Tone
		changed = true
	}

	if f.WeddingDate != "" {
		if d, ok := parseWeddingDate(f.WeddingDate); ok {
			if k.WeddingDate == nil || !k.WeddingDate.Equal(d) {
				k.WeddingDate = &d
				changed = true
			}
		}
	}

	if unionInto(&k.PartnerNames, f.PartnerNames) {
		changed = true
	}
	if len(k.PartnerNames) >= 2 {
		display := k.PartnerNames[0] + " & " + k.PartnerNames[1]
		if k.DisplayName != display {
			k.DisplayName = display
			changed = true
		}
	}

	if unionInto(&k.Vibe, f.Vibe) {
		changed = true
	}
	if unionInto(&k.Priorities, f.Priorities) {
		changed = true
	}
	if unionInto(&k.Occupations, f.Occupations) {
		changed = true
	}
	if unionInto(&k.Stressors, f.Stressors) {
		changed = true
	}

	// emotional markers feed stressors only through the negative vocabulary
	var derived []string
	for _, m := range f.EmotionalMarkers {
		if _, ok := negativeMarkers[strings.ToLower(strings.TrimSpace(m))]; ok {
			derived = append(derived, strings.ToLower(strings.TrimSpace(m)))
		}
	}
	if unionInto(&k.Stressors, derived) {
		changed = true
	}

	// repeated family mentions in a single turn escalate to a stressor
	if f.FamilyMentions >= 2 && !k.Stressors.Contains("family") {
		k.Stressors = append(k.Stressors, "family")
		changed = true
	}

	return changed
}

// parseWeddingDate anchors a date-only string to midday so a later timezone
// conversion cannot shift the stored date onto the previous calendar day.
func parseWeddingDate(s string) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC), true
}

// unionInto appends values missing from dst, preserving order of first
// appearance. Dedup is by exact equality.
func unionInto(dst *StringList, src []string) bool {
	changed := false
	for _, s := range src {
		s = strings.TrimSpace(s)
		if s == "" || dst.Contains(s) {
			continue
		}
		*dst = append(*dst, s)
		changed = true
	}
	return changed
}

package kernel

import (
	"testing"
	"time"

	"github.com/everafter-ai/everafter/internal/extract"
)

func TestMerge_OmissionNeverClears(t *testing.T) {
	k := &Kernel{
		TenantID:    1,
		Location:    "Lisbon",
		GuestCount:  80,
		BudgetTotal: 2_500_000,
		Tone:        "warm",
	}

	changed := Merge(k, extract.Fields{})
	if changed {
		t.Fatalf("empty fields should not report a change")
	}
	if k.Location != "Lisbon" || k.GuestCount != 80 || k.BudgetTotal != 2_500_000 || k.Tone != "warm" {
		t.Fatalf("omitted fields were cleared: %+v", k)
	}
}

func TestMerge_ScalarOverwriteAndToneLWW(t *testing.T) {
	k := &Kernel{TenantID: 1, Tone: "formal", Location: "Lisbon"}

	Merge(k, extract.Fields{Tone: "playful", GuestCount: 150})
	if k.Tone != "playful" {
		t.Fatalf("tone should be last-write-wins, got %q", k.Tone)
	}
	if k.GuestCount != 150 {
		t.Fatalf("guest count not set: %d", k.GuestCount)
	}
	if k.Location != "Lisbon" {
		t.Fatalf("location clobbered: %q", k.Location)
	}
}

func TestMerge_NameUnionIdempotentAndDisplayName(t *testing.T) {
	k := &Kernel{TenantID: 1}

	Merge(k, extract.Fields{PartnerNames: []string{"Emma", "James"}})
	if len(k.PartnerNames) != 2 || k.PartnerNames[0] != "Emma" || k.PartnerNames[1] != "James" {
		t.Fatalf("unexpected names: %v", k.PartnerNames)
	}
	if k.DisplayName != "Emma & James" {
		t.Fatalf("unexpected display name: %q", k.DisplayName)
	}

	// merging the same name again must not duplicate it
	Merge(k, extract.Fields{PartnerNames: []string{"Emma"}})
	if len(k.PartnerNames) != 2 {
		t.Fatalf("name union not idempotent: %v", k.PartnerNames)
	}
}

func TestMerge_DateAnchoredToMidday(t *testing.T) {
	k := &Kernel{TenantID: 1}

	Merge(k, extract.Fields{WeddingDate: "2025-06-14"})
	if k.WeddingDate == nil {
		t.Fatalf("wedding date not set")
	}
	if k.WeddingDate.Hour() != 12 {
		t.Fatalf("expected midday anchor, got hour %d", k.WeddingDate.Hour())
	}
	// even viewed from a timezone west of UTC the calendar date must hold
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	if got := k.WeddingDate.In(ny).Format("2006-01-02"); got != "2025-06-14" {
		t.Fatalf("date shifted across timezone: %s", got)
	}
}

func TestMerge_InvalidDateIgnored(t *testing.T) {
	k := &Kernel{TenantID: 1}
	Merge(k, extract.Fields{WeddingDate: "next summer"})
	if k.WeddingDate != nil {
		t.Fatalf("unparseable date should be ignored")
	}
}

func TestMerge_EmotionalMarkersFilteredIntoStressors(t *testing.T) {
	k := &Kernel{TenantID: 1}

	Merge(k, extract.Fields{EmotionalMarkers: []string{"Overwhelmed", "excited", "anxious"}})
	if !k.Stressors.Contains("overwhelmed") || !k.Stressors.Contains("anxious") {
		t.Fatalf("negative markers missing: %v", k.Stressors)
	}
	if k.Stressors.Contains("excited") {
		t.Fatalf("positive marker leaked into stressors: %v", k.Stressors)
	}
}

func TestMerge_FamilyMentionEscalation(t *testing.T) {
	k := &Kernel{TenantID: 1}

	Merge(k, extract.Fields{FamilyMentions: 1})
	if k.Stressors.Contains("family") {
		t.Fatalf("single mention should not escalate")
	}

	Merge(k, extract.Fields{FamilyMentions: 2})
	if !k.Stressors.Contains("family") {
		t.Fatalf("two mentions should add the family stressor")
	}

	// idempotent: no duplicate, no removal
	Merge(k, extract.Fields{FamilyMentions: 3})
	count := 0
	for _, s := range k.Stressors {
		if s == "family" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("family stressor duplicated: %v", k.Stressors)
	}
}

func TestMerge_SetUnionFields(t *testing.T) {
	k := &Kernel{TenantID: 1, Vibe: StringList{"rustic"}}

	Merge(k, extract.Fields{Vibe: []string{"rustic", "garden"}, Priorities: []string{"food"}})
	if len(k.Vibe) != 2 {
		t.Fatalf("vibe union wrong: %v", k.Vibe)
	}
	if len(k.Priorities) != 1 || k.Priorities[0] != "food" {
		t.Fatalf("priorities wrong: %v", k.Priorities)
	}
}

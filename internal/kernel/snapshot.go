package kernel

import (
	"fmt"
	"strings"
)

// Snapshot renders the compact fact summary fed back into the model's
// system prompt. decisionLines come from the decision tracker so the kernel
// record does not carry a duplicate copy of decision state.
func Snapshot(k *Kernel, decisionLines []string) string {
	var b strings.Builder

	b.WriteString("Known facts about this couple:\n")
	if len(k.PartnerNames) > 0 {
		fmt.Fprintf(&b, "- partners: %s\n", strings.Join(k.PartnerNames, ", "))
	}
	if k.WeddingDate != nil {
		fmt.Fprintf(&b, "- wedding date: %s\n", k.WeddingDate.Format("2006-01-02"))
	}
	if k.Location != "" {
		fmt.Fprintf(&b, "- location: %s\n", k.Location)
	}
	if k.GuestCount > 0 {
		fmt.Fprintf(&b, "- guest count: %d\n", k.GuestCount)
	}
	if k.BudgetTotal > 0 {
		fmt.Fprintf(&b, "- total budget: %d (minor units)\n", k.BudgetTotal)
	}
	if k.PlanningPhase != "" {
		fmt.Fprintf(&b, "- planning phase: %s\n", k.PlanningPhase)
	}
	if k.Tone != "" {
		fmt.Fprintf(&b, "- preferred tone: %s\n", k.Tone)
	}
	if len(k.Vibe) > 0 {
		fmt.Fprintf(&b, "- vibe: %s\n", strings.Join(k.Vibe, ", "))
	}
	if len(k.Priorities) > 0 {
		fmt.Fprintf(&b, "- priorities: %s\n", strings.Join(k.Priorities, ", "))
	}
	if len(k.Occupations) > 0 {
		fmt.Fprintf(&b, "- occupations: %s\n", strings.Join(k.Occupations, ", "))
	}
	if len(k.Stressors) > 0 {
		fmt.Fprintf(&b, "- stressors: %s\n", strings.Join(k.Stressors, ", "))
	}
	for _, line := range decisionLines {
		fmt.Fprintf(&b, "- decision: %s\n", line)
	}
	fmt.Fprintf(&b, "- onboarding step: %d of %d\n", k.OnboardingStep, FinalStep)

	return b.String()
}

package convo

import (
	"fmt"
	"strings"
)

// stepGuidance tells the model what each onboarding step is trying to learn.
// Advancement is declared by the model (readyToAdvance), never counted in
// turns, so the step itself has to be spelled out in the directive.
var stepGuidance = [8]string{
	0: "Introduce yourself warmly and learn both partners' names.",
	1: "Learn the wedding date, or how far along date planning is.",
	2: "Learn where the wedding will be held, or candidate locations.",
	3: "Learn the expected guest count, even a rough range.",
	4: "Learn the total budget they are working with.",
	5: "Learn the vibe and style they want, and their top priorities.",
	6: "Learn what is stressing them out and what they dread organizing.",
	7: "Wrap up: summarize what you know and hand off to everyday planning.",
}

const factsContract = `After your reply, append exactly one <facts>...</facts> block containing a
JSON object. Include only fields you learned this turn: partnerNames,
weddingDate (YYYY-MM-DD), location, guestCount, budgetTotal (integer cents),
planningPhase, tone, vibe, priorities, occupations, stressors,
emotionalMarkers, familyMentions (integer), readyToAdvance (boolean).
Set readyToAdvance to true only when the current step's goal is met.
The block is machine-read and stripped before the couple sees your reply.`

const persona = `You are Everafter, a calm and practical wedding-planning assistant. You are
talking to an engaged couple. Be warm, concrete, and brief; one question at
a time.`

// systemDirective assembles the full system prompt for a turn.
func systemDirective(snapshot string, step int, firstTurn bool) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\n")
	b.WriteString(snapshot)
	b.WriteString("\n")
	if step >= 0 && step < len(stepGuidance) {
		fmt.Fprintf(&b, "Current onboarding goal (step %d): %s\n", step, stepGuidance[step])
	}
	if firstTurn {
		b.WriteString("This is the very first contact. Open with a short, welcoming greeting and your first question. There is no user message to respond to yet.\n")
	}
	b.WriteString("\n")
	b.WriteString(factsContract)
	return b.String()
}

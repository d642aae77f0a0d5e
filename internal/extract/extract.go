// Package extract isolates the structured-data fragment the model embeds in
// its replies. Everything here is tolerant: a malformed fragment never stops
// the reply from reaching the couple.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	openTag  = "<facts>"
	closeTag = "</facts>"
)

// Fields is the documented fragment schema. Every field is optional; the
// merge engine treats absence as "no change".
type Fields struct {
	PartnerNames     []string `json:"partnerNames,omitempty"`
	WeddingDate      string   `json:"weddingDate,omitempty"` // YYYY-MM-DD
	Location         string   `json:"location,omitempty"`
	GuestCount       int      `json:"guestCount,omitempty"`
	BudgetTotal      int64    `json:"budgetTotal,omitempty"` // minor units
	PlanningPhase    string   `json:"planningPhase,omitempty"`
	Tone             string   `json:"tone,omitempty"`
	Vibe             []string `json:"vibe,omitempty"`
	Priorities       []string `json:"priorities,omitempty"`
	Occupations      []string `json:"occupations,omitempty"`
	Stressors        []string `json:"stressors,omitempty"`
	EmotionalMarkers []string `json:"emotionalMarkers,omitempty"`
	FamilyMentions   int      `json:"familyMentions,omitempty"`
	ReadyToAdvance   bool     `json:"readyToAdvance,omitempty"`
}

// Result carries the user-visible text and whatever the fragment yielded.
// ParseErr is set only when a fragment was present but malformed; callers
// log it and move on.
type Result struct {
	DisplayText string
	Fields      Fields
	ParseErr    error

	hadBlock bool
}

// HasFragment reports whether a fragment was found at all (well-formed or
// not). Useful for telling "model sent nothing" apart from "model sent junk".
func (r Result) HasFragment() bool {
	return r.hadBlock
}

// Parse locates the first <facts>...</facts> block in raw, strips it (and
// any repeats) from the display text, and decodes its JSON body. It never
// returns an error: a malformed block is recorded on the result and
// otherwise discarded.
func Parse(raw string) Result {
	start := strings.Index(raw, openTag)
	if start < 0 {
		return Result{DisplayText: strings.TrimSpace(raw)}
	}
	end := strings.Index(raw[start+len(openTag):], closeTag)
	if end < 0 {
		// Unterminated block: drop everything from the open tag so the
		// fragment never leaks into the reply.
		return Result{
			DisplayText: strings.TrimSpace(raw[:start]),
			ParseErr:    fmt.Errorf("extract: unterminated %s block", openTag),
			hadBlock:    true,
		}
	}

	body := raw[start+len(openTag) : start+len(openTag)+end]
	display, extra := scrubBlocks(raw[:start], raw[start+len(openTag)+end+len(closeTag):])

	var f Fields
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &f); err != nil {
		return Result{
			DisplayText: display,
			ParseErr:    fmt.Errorf("extract: malformed fragment: %w", err),
			hadBlock:    true,
		}
	}
	res := Result{DisplayText: display, Fields: f, hadBlock: true}
	if extra {
		// the contract is a single block; only the first one counts, but
		// repeats must never leak raw JSON into the reply
		res.ParseErr = fmt.Errorf("extract: multiple %s blocks", openTag)
	}
	return res
}

// scrubBlocks removes any further <facts> blocks from the text after the
// first one, reporting whether any were found.
func scrubBlocks(head, tail string) (display string, extra bool) {
	display = head
	for {
		s := strings.Index(tail, openTag)
		if s < 0 {
			display += tail
			break
		}
		extra = true
		display += tail[:s]
		e := strings.Index(tail[s+len(openTag):], closeTag)
		if e < 0 {
			break
		}
		tail = tail[s+len(openTag)+e+len(closeTag):]
	}
	return strings.TrimSpace(display), extra
}

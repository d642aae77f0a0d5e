package convo

import (
	"context"
	"errors"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/everafter-ai/everafter/internal/ai"
	"github.com/everafter-ai/everafter/internal/decisions"
	"github.com/everafter-ai/everafter/internal/kernel"
)

// scriptedProvider replays canned replies and records what it was sent.
type scriptedProvider struct {
	replies []string
	calls   int
	last    []ai.Message
	err     error
}

func (p *scriptedProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	_ = ctx
	p.last = append([]ai.Message(nil), messages...)
	if p.err != nil {
		return "", p.err
	}
	reply := "ok"
	if p.calls < len(p.replies) {
		reply = p.replies[p.calls]
	}
	p.calls++
	return reply, nil
}

func newTestService(t *testing.T, prov ai.Provider) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Conversation{}, &Message{}, &kernel.Kernel{}, &decisions.Decision{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	svc := NewService(db, NewRepo(db), kernel.NewRepo(db), decisions.NewTracker(db), prov, 20)
	return svc, db
}

func TestHandleTurn_FirstTurnSystemOnlyGreeting(t *testing.T) {
	prov := &scriptedProvider{replies: []string{"Welcome! What are your names?"}}
	svc, db := newTestService(t, prov)

	res, err := svc.HandleTurn(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if res.ReplyText != "Welcome! What are your names?" {
		t.Fatalf("unexpected reply: %q", res.ReplyText)
	}
	if res.ConversationID == "" {
		t.Fatalf("expected a conversation id")
	}

	// system directive only, no user message
	if len(prov.last) != 1 || prov.last[0].Role != "system" {
		t.Fatalf("expected system-only input, got %d messages", len(prov.last))
	}

	// only the assistant greeting is persisted
	var msgs []Message
	if err := db.Order("id ASC").Find(&msgs).Error; err != nil {
		t.Fatalf("query messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != "assistant" {
		t.Fatalf("unexpected transcript: %+v", msgs)
	}

	// decision catalog seeded on first contact
	var count int64
	if err := db.Model(&decisions.Decision{}).Where("tenant_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count decisions: %v", err)
	}
	if count != int64(len(decisions.Catalog)) {
		t.Fatalf("decisions not seeded: %d", count)
	}
}

func TestHandleTurn_ExtractionMergesKernelAndDisplayName(t *testing.T) {
	prov := &scriptedProvider{replies: []string{
		"Hello!",
		"Emma and James, lovely!<facts>{\"partnerNames\":[\"Emma\",\"James\"]}</facts>",
	}}
	svc, db := newTestService(t, prov)
	ctx := context.Background()

	if _, err := svc.HandleTurn(ctx, 1, ""); err != nil {
		t.Fatalf("greeting turn: %v", err)
	}
	res, err := svc.HandleTurn(ctx, 1, "We're Emma and James")
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if strings.Contains(res.ReplyText, "<facts>") {
		t.Fatalf("fragment leaked: %q", res.ReplyText)
	}

	var k kernel.Kernel
	if err := db.Where("tenant_id = ?", 1).First(&k).Error; err != nil {
		t.Fatalf("load kernel: %v", err)
	}
	if len(k.PartnerNames) != 2 || k.PartnerNames[0] != "Emma" || k.PartnerNames[1] != "James" {
		t.Fatalf("names = %v", k.PartnerNames)
	}
	if k.DisplayName != "Emma & James" {
		t.Fatalf("display name = %q", k.DisplayName)
	}
}

func TestHandleTurn_StepAdvancesOnlyOnReadiness(t *testing.T) {
	prov := &scriptedProvider{replies: []string{
		"Hi there!",
		"Noted.<facts>{\"guestCount\":100}</facts>",
		"Great, moving on.<facts>{\"readyToAdvance\":true}</facts>",
	}}
	svc, _ := newTestService(t, prov)
	ctx := context.Background()

	r0, err := svc.HandleTurn(ctx, 1, "")
	if err != nil {
		t.Fatalf("turn 0: %v", err)
	}
	if r0.OnboardingStep != 0 {
		t.Fatalf("step moved without readiness: %d", r0.OnboardingStep)
	}

	r1, err := svc.HandleTurn(ctx, 1, "about 100 guests")
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if r1.OnboardingStep != 0 {
		t.Fatalf("step moved without readiness: %d", r1.OnboardingStep)
	}

	r2, err := svc.HandleTurn(ctx, 1, "that's everyone")
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if r2.OnboardingStep != 1 {
		t.Fatalf("expected step 1, got %d", r2.OnboardingStep)
	}
	if r2.IsComplete {
		t.Fatalf("complete before step 7")
	}
}

func TestHandleTurn_CompletesOnlyAtFinalStep(t *testing.T) {
	replies := []string{"Hi!"}
	for i := 0; i < kernel.FinalStep; i++ {
		replies = append(replies, "Onward.<facts>{\"readyToAdvance\":true}</facts>")
	}
	prov := &scriptedProvider{replies: replies}
	svc, _ := newTestService(t, prov)
	ctx := context.Background()

	if _, err := svc.HandleTurn(ctx, 1, ""); err != nil {
		t.Fatalf("greeting: %v", err)
	}

	var last *TurnResult
	prev := 0
	for i := 0; i < kernel.FinalStep; i++ {
		res, err := svc.HandleTurn(ctx, 1, "yes")
		if err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
		if res.OnboardingStep < prev {
			t.Fatalf("step decreased: %d -> %d", prev, res.OnboardingStep)
		}
		prev = res.OnboardingStep
		last = res
	}

	if last.OnboardingStep != kernel.FinalStep {
		t.Fatalf("final step = %d", last.OnboardingStep)
	}
	if !last.IsComplete {
		t.Fatalf("expected onboarding complete at step %d", kernel.FinalStep)
	}
}

func TestHandleTurn_ModelFailurePersistsNothing(t *testing.T) {
	prov := &scriptedProvider{err: errors.New("upstream timeout")}
	svc, db := newTestService(t, prov)

	_, err := svc.HandleTurn(context.Background(), 1, "")
	if err == nil {
		t.Fatalf("expected turn to abort")
	}

	var msgCount int64
	if err := db.Model(&Message{}).Count(&msgCount).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if msgCount != 0 {
		t.Fatalf("transcript written despite model failure: %d", msgCount)
	}

	var k kernel.Kernel
	if err := db.Where("tenant_id = ?", 1).First(&k).Error; err != nil {
		t.Fatalf("kernel should exist (lazy create): %v", err)
	}
	if k.OnboardingStep != 0 || len(k.PartnerNames) != 0 {
		t.Fatalf("kernel mutated despite failure: %+v", k)
	}
}

func TestHandleTurn_MalformedFragmentStillReplies(t *testing.T) {
	prov := &scriptedProvider{replies: []string{
		"Hi!",
		"Here's what I know.<facts>{broken json</facts>",
	}}
	svc, db := newTestService(t, prov)
	ctx := context.Background()

	if _, err := svc.HandleTurn(ctx, 1, ""); err != nil {
		t.Fatalf("greeting: %v", err)
	}
	res, err := svc.HandleTurn(ctx, 1, "hello")
	if err != nil {
		t.Fatalf("malformed fragment must not fail the turn: %v", err)
	}
	if !strings.Contains(res.ReplyText, "Here's what I know.") {
		t.Fatalf("reply lost: %q", res.ReplyText)
	}

	var k kernel.Kernel
	if err := db.Where("tenant_id = ?", 1).First(&k).Error; err != nil {
		t.Fatalf("load kernel: %v", err)
	}
	if k.OnboardingStep != 0 {
		t.Fatalf("step moved on junk fields: %d", k.OnboardingStep)
	}
}

func TestHandleTurn_EmptyMessageAfterFirstTurn(t *testing.T) {
	prov := &scriptedProvider{replies: []string{"Hi!"}}
	svc, _ := newTestService(t, prov)
	ctx := context.Background()

	if _, err := svc.HandleTurn(ctx, 1, ""); err != nil {
		t.Fatalf("greeting: %v", err)
	}
	if _, err := svc.HandleTurn(ctx, 1, ""); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestHandleTurn_PromptCarriesSnapshotAndStep(t *testing.T) {
	prov := &scriptedProvider{replies: []string{
		"Hi!",
		"Noted.<facts>{\"partnerNames\":[\"Emma\",\"James\"],\"readyToAdvance\":true}</facts>",
		"Next question.",
	}}
	svc, _ := newTestService(t, prov)
	ctx := context.Background()

	if _, err := svc.HandleTurn(ctx, 1, ""); err != nil {
		t.Fatalf("greeting: %v", err)
	}
	if _, err := svc.HandleTurn(ctx, 1, "We're Emma and James"); err != nil {
		t.Fatalf("turn: %v", err)
	}
	if _, err := svc.HandleTurn(ctx, 1, "what's next?"); err != nil {
		t.Fatalf("turn: %v", err)
	}

	system := prov.last[0]
	if system.Role != "system" {
		t.Fatalf("first message should be the system directive")
	}
	if !strings.Contains(system.Content, "Emma, James") {
		t.Fatalf("snapshot missing from directive:\n%s", system.Content)
	}
	if !strings.Contains(system.Content, "step 1") {
		t.Fatalf("current step missing from directive:\n%s", system.Content)
	}
	// history ends with the pending user message
	lastMsg := prov.last[len(prov.last)-1]
	if lastMsg.Role != "user" || lastMsg.Content != "what's next?" {
		t.Fatalf("pending user message not last: %+v", lastMsg)
	}
}

package convo

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/everafter-ai/everafter/internal/ai"
	"github.com/everafter-ai/everafter/internal/common"
	"github.com/everafter-ai/everafter/internal/decisions"
	"github.com/everafter-ai/everafter/internal/extract"
	"github.com/everafter-ai/everafter/internal/kernel"
)

// ErrEmptyMessage is returned when a turn after the first arrives without a
// user message.
var ErrEmptyMessage = errors.New("convo: message required after the opening turn")

type TurnResult struct {
	ReplyText      string `json:"message"`
	ConversationID string `json:"conversation_id"`
	OnboardingStep int    `json:"onboarding_step"`
	IsComplete     bool   `json:"is_onboarding_complete"`
}

// Service drives the onboarding conversation: it assembles context, calls
// the model, extracts facts, merges them into the kernel, and advances the
// step machine on model-declared readiness.
type Service struct {
	db                *gorm.DB
	repo              *Repo
	kernels           *kernel.Repo
	tracker           *decisions.Tracker
	provider          ai.Provider
	contextWindowSize int
}

func NewService(db *gorm.DB, repo *Repo, kernels *kernel.Repo, tracker *decisions.Tracker, provider ai.Provider, contextWindowSize int) *Service {
	if contextWindowSize <= 0 || contextWindowSize > 100 {
		contextWindowSize = 20
	}
	return &Service{
		db:                db,
		repo:              repo,
		kernels:           kernels,
		tracker:           tracker,
		provider:          provider,
		contextWindowSize: contextWindowSize,
	}
}

// HandleTurn runs one onboarding turn. A model failure aborts the turn with
// nothing persisted; all writes for a successful turn land in one
// transaction.
func (s *Service) HandleTurn(ctx context.Context, tenantID uint64, userMessage string) (*TurnResult, error) {
	conv, firstTurn, err := s.ensureConversation(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !firstTurn && userMessage == "" {
		// a conversation whose opening model call failed has a row but
		// no transcript yet; let the greeting be retried
		recent, err := s.repo.ListRecentMessagesDesc(ctx, tenantID, conv.ConversationID, 1)
		if err != nil {
			return nil, err
		}
		if len(recent) > 0 {
			return nil, ErrEmptyMessage
		}
		firstTurn = true
	}

	k, err := s.kernels.GetOrCreate(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	rows, err := s.tracker.All(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	snapshot := kernel.Snapshot(k, decisions.SummaryLines(rows))

	providerMsgs, err := s.assembleMessages(ctx, conv, snapshot, k.OnboardingStep, firstTurn, userMessage)
	if err != nil {
		return nil, err
	}

	// the dominant suspension point; a failure here leaves no trace of
	// the turn
	raw, err := s.provider.Chat(ctx, providerMsgs)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	res := extract.Parse(raw)
	if res.ParseErr != nil {
		// non-fatal: the reply still goes out, the facts are lost and
		// said so
		log.Printf("[convo] extraction discarded tenant=%d conv=%s err=%v", tenantID, conv.ConversationID, res.ParseErr)
	}

	kernel.Merge(k, res.Fields)

	if res.Fields.ReadyToAdvance && k.OnboardingStep < kernel.FinalStep {
		k.OnboardingStep++
	}
	if k.OnboardingStep >= kernel.FinalStep {
		// one-way flag, never unset
		k.OnboardingComplete = true
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if userMessage != "" {
			if err := txRepo.InsertMessage(ctx, &Message{
				ConversationID: conv.ConversationID,
				TenantID:       tenantID,
				Role:           "user",
				Content:        userMessage,
			}); err != nil {
				return err
			}
		}
		if err := txRepo.InsertMessage(ctx, &Message{
			ConversationID: conv.ConversationID,
			TenantID:       tenantID,
			Role:           "assistant",
			Content:        res.DisplayText,
		}); err != nil {
			return err
		}
		return s.kernels.WithTx(tx).Save(ctx, k)
	})
	if err != nil {
		return nil, err
	}

	return &TurnResult{
		ReplyText:      res.DisplayText,
		ConversationID: conv.ConversationID,
		OnboardingStep: k.OnboardingStep,
		IsComplete:     k.OnboardingComplete,
	}, nil
}

// ensureConversation finds or creates the tenant's onboarding conversation
// and seeds the decision catalog on first contact.
func (s *Service) ensureConversation(ctx context.Context, tenantID uint64) (*Conversation, bool, error) {
	conv, err := s.repo.GetOnboarding(ctx, tenantID)
	if err == nil {
		return conv, false, nil
	}
	if !IsNotFound(err) {
		return nil, false, err
	}

	cid, err := common.NewULID()
	if err != nil {
		return nil, false, err
	}
	conv = &Conversation{
		ConversationID: cid,
		TenantID:       tenantID,
		Kind:           KindOnboarding,
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, false, err
	}
	if err := s.tracker.Initialize(ctx, tenantID); err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

// assembleMessages builds the provider input: system directive, recent
// history oldest-first, then the pending user message. The pending message
// is not yet persisted; it only reaches the store if the whole turn commits.
func (s *Service) assembleMessages(ctx context.Context, conv *Conversation, snapshot string, step int, firstTurn bool, userMessage string) ([]ai.Message, error) {
	msgs := []ai.Message{{
		Role:    "system",
		Content: systemDirective(snapshot, step, firstTurn),
	}}

	recentDesc, err := s.repo.ListRecentMessagesDesc(ctx, conv.TenantID, conv.ConversationID, s.contextWindowSize)
	if err != nil {
		return nil, err
	}
	// reverse to ASC (oldest -> newest)
	for i := len(recentDesc) - 1; i >= 0; i-- {
		m := recentDesc[i]
		msgs = append(msgs, ai.Message{Role: m.Role, Content: m.Content})
	}

	if userMessage != "" {
		msgs = append(msgs, ai.Message{Role: "user", Content: userMessage})
	}
	return msgs, nil
}

// Transcript pages through the onboarding conversation newest-first.
func (s *Service) Transcript(ctx context.Context, tenantID uint64, limit int, beforeID uint64) ([]Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	conv, err := s.repo.GetOnboarding(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, tenantID, conv.ConversationID, limit, beforeID)
}

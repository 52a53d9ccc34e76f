package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/assistant"
	"github.com/carelink/carelink/internal/platform/auth"
)

// historyLimit caps how many conversations History returns.
const historyLimit = 10

type Service struct {
	repo      Repository
	generator assistant.Generator
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, generator assistant.Generator, logger zerolog.Logger) *Service {
	return &Service{repo: repo, generator: generator, logger: logger, now: time.Now}
}

// promptFor frames the user's message for their role.
func promptFor(role auth.Role, message, convContext string) string {
	var b strings.Builder
	switch role {
	case auth.RolePatient:
		b.WriteString("You are a healthcare assistant helping a patient. " +
			"Answer in plain language, encourage them to consult their doctor for medical decisions, " +
			"and never prescribe or adjust medication yourself.\n")
	case auth.RoleDoctor:
		b.WriteString("You are a clinical assistant supporting a physician. " +
			"Be precise and concise; reference standard practice where relevant.\n")
	case auth.RolePharmacy:
		b.WriteString("You are an assistant supporting a pharmacy. " +
			"Help with dispensing workflows, stock management and medication information.\n")
	}
	if convContext != "" {
		fmt.Fprintf(&b, "Context: %s\n", convContext)
	}
	fmt.Fprintf(&b, "Message: %s", message)
	return b.String()
}

// fallbackFor is the static reply used when generation fails. The chat path
// never surfaces the upstream failure to the caller.
func fallbackFor(role auth.Role) string {
	switch role {
	case auth.RolePatient:
		return "I'm sorry, I can't answer right now. Please try again shortly, or contact your doctor if the matter is urgent."
	case auth.RoleDoctor:
		return "The assistant is temporarily unavailable. Please try again shortly."
	case auth.RolePharmacy:
		return "The assistant is temporarily unavailable. Please try again shortly; your inventory and queue data are unaffected."
	default:
		return "The assistant is temporarily unavailable. Please try again shortly."
	}
}

// AppendTurn runs one chat turn: build the role-specific prompt, ask the
// generator, fall back to the role's static reply on failure, and persist
// the user/assistant pair atomically.
func (s *Service) AppendTurn(ctx context.Context, ident auth.Identity, message, convContext string) (*Conversation, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperr.New(apperr.ValidationFailed, "message must not be empty")
	}

	reply, err := s.generator.Generate(ctx, promptFor(ident.Role, message, convContext), convContext)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", ident.UserID.String()).Msg("assistant generation failed, using fallback")
		reply = fallbackFor(ident.Role)
	}

	now := s.now().UTC()
	turn := []Message{
		{Role: MessageRoleUser, Content: message, Timestamp: now},
		{Role: MessageRoleAssistant, Content: reply, Timestamp: now},
	}

	conv, err := s.repo.AppendTurn(ctx, ident.UserID, ident.Role, convContext, turn)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "append conversation turn")
	}
	return conv, nil
}

// History returns the caller's conversations, newest first.
func (s *Service) History(ctx context.Context, ident auth.Identity) ([]*Conversation, error) {
	items, err := s.repo.ListByUser(ctx, ident.UserID, historyLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load conversation history")
	}
	return items, nil
}

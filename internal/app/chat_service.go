package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"ragfilechat/internal/model"
	"ragfilechat/internal/repository"
)

const sessionTitleLimit = 50

// FileGenerator is the slice of the Gemini client the chat flow needs.
type FileGenerator interface {
	Resolve(ctx context.Context, ref string) (*genai.File, error)
	Generate(ctx context.Context, query string, files []*genai.File) (string, error)
}

// HistoryCache caches per-session message history.
type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID uint) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, sessionID uint, messages []model.Message) error
	DeleteHistory(ctx context.Context, sessionID uint) error
}

type ChatService struct {
	sessionRepo  *repository.SessionRepository
	messageRepo  *repository.MessageRepository
	generator    FileGenerator
	historyCache HistoryCache
	log          *zap.Logger
}

func NewChatService(
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	generator FileGenerator,
	historyCache HistoryCache,
	log *zap.Logger,
) *ChatService {
	return &ChatService{
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		generator:    generator,
		historyCache: historyCache,
		log:          log,
	}
}

type CreateSessionInput struct {
	Title *string
}

type ChatInput struct {
	SessionID uint
	Query     string
	FileRefs  []string
}

type ChatResult struct {
	SessionID uint          `json:"session_id"`
	Message   model.Message `json:"message"`
	Response  string        `json:"response"`
}

type SessionMessages struct {
	SessionID uint            `json:"session_id"`
	Messages  []model.Message `json:"messages"`
	Total     int64           `json:"total"`
}

func (s *ChatService) CreateSession(input CreateSessionInput) (*model.ChatSession, error) {
	session := &model.ChatSession{Title: input.Title}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) ListSessions(skip, limit int) ([]model.ChatSession, error) {
	return s.sessionRepo.List(skip, limit)
}

func (s *ChatService) DeleteSession(ctx context.Context, sessionID uint) error {
	if sessionID == 0 {
		return ErrInvalidInput
	}
	deleted, err := s.sessionRepo.Delete(sessionID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSessionNotFound
	}
	if s.historyCache != nil {
		if err := s.historyCache.DeleteHistory(ctx, sessionID); err != nil {
			s.log.Warn("invalidate history cache failed", zap.Uint("session_id", sessionID), zap.Error(err))
		}
	}
	return nil
}

// Chat runs one conversation turn: resolve or create the session, persist the
// user message, resolve file references, call Gemini, persist the reply.
func (s *ChatService) Chat(ctx context.Context, input ChatInput) (*ChatResult, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, ErrInvalidInput
	}

	session, err := s.resolveSession(input.SessionID, query)
	if err != nil {
		return nil, err
	}

	userMessage := &model.Message{
		SessionID: session.ID,
		Role:      model.RoleUser,
		Content:   query,
	}
	if err := s.createMessage(ctx, userMessage); err != nil {
		return nil, err
	}

	files := s.resolveFiles(ctx, input.FileRefs)

	responseText, err := s.generator.Generate(ctx, query, files)
	if err != nil {
		s.log.Error("gemini generation failed", zap.Uint("session_id", session.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	assistantMessage := &model.Message{
		SessionID: session.ID,
		Role:      model.RoleAssistant,
		Content:   responseText,
	}
	if err := s.createMessage(ctx, assistantMessage); err != nil {
		return nil, err
	}

	return &ChatResult{
		SessionID: session.ID,
		Message:   *userMessage,
		Response:  responseText,
	}, nil
}

func (s *ChatService) GetMessages(ctx context.Context, sessionID uint) (*SessionMessages, error) {
	if sessionID == 0 {
		return nil, ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if s.historyCache != nil {
		if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
			return &SessionMessages{
				SessionID: sessionID,
				Messages:  cached,
				Total:     int64(len(cached)),
			}, nil
		}
	}

	messages, err := s.messageRepo.ListBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if err := s.historyCache.SetHistory(ctx, sessionID, messages); err != nil {
			s.log.Warn("populate history cache failed", zap.Uint("session_id", sessionID), zap.Error(err))
		}
	}

	return &SessionMessages{
		SessionID: sessionID,
		Messages:  messages,
		Total:     int64(len(messages)),
	}, nil
}

func (s *ChatService) resolveSession(sessionID uint, query string) (*model.ChatSession, error) {
	if sessionID != 0 {
		session, err := s.sessionRepo.GetByID(sessionID)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}
		return session, nil
	}

	title := truncateTitle(query)
	session := &model.ChatSession{Title: &title}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	s.log.Info("created new session", zap.Uint("session_id", session.ID))
	return session, nil
}

// resolveFiles looks up each reference at the provider. References that fail
// resolution are skipped with a warning rather than failing the whole turn.
func (s *ChatService) resolveFiles(ctx context.Context, refs []string) []*genai.File {
	files := make([]*genai.File, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		file, err := s.generator.Resolve(ctx, ref)
		if err != nil {
			s.log.Warn("skipping unresolvable file reference", zap.String("ref", ref), zap.Error(err))
			continue
		}
		files = append(files, file)
	}
	return files
}

func (s *ChatService) createMessage(ctx context.Context, message *model.Message) error {
	if err := s.messageRepo.Create(message); err != nil {
		return err
	}
	if s.historyCache != nil {
		if err := s.historyCache.DeleteHistory(ctx, message.SessionID); err != nil {
			s.log.Warn("invalidate history cache failed", zap.Uint("session_id", message.SessionID), zap.Error(err))
		}
	}
	return nil
}

func truncateTitle(query string) string {
	runes := []rune(query)
	if len(runes) <= sessionTitleLimit {
		return query
	}
	return string(runes[:sessionTitleLimit])
}

// File: /services/confirmation_service.go
package services

import (
	"context"
	"sync"
	"time"

	"convoy-api/models"
	"convoy-api/utils"

	"github.com/google/uuid"
)

type PromptVariant string

const (
	VariantDanger  PromptVariant = "danger"
	VariantWarning PromptVariant = "warning"
	VariantInfo    PromptVariant = "info"
)

// CancelVia records how a prompt was dismissed.
type CancelVia string

const (
	CancelButton   CancelVia = "button"
	CancelEscape   CancelVia = "escape"
	CancelBackdrop CancelVia = "backdrop"
)

func (v CancelVia) Valid() bool {
	switch v {
	case CancelButton, CancelEscape, CancelBackdrop:
		return true
	}
	return false
}

// Prompt is what the admin screen renders in the confirmation modal.
type Prompt struct {
	Title                  string        `json:"title"`
	Message                string        `json:"message"`
	ConfirmText            string        `json:"confirm_text"`
	CancelText             string        `json:"cancel_text"`
	Variant                PromptVariant `json:"variant"`
	DisableBackdropDismiss bool          `json:"disable_backdrop_dismiss"`
}

type PendingConfirmation struct {
	Token     string    `json:"token"`
	Prompt    Prompt    `json:"prompt"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ActionResult is what a confirmed action hands back to the admin screen.
type ActionResult struct {
	Notice models.Notice `json:"notice"`
	Data   interface{}   `json:"data,omitempty"`
}

type ConfirmFunc func(ctx context.Context) (*ActionResult, error)

type pendingAction struct {
	prompt    Prompt
	onConfirm ConfirmFunc
	onCancel  func(via CancelVia)
	expiresAt time.Time
}

const DefaultConfirmationTTL = 10 * time.Minute

// ConfirmationService holds state-changing actions until an admin confirms
// them. Nothing runs until Confirm is called with the token.
type ConfirmationService struct {
	mu      sync.Mutex
	pending map[string]*pendingAction
	ttl     time.Duration
	now     func() time.Time
}

func NewConfirmationService(ttl time.Duration) *ConfirmationService {
	if ttl <= 0 {
		ttl = DefaultConfirmationTTL
	}
	return &ConfirmationService{
		pending: make(map[string]*pendingAction),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Request registers an action and returns the prompt to show.
func (s *ConfirmationService) Request(prompt Prompt, onConfirm ConfirmFunc, onCancel func(via CancelVia)) PendingConfirmation {
	if prompt.ConfirmText == "" {
		prompt.ConfirmText = "Confirm"
	}
	if prompt.CancelText == "" {
		prompt.CancelText = "Cancel"
	}
	if prompt.Variant == "" {
		prompt.Variant = VariantWarning
	}

	token := uuid.NewString()
	expiresAt := s.now().Add(s.ttl)

	s.mu.Lock()
	s.pending[token] = &pendingAction{
		prompt:    prompt,
		onConfirm: onConfirm,
		onCancel:  onCancel,
		expiresAt: expiresAt,
	}
	s.mu.Unlock()

	return PendingConfirmation{Token: token, Prompt: prompt, ExpiresAt: expiresAt}
}

// take removes and returns a live entry.
func (s *ConfirmationService) take(token string) (*pendingAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, ok := s.pending[token]
	if !ok {
		return nil, models.NewAppError(models.CodeConfirmationUnknown, "This confirmation has expired or was already used")
	}
	delete(s.pending, token)

	if s.now().After(action.expiresAt) {
		return nil, models.NewAppError(models.CodeConfirmationUnknown, "This confirmation has expired or was already used")
	}
	return action, nil
}

// Confirm runs the held action. A token can be confirmed at most once.
func (s *ConfirmationService) Confirm(ctx context.Context, token string) (*ActionResult, error) {
	action, err := s.take(token)
	if err != nil {
		return nil, err
	}
	return action.onConfirm(ctx)
}

// Cancel drops the held action without running it. Backdrop dismissal is
// refused when the prompt disabled it; the prompt then stays pending.
func (s *ConfirmationService) Cancel(token string, via CancelVia) error {
	if !via.Valid() {
		return models.NewValidationError("via must be one of button, escape, backdrop")
	}

	s.mu.Lock()
	action, ok := s.pending[token]
	if ok && via == CancelBackdrop && action.prompt.DisableBackdropDismiss {
		s.mu.Unlock()
		return models.NewAppError(models.CodeConfirmationDenied, "This prompt cannot be dismissed by clicking outside it")
	}
	s.mu.Unlock()

	action, err := s.take(token)
	if err != nil {
		return err
	}
	if action.onCancel != nil {
		action.onCancel(via)
	}
	return nil
}

func (s *ConfirmationService) Pending(token string) (PendingConfirmation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, ok := s.pending[token]
	if !ok || s.now().After(action.expiresAt) {
		return PendingConfirmation{}, false
	}
	return PendingConfirmation{Token: token, Prompt: action.prompt, ExpiresAt: action.expiresAt}, true
}

// CleanupExpired drops expired entries and returns how many were removed.
func (s *ConfirmationService) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for token, action := range s.pending {
		if now.After(action.expiresAt) {
			delete(s.pending, token)
			removed++
		}
	}
	return removed
}

// Run cleans up expired confirmations until ctx is cancelled.
func (s *ConfirmationService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.CleanupExpired(); removed > 0 {
				utils.Logger.Debug("expired confirmations removed", "count", removed)
			}
		}
	}
}

package registration

import (
	"context"
	"errors"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dukerupert/cadastro/internal/domain"
)

// WriteErrorMessage maps a UserStore failure to the banner shown to the user.
func WriteErrorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return MsgStoreUnavailable
	}
	switch domain.ErrorCode(err) {
	case domain.EFORBIDDEN:
		return MsgPermissionDenied
	case domain.EUNAVAILABLE:
		return MsgStoreUnavailable
	default:
		return MsgWriteFailed
	}
}

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// cleanText trims and strips any markup from free text before it is stored.
func cleanText(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	// StrictPolicy escapes what it keeps; the record stores plain text.
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(trimmed)))
}

package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Context tags for error sanitization.
const (
	ContextLogin  = "login"
	ContextSignup = "signup"
)

// Raw failure causes. These are internal values: they feed the sanitizer
// and the telemetry record but must never reach a client directly.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrEmailExists       = errors.New("email already exists")
)

// errorTable maps raw-message substrings to user-safe messages. Scanned
// in order, first match wins; matching is case-insensitive containment.
// The five login patterns all collapse to one message so a caller cannot
// tell "no such account" from "wrong password".
var errorTable = []struct {
	pattern string
	safe    string
}{
	{"invalid credentials", "Invalid email or password"},
	{"invalid password", "Invalid email or password"},
	{"user not found", "Invalid email or password"},
	{"account not found", "Invalid email or password"},
	{"incorrect password", "Invalid email or password"},

	{"email already exists", "An account with this email already exists"},
	{"email already in use", "An account with this email already exists"},
	{"user already exists", "An account with this email already exists"},

	{"network error", "Unable to connect. Please check your internet connection."},
	{"fetch failed", "Unable to connect. Please check your internet connection."},
	{"failed to fetch", "Unable to connect. Please check your internet connection."},

	{"too many requests", "Too many attempts. Please try again later."},
	{"rate limit", "Too many attempts. Please try again later."},
}

const (
	genericLoginError  = "Unable to sign in. Please try again."
	genericSignupError = "Unable to create account. Please try again."
)

// SafeMessage maps a raw failure message to a fixed user-safe message
// for the given context. It is a pure function; Sanitize adds the
// telemetry side.
//
// Matching is substring containment, not whole-message equality. That
// mirrors the original table and carries its known caveat: an unrelated
// message that happens to contain a pattern (say a vendor named
// "Network Error Inc") lands in that bucket.
func SafeMessage(raw, context string) string {
	lower := strings.ToLower(raw)
	for _, e := range errorTable {
		if strings.Contains(lower, e.pattern) {
			return e.safe
		}
	}
	if context == ContextSignup {
		return genericSignupError
	}
	return genericLoginError
}

// Capturer receives the full diagnostic record for every sanitized
// failure. *telemetry.Client satisfies this.
type Capturer interface {
	Capture(event string, props map[string]any)
}

// Sanitizer is the single point allowed to transform auth error content.
// Every failure passes through it on the way to a client; the original
// message goes only to telemetry and the log.
type Sanitizer struct {
	telemetry Capturer
	logger    *slog.Logger
}

func NewSanitizer(t Capturer, logger *slog.Logger) *Sanitizer {
	return &Sanitizer{telemetry: t, logger: logger}
}

// Sanitize returns the user-safe message for err and unconditionally
// captures the unsanitized original. A nil err is treated as an empty
// message and falls through to the context generic.
func (s *Sanitizer) Sanitize(err error, context string) string {
	original := ""
	errType := "nil"
	if err != nil {
		original = err.Error()
		errType = fmt.Sprintf("%T", err)
	}

	safe := SafeMessage(original, context)

	if s.telemetry != nil {
		s.telemetry.Capture("auth_error", map[string]any{
			"context":           context,
			"sanitized_message": safe,
			"original_message":  original,
			"error_type":        errType,
		})
	}
	if s.logger != nil {
		s.logger.Warn("auth failure", "context", context, "error", original)
	}

	return safe
}

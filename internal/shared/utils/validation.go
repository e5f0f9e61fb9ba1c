package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/GriffinCanCode/placechat/internal/shared/geo"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

// Size limits
const (
	MaxRequestSize    = 256 * 1024 // chat request body
	MaxMessageSize    = 16 * 1024  // single message content
	MaxHistoryLength  = 100        // messages per chat request
	MaxQueryLength    = 256
	MaxAddressLength  = 512
	MaxPlaceIDLength  = 512
	MaxPhotoRefLength = 2048
)

// ErrValidation wraps every error returned by this file
var ErrValidation = errors.New("validation failed")

var (
	// PlaceIDPattern matches provider place IDs and photo references (URL-safe base64-ish)
	PlaceIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, maxLen int, required bool) error {
	if strings.TrimSpace(value) == "" {
		if required {
			return invalid("%s is required", fieldName)
		}
		return nil
	}

	if utf8.RuneCountInString(value) > maxLen {
		return invalid("%s must not exceed %d characters", fieldName, maxLen)
	}
	if !utf8.ValidString(value) || strings.Contains(value, "\x00") {
		return invalid("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateChatMessages checks a chat history: bounded length, known roles,
// bounded content. It does not require a user message; the orchestrator
// reports that case itself.
func ValidateChatMessages(messages []types.ChatMessage) error {
	if len(messages) == 0 {
		return invalid("messages are required")
	}
	if len(messages) > MaxHistoryLength {
		return invalid("too many messages (maximum %d)", MaxHistoryLength)
	}

	for i, m := range messages {
		if !m.Role.IsValid() {
			return invalid("messages[%d].role %q is not one of user, assistant, system", i, m.Role)
		}
		if utf8.RuneCountInString(m.Content) > MaxMessageSize {
			return invalid("messages[%d].content exceeds %d characters", i, MaxMessageSize)
		}
		if strings.Contains(m.Content, "\x00") {
			return invalid("messages[%d].content contains invalid characters", i)
		}
	}
	return nil
}

// ValidateTravelMode accepts an empty mode as driving
func ValidateTravelMode(mode string) (types.TravelMode, error) {
	if mode == "" {
		return types.ModeDriving, nil
	}
	m := types.TravelMode(strings.ToLower(mode))
	if !m.IsValid() {
		return "", invalid("mode %q must be one of driving, walking, bicycling, transit", mode)
	}
	return m, nil
}

// ValidateLatLng checks coordinate bounds
func ValidateLatLng(p types.LatLng) error {
	if !geo.Valid(p) {
		return invalid("coordinates %s are out of range", geo.FormatLatLng(p))
	}
	return nil
}

// ValidatePlaceID validates a provider place ID
func ValidatePlaceID(id string) error {
	if err := ValidateString(id, "place id", MaxPlaceIDLength, true); err != nil {
		return err
	}
	if !PlaceIDPattern.MatchString(id) {
		return invalid("place id contains invalid characters")
	}
	return nil
}

// ValidatePhotoRef validates a provider photo reference
func ValidatePhotoRef(ref string) error {
	if err := ValidateString(ref, "ref", MaxPhotoRefLength, true); err != nil {
		return err
	}
	if !PlaceIDPattern.MatchString(ref) {
		return invalid("ref contains invalid characters")
	}
	return nil
}

// ValidateQuery validates a search query
func ValidateQuery(query string) error {
	return ValidateString(query, "query", MaxQueryLength, true)
}

// ValidateAddress validates a free-text address
func ValidateAddress(address, fieldName string) error {
	return ValidateString(address, fieldName, MaxAddressLength, true)
}

// ValidateChatRequest checks a chat turn body before any downstream call
func ValidateChatRequest(req types.ChatRequest) error {
	if err := ValidateChatMessages(req.Messages); err != nil {
		return err
	}
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role != types.RoleUser {
			continue
		}
		if strings.TrimSpace(req.Messages[i].Content) == "" {
			return invalid("messages[%d].content is required", i)
		}
		break
	}
	if req.Origin != nil {
		if err := ValidateLatLng(*req.Origin); err != nil {
			return err
		}
	}
	return ValidateString(req.Language, "language", 16, false)
}

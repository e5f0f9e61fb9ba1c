package types

import "strings"

// Role identifies the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ChatMessage is one entry of the conversation history
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NearMe is the location sentinel used when the user gave no explicit place
const NearMe = "near me"

// LocationIntent holds the search parameters extracted from a user message
type LocationIntent struct {
	Query          string `json:"query"`
	Location       string `json:"location"`
	FormattedQuery string `json:"formatted_query"`
}

// FallbackIntent treats the raw utterance as the search string
func FallbackIntent(utterance string) LocationIntent {
	return LocationIntent{
		Query:          utterance,
		Location:       NearMe,
		FormattedQuery: utterance,
	}
}

// LastUserMessage returns the content of the most recent user message.
// A blank latest message counts as missing; earlier turns are not consulted.
func LastUserMessage(messages []ChatMessage) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != RoleUser {
			continue
		}
		if strings.TrimSpace(messages[i].Content) == "" {
			return "", false
		}
		return messages[i].Content, true
	}
	return "", false
}

// ChatRequest is the body of one chat turn on either transport
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Origin   *LatLng       `json:"origin,omitempty"`
	Language string        `json:"language,omitempty"`
}

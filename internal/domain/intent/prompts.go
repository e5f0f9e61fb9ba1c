package intent

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Example is one few-shot exchange
type Example struct {
	User      string `yaml:"user"`
	Assistant string `yaml:"assistant"`
}

// PromptPack holds the system prompts for intent extraction and narration
type PromptPack struct {
	Intent struct {
		System   string    `yaml:"system"`
		Examples []Example `yaml:"examples"`
	} `yaml:"intent"`
	Narration struct {
		System       string `yaml:"system"`
		UserTemplate string `yaml:"user_template"`
		NoPlaces     string `yaml:"no_places"`
	} `yaml:"narration"`
}

// LoadPromptPack reads a prompt pack from path, or the built-in pack when
// path is empty.
func LoadPromptPack(path string) (*PromptPack, error) {
	data := defaultPrompts
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read prompt pack: %w", err)
		}
	}
	return ParsePromptPack(data)
}

// ParsePromptPack decodes and checks a YAML prompt pack
func ParsePromptPack(data []byte) (*PromptPack, error) {
	var pack PromptPack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse prompt pack: %w", err)
	}

	switch {
	case strings.TrimSpace(pack.Intent.System) == "":
		return nil, errors.New("prompt pack: intent.system is empty")
	case strings.TrimSpace(pack.Narration.System) == "":
		return nil, errors.New("prompt pack: narration.system is empty")
	case !strings.Contains(pack.Narration.UserTemplate, "{utterance}"):
		return nil, errors.New("prompt pack: narration.user_template must contain {utterance}")
	}
	return &pack, nil
}

// DefaultPromptPack returns the built-in pack
func DefaultPromptPack() *PromptPack {
	pack, err := ParsePromptPack(defaultPrompts)
	if err != nil {
		panic(err)
	}
	return pack
}

// IntentMessages builds the few-shot conversation for one utterance
func (p *PromptPack) IntentMessages(utterance string) []types.ChatMessage {
	msgs := make([]types.ChatMessage, 0, 2+2*len(p.Intent.Examples))
	msgs = append(msgs, types.ChatMessage{Role: types.RoleSystem, Content: p.Intent.System})
	for _, ex := range p.Intent.Examples {
		msgs = append(msgs,
			types.ChatMessage{Role: types.RoleUser, Content: ex.User},
			types.ChatMessage{Role: types.RoleAssistant, Content: ex.Assistant},
		)
	}
	return append(msgs, types.ChatMessage{Role: types.RoleUser, Content: utterance})
}

// NarrationMessages builds the narration prompt from the utterance and a
// rendered place digest. An empty digest uses narration.no_places.
func (p *PromptPack) NarrationMessages(utterance, digest string) []types.ChatMessage {
	if strings.TrimSpace(digest) == "" {
		digest = p.Narration.NoPlaces
	}
	user := strings.NewReplacer("{utterance}", utterance, "{places}", digest).Replace(p.Narration.UserTemplate)
	return []types.ChatMessage{
		{Role: types.RoleSystem, Content: p.Narration.System},
		{Role: types.RoleUser, Content: strings.TrimSpace(user)},
	}
}

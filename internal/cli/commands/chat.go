package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/placechat/internal/cli/client"
	"github.com/GriffinCanCode/placechat/internal/cli/ui"
	"github.com/GriffinCanCode/placechat/internal/domain/chat"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "chat about places (interactive without a message)",
	Long: `Chat with the placechat server. Answers stream in as they are written;
places found for a question are shown as cards before the answer.

Without a message the command starts an interactive session that keeps the
conversation history until /reset or /quit.`,
	Example: `  $ placectl chat "good coffee near Union Square"
  $ placectl chat --lat 37.7879 --lng -122.4075`,
	RunE: runChat,
}

func init() {
	chatCmd.SilenceUsage = true
	addOriginFlags(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	origin, err := originFromFlags(cmd)
	if err != nil {
		ui.PrintError("%v", err)
		return err
	}
	apiClient, err := newClient()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	session := &chatSession{client: apiClient, origin: origin}
	if len(args) > 0 {
		return session.turn(ctx, strings.Join(args, " "))
	}

	ui.PrintChatBanner(apiClient.Server(), apiClient.SessionID())
	return session.interactive(ctx, cmd.InOrStdin())
}

// chatSession keeps the conversation history of one CLI session
type chatSession struct {
	client  *client.APIClient
	origin  *types.LatLng
	history []types.ChatMessage
}

func (s *chatSession) interactive(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		ui.PrintPrompt("you")
		if !scanner.Scan() {
			fmt.Fprintln(ui.Out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			s.history = nil
			ui.PrintInfo("history cleared")
			continue
		}

		if err := s.turn(ctx, line); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// keep the session alive; the failure is already printed
			continue
		}
	}
}

// turn sends one user message and renders the streamed answer
func (s *chatSession) turn(ctx context.Context, message string) error {
	s.history = append(s.history, types.ChatMessage{Role: types.RoleUser, Content: message})

	var answer strings.Builder
	err := s.client.ChatStream(ctx, types.ChatRequest{
		Messages: s.history,
		Origin:   s.origin,
	}, func(e chat.Event) error {
		switch e.Kind {
		case chat.KindPlaces:
			ui.PrintPlaces(e.Places)
		case chat.KindContent:
			answer.WriteString(e.Content)
			ui.PrintDelta(e.Content)
		case chat.KindError:
			ui.PrintError("%s", e.Error)
		case chat.KindEnd:
			if answer.Len() > 0 {
				fmt.Fprintln(ui.Out)
			}
		}
		return nil
	})

	if answer.Len() > 0 {
		s.history = append(s.history, types.ChatMessage{Role: types.RoleAssistant, Content: answer.String()})
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		ui.PrintError("%v", err)
	}
	return err
}

package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/placechat/internal/cli/client"
	"github.com/GriffinCanCode/placechat/internal/cli/ui"
)

const version = "0.3.0"

var (
	serverAddr string
	timeout    time.Duration
)

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "placectl",
	Short:   "placechat terminal client",
	Version: version,
	Long: `A command-line client for a placechat server. Chat about places with
streamed answers and place cards, or call the lookup endpoints directly.`,
	Example: `  # Interactive chat near a coordinate
  $ placectl chat --lat 40.7411 --lng -73.9897

  # One-shot search
  $ placectl search "ramen" --location "Shibuya"

  # Walking directions
  $ placectl directions "Louvre" "Musée d'Orsay" --mode walking`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.Out = cmd.OutOrStdout()
	},
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(fmt.Sprintf("placectl version %s\n", version))
	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	defaultServer := os.Getenv("PLACECHAT_SERVER")
	if defaultServer == "" {
		defaultServer = "localhost:8000"
	}
	rootCmd.PersistentFlags().StringVarP(&serverAddr, "server", "s", defaultServer, "placechat server address (env PLACECHAT_SERVER)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "timeout for lookup commands")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(directionsCmd)
	rootCmd.AddCommand(geocodeCmd)
	rootCmd.AddCommand(distanceCmd)
	rootCmd.AddCommand(healthCmd)

	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

func newClient() (*client.APIClient, error) {
	c, err := client.NewAPIClient(serverAddr)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return nil, err
	}
	return c, nil
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}` + ui.Styles.Bold.Render("GLOBAL OPTIONS") + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

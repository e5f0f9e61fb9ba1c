package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/GriffinCanCode/placechat/internal/cli/commands"
	"github.com/GriffinCanCode/placechat/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		if strings.Contains(err.Error(), "unknown command") {
			ui.PrintError("%s", err.Error())
			fmt.Println("\nRun 'placectl --help' for usage.")
		}
		os.Exit(1)
	}
}

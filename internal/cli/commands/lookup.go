package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/placechat/internal/cli/ui"
	"github.com/GriffinCanCode/placechat/internal/shared/geo"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "search places",
	Args:  cobra.MinimumNArgs(1),
	Example: `  $ placectl search "bookshop" --location "Edinburgh"
  $ placectl search pharmacy --lat 51.5074 --lng -0.1278`,
	RunE: func(cmd *cobra.Command, args []string) error {
		origin, err := originFromFlags(cmd)
		if err != nil {
			ui.PrintError("%v", err)
			return err
		}
		location, _ := cmd.Flags().GetString("location")
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		res, err := c.SearchPlaces(ctx, strings.Join(args, " "), location, origin)
		if err != nil {
			ui.PrintError("search failed: %v", err)
			return err
		}
		if res.Error != "" {
			ui.PrintWarning("%s", res.Error)
		}
		if len(res.Results) == 0 {
			ui.PrintInfo("no places found")
			return nil
		}
		ui.PrintPlaces(res.Results)
		if res.SearchCenter != nil {
			ui.PrintInfo("search center %s", geo.FormatLatLng(*res.SearchCenter))
		}
		return nil
	},
}

var directionsCmd = &cobra.Command{
	Use:   "directions <origin> <destination>",
	Short: "route between two places",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		res, err := c.Directions(ctx, args[0], args[1], types.TravelMode(mode))
		if err != nil {
			ui.PrintError("directions failed: %v", err)
			return err
		}
		if res.Directions == nil {
			ui.PrintWarning("%s", firstNonEmpty(res.Error, "no route found"))
			return nil
		}
		fmt.Fprintln(ui.Out, ui.Directions(res.Mode, res.Directions))
		return nil
	},
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode <address | lat,lng>",
	Short: "resolve an address to coordinates, or coordinates to an address",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := strings.Join(args, " ")
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		if point, ok := geo.ParseLatLng(input); ok {
			res, err := c.ReverseGeocode(ctx, point)
			if err != nil {
				ui.PrintError("reverse geocode failed: %v", err)
				return err
			}
			if res.Address == nil {
				ui.PrintWarning("no address found for %s", geo.FormatLatLng(point))
				return nil
			}
			ui.PrintSuccess("%s", *res.Address)
			return nil
		}

		res, err := c.Geocode(ctx, input)
		if err != nil {
			ui.PrintError("geocode failed: %v", err)
			return err
		}
		if res.Location == nil {
			ui.PrintWarning("no location found for %q", input)
			return nil
		}
		ui.PrintSuccess("%s", geo.FormatLatLng(*res.Location))
		return nil
	},
}

var distanceCmd = &cobra.Command{
	Use:     "distance <lat,lng> <lat,lng>",
	Short:   "great-circle distance between two points",
	Args:    cobra.ExactArgs(2),
	Example: `  $ placectl distance 48.8584,2.2945 48.8606,2.3376`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parsePoint(args[0])
		if err != nil {
			ui.PrintError("%v", err)
			return err
		}
		to, err := parsePoint(args[1])
		if err != nil {
			ui.PrintError("%v", err)
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		res, err := c.Distance(ctx, from, to)
		if err != nil {
			ui.PrintError("distance failed: %v", err)
			return err
		}
		ui.PrintSuccess("%s (%.3f km)", res.DistanceText, res.DistanceKm)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "show server health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		res, err := c.Health(ctx)
		if err != nil {
			ui.PrintError("server unreachable: %v", err)
			return err
		}

		if res.Status == "healthy" {
			ui.PrintSuccess("%s (up %s)", res.Status, res.Uptime)
		} else {
			ui.PrintWarning("%s (up %s)", res.Status, res.Uptime)
		}
		ui.PrintInfo("model %s, maps configured: %t", res.LLM.Model, res.Maps.Configured)
		for name, state := range res.Breakers {
			ui.PrintInfo("breaker %s: %s", name, state)
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, directionsCmd, geocodeCmd, distanceCmd, healthCmd} {
		cmd.SilenceUsage = true
	}
	searchCmd.Flags().String("location", "", "free-text area to search in")
	addOriginFlags(searchCmd)
	directionsCmd.Flags().String("mode", "driving", "driving, walking, bicycling or transit")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

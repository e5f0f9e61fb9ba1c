package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/placechat/internal/shared/geo"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

// addOriginFlags registers --lat/--lng on cmd
func addOriginFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("lat", 0, "your latitude")
	cmd.Flags().Float64("lng", 0, "your longitude")
}

// originFromFlags returns the --lat/--lng pair, or nil when neither is set
func originFromFlags(cmd *cobra.Command) (*types.LatLng, error) {
	latSet, lngSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lng")
	if !latSet && !lngSet {
		return nil, nil
	}
	if latSet != lngSet {
		return nil, fmt.Errorf("--lat and --lng must be given together")
	}
	lat, _ := cmd.Flags().GetFloat64("lat")
	lng, _ := cmd.Flags().GetFloat64("lng")
	p := types.LatLng{Lat: lat, Lng: lng}
	if !geo.Valid(p) {
		return nil, fmt.Errorf("coordinates %s are out of range", geo.FormatLatLng(p))
	}
	return &p, nil
}

// parsePoint reads a "lat,lng" argument
func parsePoint(arg string) (types.LatLng, error) {
	p, ok := geo.ParseLatLng(arg)
	if !ok || !geo.Valid(p) {
		return types.LatLng{}, fmt.Errorf("%q is not a lat,lng pair", arg)
	}
	return p, nil
}

package maps

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/placechat/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

const noRouteReason = "No route found between these locations."

// Directions returns the first leg of the first route. The caller validates
// mode. No route and authorization failures degrade; other failures are fatal.
func (g *Gateway) Directions(ctx context.Context, origin, destination string, mode types.TravelMode) types.Outcome[*types.DirectionsResult] {
	timer := monitoring.NewTimer(g.metrics, "google", "directions")
	outcome := g.directions(ctx, origin, destination, mode)
	timer.Stop(outcome.Kind.String())
	return outcome
}

func (g *Gateway) directions(ctx context.Context, origin, destination string, mode types.TravelMode) types.Outcome[*types.DirectionsResult] {
	origin, destination = strings.TrimSpace(origin), strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return types.Fatal[*types.DirectionsResult](fmt.Errorf("%w: origin and destination are required", ErrInvalidArgument))
	}

	var body directionsResponse
	err := g.get(ctx, "directions", directionsPath, map[string]string{
		"origin":      origin,
		"destination": destination,
		"mode":        string(mode),
		"language":    g.language,
	}, &body)
	switch {
	case err == nil:
	case isDegradable(err):
		g.logger.Warn("directions degraded", zap.Error(err))
		return types.Degraded[*types.DirectionsResult](nil, denialReason(err))
	case body.Status == statusNotFound:
		// NOT_FOUND here means a waypoint could not be geocoded
		return types.Degraded[*types.DirectionsResult](nil, noRouteReason)
	default:
		return types.Fatal[*types.DirectionsResult](err)
	}

	if len(body.Routes) == 0 || len(body.Routes[0].Legs) == 0 {
		return types.Degraded[*types.DirectionsResult](nil, noRouteReason)
	}
	return types.Ok(toDirectionsResult(body.Routes[0].Legs[0]))
}

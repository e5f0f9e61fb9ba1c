// Package types provides shared data structures for the placechat backend.
//
// This package defines the types that flow between the transport layer, the
// chat orchestrator and the provider gateways, so that every component agrees
// on one JSON shape.
//
// Core Types:
//   - ChatMessage, Role: conversation history entries
//   - LatLng: a coordinate pair
//   - LocationIntent: structured search parameters extracted from a message
//   - PlaceRecord: normalised place returned by the maps gateway
//   - DirectionsResult: first leg of the best route
//   - Outcome: tagged Ok / Degraded / Fatal result of a provider call
//
// Example Usage:
//
//	out := types.Ok(record)
//	if out.IsDegraded() {
//	    log.Println(out.Reason)
//	}
package types

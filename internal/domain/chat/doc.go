/*
Package chat runs one streamed chat turn.

A turn is a fixed sequence: extract a search intent from the last user
message, search places, emit the places, stream a short narration, then emit
the end marker. Every event goes through an Emitter so the same Orchestrator
serves the SSE and WebSocket transports.

Event ordering on the success path:

	[places]? content* end

A degraded or failed search ends the turn with a single error event and no
end marker.
*/
package chat

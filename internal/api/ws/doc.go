// Package ws streams chat turns over a WebSocket.
//
// Client → server frames:
//   - {"type":"chat","messages":[...],"origin":{...},"language":"en"}
//   - {"type":"ping"}
//
// Server → client frames are the chat events in their wire form, the same
// JSON the SSE endpoint sends after "data: ", plus {"type":"system"} on
// connect and {"type":"pong"}. Turns on one connection run sequentially.
package ws

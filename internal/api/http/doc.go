/*
Package http exposes the chat stream and the place lookups over gin.

Routes:

	POST /api/chat                 server-sent chat events
	GET  /api/places/search        text search
	GET  /api/places/:id           place details
	GET  /api/places/photo         photo proxy
	GET  /api/geocode              address to coordinates
	GET  /api/reverse-geocode      coordinates to address
	GET  /api/directions           first leg of the first route
	GET  /api/distance             great-circle distance
	GET  /, /health                liveness and readiness

Errors are answered as {"error": "..."} with the status chosen in
response.go. Degraded provider answers are 200 with empty data plus an
"error" string.
*/
package http

package chat

import (
	"strconv"
	"strings"

	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

// DigestSize is how many places the narration prompt describes
const DigestSize = 5

// Digest renders the first n places as numbered lines for the narration
// prompt: name, rating or N/A, and distance when known.
func Digest(places []types.PlaceRecord, n int) string {
	if len(places) > n {
		places = places[:n]
	}

	var b strings.Builder
	for i, p := range places {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(p.Name)
		b.WriteString(" (rating ")
		if p.Rating != nil {
			b.WriteString(strconv.FormatFloat(*p.Rating, 'f', -1, 64))
		} else {
			b.WriteString("N/A")
		}
		if p.DistanceText != "" {
			b.WriteString(", ")
			b.WriteString(p.DistanceText)
			b.WriteString(" away")
		}
		b.WriteByte(')')
	}
	return b.String()
}

package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/placechat/internal/shared/types"
)

// PlaceCard renders one place as a bordered card
func PlaceCard(index int, p types.PlaceRecord) string {
	var lines []string
	lines = append(lines, Styles.CardTitle.Render(fmt.Sprintf("%d. %s", index, p.Name)))

	if addr := firstNonEmpty(p.Address, p.Vicinity); addr != "" {
		lines = append(lines, addr)
	}

	var facts []string
	if p.Rating != nil {
		rating := "★ " + strconv.FormatFloat(*p.Rating, 'f', 1, 64)
		if p.UserRatingsTotal != nil {
			rating += fmt.Sprintf(" (%d)", *p.UserRatingsTotal)
		}
		facts = append(facts, rating)
	}
	if p.PriceLevel != nil && *p.PriceLevel > 0 {
		facts = append(facts, strings.Repeat("$", *p.PriceLevel))
	}
	if p.DistanceText != "" {
		facts = append(facts, p.DistanceText+" away")
	}
	if p.OpeningHours != nil && p.OpeningHours.OpenNow != nil {
		if *p.OpeningHours.OpenNow {
			facts = append(facts, successColor.Sprint("open now"))
		} else {
			facts = append(facts, errorColor.Sprint("closed"))
		}
	}
	if len(facts) > 0 {
		lines = append(lines, strings.Join(facts, " · "))
	}

	if p.Phone != "" {
		lines = append(lines, Styles.Muted.Render(p.Phone))
	}
	if p.Website != "" {
		lines = append(lines, Styles.Muted.Render(p.Website))
	}

	return Styles.Card.Render(strings.Join(lines, "\n"))
}

// PrintPlaces prints a card per place
func PrintPlaces(places []types.PlaceRecord) {
	for i, p := range places {
		fmt.Fprintln(Out, PlaceCard(i+1, p))
	}
}

// Directions renders a route summary followed by numbered steps
func Directions(mode types.TravelMode, d *types.DirectionsResult) string {
	var b strings.Builder
	header := fmt.Sprintf("%s · %s by %s", d.DistanceText, d.DurationText, mode)
	b.WriteString(Styles.CardTitle.Render(header))
	if d.StartAddress != "" || d.EndAddress != "" {
		b.WriteString("\n")
		b.WriteString(Styles.Muted.Render(d.StartAddress + " → " + d.EndAddress))
	}
	for i, s := range d.Steps {
		fmt.Fprintf(&b, "\n%2d. %s %s", i+1, s.Instruction, Styles.Muted.Render("("+s.DistanceText+")"))
	}
	return Styles.Card.Render(b.String())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

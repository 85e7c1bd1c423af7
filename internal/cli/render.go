package cli

import (
	"fmt"
	"strings"

	"colisapp/internal/models"
	"colisapp/internal/pricing"
	"colisapp/internal/wizard"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent  = lipgloss.Color("#2563EB")
	dim     = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#16A34A")
	danger  = lipgloss.Color("#DC2626")
	warning = lipgloss.Color("#D97706")
)

var (
	stepStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle     = lipgloss.NewStyle().Foreground(dim)
	okStyle      = lipgloss.NewStyle().Foreground(success).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(warning)
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)
)

func renderStep(s wizard.Step) string {
	return stepStyle.Render(fmt.Sprintf("── Étape %d/4 : %s ──", int(s)+1, s))
}

func renderNotification(n wizard.Notification) string {
	style := warnStyle
	if n.Kind == wizard.KindTransport || n.Kind == wizard.KindServer {
		style = errorStyle
	}
	var b strings.Builder
	for _, m := range n.Messages {
		b.WriteString(style.Render("! " + m))
		b.WriteString("\n")
	}
	return b.String()
}

func renderOptions(opts []models.Option) string {
	var b strings.Builder
	for i, o := range opts {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%2d.", i+1)), o.Name)
	}
	return b.String()
}

// names keeps the labels picked along the way; the selection only holds ids.
type names map[string]string

func renderSummary(d wizard.SimulationDraft, n names, q pricing.Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Départ      : %s, %s (%s)\n", n[d.Departure.CountryID], n[d.Departure.CityID], n[d.Departure.AgencyID])
	fmt.Fprintf(&b, "Destination : %s, %s (%s)\n", n[d.Destination.CountryID], n[d.Destination.CityID], n[d.Destination.AgencyID])
	for i, p := range d.Parcels {
		fmt.Fprintf(&b, "Colis %d     : %g × %g × %g cm, %g kg\n", i+1, p.Length, p.Width, p.Height, p.Weight)
	}
	fmt.Fprintf(&b, "Poids total : %g kg   Volume : %g cm³\n", q.TotalWeight, q.TotalVolume)
	fmt.Fprintf(&b, "Prix estimé : %.2f €\n", q.TotalPrice)
	fmt.Fprintf(&b, "Départ le %s, arrivée prévue le %s", q.DepartureDate.Format("02/01/2006"), q.ArrivalDate.Format("02/01/2006"))
	return summaryStyle.Render(b.String())
}

func renderSimulation(s *models.Simulation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Simulation %s\n", s.ID)
	fmt.Fprintf(&b, "Statut      : %s / %s\n", s.SimulationStatus, s.EnvoiStatus)
	fmt.Fprintf(&b, "Colis       : %d\n", len(s.Parcels))
	fmt.Fprintf(&b, "Prix        : %.2f €", s.TotalPrice)
	if !s.ArrivalDate.IsZero() {
		fmt.Fprintf(&b, "\nArrivée     : %s", s.ArrivalDate.Format("02/01/2006"))
	}
	return summaryStyle.Render(b.String())
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"colisapp/internal/models"
	"colisapp/internal/pricing"
	"colisapp/internal/wizard"

	"github.com/spf13/cobra"
)

var errAborted = errors.New("simulation abandoned")

func newSimulateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Simuler un envoi étape par étape",
		Long: "simulate walks through departure, destination, parcels and confirmation,\n" +
			"then records the simulation. A simulation left pending can be resumed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, session, err := opts.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ctl := wizard.New(wizard.Config{
				Locations:   c,
				Simulations: c,
				MaxParcels:  opts.maxParcels(),
				Tariff:      pricing.DefaultTariff,
				Notifier: wizard.NotifierFunc(func(n wizard.Notification) {
					fmt.Fprint(out, renderNotification(n))
				}),
			})
			w := &wizardRun{ctl: ctl, p: newPrompter(cmd.InOrStdin(), out), out: out, names: names{}}
			runErr := w.run(cmd.Context())
			if err := session.Save(c); err != nil {
				return err
			}
			return runErr
		},
	}
}

// wizardRun drives a Controller from terminal prompts.
type wizardRun struct {
	ctl   *wizard.Controller
	p     *prompter
	out   io.Writer
	names names
}

func (w *wizardRun) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_ = w.ctl.Bootstrap(ctx)

	if w.ctl.Phase() == wizard.PhaseResumeChoice {
		done, err := w.resumeChoice(ctx)
		if err != nil || done {
			return err
		}
	}

	for w.ctl.Phase() == wizard.PhaseEditing {
		step := w.ctl.Step()
		fmt.Fprintln(w.out, renderStep(step))
		var err error
		switch step {
		case wizard.StepDeparture:
			err = w.location(ctx, wizard.Departure)
		case wizard.StepDestination:
			err = w.location(ctx, wizard.Destination)
		case wizard.StepParcels:
			err = w.parcels()
		case wizard.StepConfirmation:
			err = w.confirm(ctx)
		}
		if err != nil {
			return err
		}
	}

	if created := w.ctl.Created(); created != nil {
		fmt.Fprintln(w.out, okStyle.Render("Simulation enregistrée"))
		fmt.Fprintf(w.out, "Identifiant : %s\nJeton       : %s\n", created.ID, created.VerificationToken)
		fmt.Fprintln(w.out, dimStyle.Render("colisctl pending affiche la simulation en cours."))
	}
	return nil
}

// resumeChoice reports done when the pending simulation was resumed.
func (w *wizardRun) resumeChoice(ctx context.Context) (bool, error) {
	for {
		ans, err := w.p.ask("Une simulation est en cours. La reprendre ? (o/n)")
		if err != nil {
			return false, err
		}
		if yes(ans) {
			sim, err := w.ctl.Resume()
			if err != nil {
				return false, err
			}
			fmt.Fprintln(w.out, renderSimulation(sim))
			return true, nil
		}
		if err := w.ctl.Discard(ctx); err == nil {
			fmt.Fprintln(w.out, dimStyle.Render("Simulation précédente supprimée."))
			return false, nil
		}
	}
}

// location fills one side then tries to leave the step. Advancing re-checks
// the selection, so a failed fetch simply loops back to the prompts.
func (w *wizardRun) location(ctx context.Context, side wizard.Side) error {
	for {
		countries := w.ctl.Options().Countries
		if side == wizard.Destination {
			countries = w.ctl.Options().DestinationCountries
		}
		if len(countries) == 0 {
			if side == wizard.Destination {
				fmt.Fprintln(w.out, warnStyle.Render("Aucune destination disponible depuis cette agence."))
				w.ctl.Retreat()
				return nil
			}
			if err := w.reloadCountries(ctx); err != nil {
				return err
			}
			continue
		}

		country, err := w.p.choose("Pays :", countries)
		if err != nil {
			return err
		}
		w.names[country.ID] = country.Name
		if err := w.ctl.SelectCountry(ctx, side, country.ID); err != nil {
			continue
		}

		city, err := w.p.choose("Ville :", w.side(side).cities)
		if errors.Is(err, errNoOptions) {
			fmt.Fprintln(w.out, warnStyle.Render("Aucune ville desservie dans ce pays."))
			continue
		}
		if err != nil {
			return err
		}
		w.names[city.ID] = city.Name
		if err := w.ctl.SelectCity(ctx, side, city.ID); err != nil {
			continue
		}

		agency, err := w.p.choose("Agence :", w.side(side).agencies)
		if errors.Is(err, errNoOptions) {
			continue
		}
		if err != nil {
			return err
		}
		w.names[agency.ID] = agency.Name
		if err := w.ctl.SelectAgency(ctx, side, agency.ID); err != nil {
			continue
		}
		if w.ctl.Advance() == nil {
			return nil
		}
	}
}

type sideOptions struct {
	cities, agencies []models.Option
}

func (w *wizardRun) side(side wizard.Side) sideOptions {
	o := w.ctl.Options()
	if side == wizard.Departure {
		return sideOptions{cities: o.DepartureCities, agencies: o.DepartureAgencies}
	}
	return sideOptions{cities: o.DestinationCities, agencies: o.DestinationAgencies}
}

func (w *wizardRun) reloadCountries(ctx context.Context) error {
	ans, err := w.p.ask("Réessayer de charger les pays ? (o/n)")
	if err != nil {
		return err
	}
	if !yes(ans) {
		return errAborted
	}
	_ = w.ctl.ReloadCountries(ctx)
	return nil
}

var fields = []wizard.Field{wizard.FieldLength, wizard.FieldWidth, wizard.FieldHeight, wizard.FieldWeight}

var fieldLabels = map[wizard.Field]string{
	wizard.FieldLength: "Longueur (cm) :",
	wizard.FieldWidth:  "Largeur (cm) :",
	wizard.FieldHeight: "Hauteur (cm) :",
	wizard.FieldWeight: "Poids (kg) :",
}

func (w *wizardRun) parcels() error {
	n, err := w.p.integer(fmt.Sprintf("Nombre de colis (1 à %d) :", w.ctl.MaxParcels()))
	if err != nil {
		return err
	}
	w.ctl.SetParcelCount(n)
	w.ctl.JumpToParcel(0)
	count := len(w.ctl.Draft().Parcels)
	for {
		for i := w.ctl.CurrentParcel(); i < count; i++ {
			w.ctl.JumpToParcel(i)
			fmt.Fprintln(w.out, dimStyle.Render(fmt.Sprintf("Colis %d/%d", i+1, count)))
			for _, f := range fields {
				v, err := w.p.number(fieldLabels[f])
				if err != nil {
					return err
				}
				if err := w.ctl.UpdateParcel(i, f, v); err != nil {
					return err
				}
			}
		}
		err := w.ctl.Advance()
		if err == nil {
			return nil
		}
		var pe wizard.ParcelErrors
		if !errors.As(err, &pe) || len(pe) == 0 {
			return err
		}
		// Re-enter from the first failing parcel onwards.
		w.ctl.JumpToParcel(pe[0].Position - 1)
	}
}

func (w *wizardRun) confirm(ctx context.Context) error {
	fmt.Fprintln(w.out, renderSummary(w.ctl.Draft(), w.names, w.ctl.Quote()))
	ans, err := w.p.ask("Confirmer ? (o = envoyer, r = revenir, n = abandonner)")
	if err != nil {
		return err
	}
	switch strings.ToLower(ans) {
	case "r":
		w.ctl.Retreat()
		return nil
	case "n":
		return errAborted
	}
	if !yes(ans) {
		return nil
	}
	// Failures are notified and leave the wizard on this step.
	_, _ = w.ctl.Submit(ctx)
	return nil
}

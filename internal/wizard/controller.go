package wizard

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"colisapp/internal/models"
	"colisapp/internal/pricing"

	"golang.org/x/sync/errgroup"
)

// Step is one screen of the wizard.
type Step int

const (
	StepDeparture Step = iota
	StepDestination
	StepParcels
	StepConfirmation
)

func (s Step) String() string {
	switch s {
	case StepDeparture:
		return "Départ"
	case StepDestination:
		return "Destination"
	case StepParcels:
		return "Colis"
	case StepConfirmation:
		return "Confirmation"
	}
	return "?"
}

// Phase is the session-level state around the steps.
type Phase int

const (
	PhaseLoading Phase = iota
	// PhaseResumeChoice waits for Resume or Discard of a pending simulation.
	PhaseResumeChoice
	PhaseEditing
	PhaseSubmitted
)

var (
	ErrNoPending           = errors.New("no pending simulation")
	ErrNotAtConfirmation   = errors.New("submit is only available on the confirmation step")
	ErrResumeChoicePending = errors.New("resume or discard the pending simulation first")
)

const (
	serverMessage    = "Une erreur est survenue lors de l'enregistrement de la simulation, veuillez réessayer"
	submitNetMessage = "Impossible de joindre le serveur, veuillez réessayer"
	pendingMessage   = "Impossible de vérifier s'il existe une simulation en cours, veuillez réessayer"
	claimedMessage   = "La simulation en cours est rattachée à un autre compte, une nouvelle simulation va commencer"
)

// Config wires a Controller.
type Config struct {
	Locations   LocationSource
	Simulations SimulationService
	// MaxParcels is COLIS_MAX_PER_ENVOI.
	MaxParcels int
	Tariff     pricing.Tariff
	Notifier   Notifier
	Now        func() time.Time
}

// Controller sequences Departure, Destination, Parcels and Confirmation over
// one SimulationDraft. Every failure becomes a Notification.
type Controller struct {
	resolver *Resolver
	gateway  *Gateway
	sims     SimulationService
	notify   Notifier

	mu      sync.Mutex
	editor  *Editor
	step    Step
	phase   Phase
	pending *models.Simulation
	created *models.SimulationCreated
}

func New(cfg Config) *Controller {
	notify := cfg.Notifier
	if notify == nil {
		notify = nopNotifier{}
	}
	gw := NewGateway(cfg.Simulations, cfg.MaxParcels, cfg.Tariff)
	if cfg.Now != nil {
		gw.now = cfg.Now
	}
	return &Controller{
		resolver: NewResolver(cfg.Locations, notify),
		gateway:  gw,
		sims:     cfg.Simulations,
		notify:   notify,
		editor:   NewEditor(cfg.MaxParcels),
		step:     StepDeparture,
		phase:    PhaseLoading,
	}
}

// Bootstrap checks for a pending simulation and loads the countries
// concurrently. With a pending simulation the controller waits for Resume or
// Discard.
func (c *Controller) Bootstrap(ctx context.Context) error {
	var (
		g          errgroup.Group
		pending    *models.Simulation
		pendingErr error
		countryErr error
	)
	g.Go(func() error {
		pending, pendingErr = c.sims.PendingSimulation(ctx)
		return nil
	})
	g.Go(func() error {
		countryErr = c.resolver.LoadCountries(ctx)
		return nil
	})
	_ = g.Wait()

	if pendingErr != nil {
		c.notify.Notify(pendingNotification(pendingErr))
		pending = nil
	}

	c.mu.Lock()
	c.pending = pending
	if pending != nil {
		c.phase = PhaseResumeChoice
	} else {
		c.phase = PhaseEditing
	}
	c.mu.Unlock()

	return errors.Join(pendingErr, countryErr)
}

// pendingNotification tells a simulation owned by someone else apart from a
// failed check.
func pendingNotification(err error) Notification {
	var se StatusError
	if errors.As(err, &se) && se.StatusCode() == http.StatusConflict {
		return Notification{Kind: KindServer, Messages: []string{claimedMessage}}
	}
	return Notification{Kind: KindTransport, Messages: []string{pendingMessage}}
}

// Resume hands back the pending simulation for the results view.
func (c *Controller) Resume() (*models.Simulation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil, ErrNoPending
	}
	c.phase = PhaseSubmitted
	return c.pending, nil
}

// Discard deletes the pending simulation server-side, then starts afresh.
func (c *Controller) Discard(ctx context.Context) error {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return ErrNoPending
	}
	c.mu.Unlock()

	if err := c.sims.DiscardPending(ctx); err != nil {
		c.notify.Notify(Notification{Kind: KindTransport, Messages: []string{submitNetMessage}})
		return err
	}

	c.mu.Lock()
	c.pending = nil
	c.resetLocked()
	c.phase = PhaseEditing
	c.mu.Unlock()
	return nil
}

func (c *Controller) resetLocked() {
	c.resolver.Reset()
	c.editor.Reset()
	c.step = StepDeparture
	c.created = nil
}

// Advance validates the current step and moves forward on success.
func (c *Controller) Advance() error {
	c.mu.Lock()
	if c.phase == PhaseResumeChoice {
		c.mu.Unlock()
		return ErrResumeChoicePending
	}
	var err error
	switch c.step {
	case StepDeparture:
		err = ValidateDeparture(c.resolver.Selection(Departure))
	case StepDestination:
		err = ValidateDestination(c.resolver.Selection(Destination))
	case StepParcels:
		err = ValidateParcels(c.editor.parcels)
	}
	if err == nil && c.step < StepConfirmation {
		c.step++
	}
	c.mu.Unlock()

	if err != nil {
		kind, msgs := messagesFor(err)
		c.notify.Notify(Notification{Kind: kind, Messages: msgs})
	}
	return err
}

// Retreat moves back one step without validation.
func (c *Controller) Retreat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step > StepDeparture {
		c.step--
	}
}

// Submit sends the draft from the confirmation step. On any failure the
// wizard stays on Confirmation with its data intact.
func (c *Controller) Submit(ctx context.Context) (*models.SimulationCreated, error) {
	c.mu.Lock()
	if c.step != StepConfirmation {
		c.mu.Unlock()
		return nil, ErrNotAtConfirmation
	}
	draft := c.draftLocked()
	c.mu.Unlock()

	created, err := c.gateway.Submit(ctx, draft)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			c.notify.Notify(Notification{Kind: KindValidation, Messages: ve.Messages})
		case errors.Is(err, ErrServer):
			c.notify.Notify(Notification{Kind: KindServer, Messages: []string{serverMessage}})
		default:
			c.notify.Notify(Notification{Kind: KindTransport, Messages: []string{submitNetMessage}})
		}
		return nil, err
	}

	c.mu.Lock()
	c.created = created
	c.phase = PhaseSubmitted
	c.mu.Unlock()
	return created, nil
}

func (c *Controller) SelectCountry(ctx context.Context, side Side, countryID string) error {
	return c.resolver.SelectCountry(ctx, side, countryID)
}

func (c *Controller) SelectCity(ctx context.Context, side Side, cityID string) error {
	return c.resolver.SelectCity(ctx, side, cityID)
}

func (c *Controller) SelectAgency(ctx context.Context, side Side, agencyID string) error {
	return c.resolver.SelectAgency(ctx, side, agencyID)
}

// ReloadCountries retries the country list after a failure.
func (c *Controller) ReloadCountries(ctx context.Context) error {
	return c.resolver.LoadCountries(ctx)
}

func (c *Controller) SetParcelCount(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editor.SetCount(n)
}

func (c *Controller) UpdateParcel(index int, field Field, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editor.UpdateField(index, field, value)
}

func (c *Controller) NextParcel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editor.Next()
}

func (c *Controller) PreviousParcel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editor.Previous()
}

func (c *Controller) JumpToParcel(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editor.JumpTo(i)
}

// CurrentParcel returns the focused index.
func (c *Controller) CurrentParcel() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editor.Current()
}

func (c *Controller) MaxParcels() int {
	return c.editor.Max()
}

func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Draft returns a snapshot of the aggregate state.
func (c *Controller) Draft() SimulationDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draftLocked()
}

func (c *Controller) draftLocked() SimulationDraft {
	return SimulationDraft{
		Departure:   c.resolver.Selection(Departure),
		Destination: c.resolver.Selection(Destination),
		Parcels:     c.editor.Parcels(),
	}
}

// Options returns a snapshot of the dropdown lists.
func (c *Controller) Options() Options {
	return c.resolver.Options()
}

// Quote estimates the price of the current draft.
func (c *Controller) Quote() pricing.Quote {
	draft := c.Draft()
	return c.gateway.tariff.Compute(draft.Parcels, draft.International(), c.gateway.now())
}

// Created returns the result of a successful Submit.
func (c *Controller) Created() *models.SimulationCreated {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created
}

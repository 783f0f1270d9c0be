package cli

import (
	"context"
	"errors"

	"github.com/ozzus/cocoplanner/internal/application/format"
	"github.com/ozzus/cocoplanner/internal/application/service"
	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/models"
)

type Planner interface {
	ValidateTrip(req models.TripRequest) error
	SearchFlights(ctx context.Context, req models.TripRequest) (models.RankedSelection, error)
	BuildPlan(ctx context.Context, req models.TripRequest, selection models.RankedSelection) (service.PlanResult, error)
	EmailPlan(ctx context.Context, plan models.TravelPlan) error
	EmailEnabled() bool
}

type PlanFinder interface {
	GetPlan(ctx context.Context, searchID string) (models.TravelPlan, error)
}

// PlanSession is one run of the interactive planner.
type PlanSession struct {
	p        *Prompter
	wizard   *Wizard
	planner  Planner
	progress *Progress
}

func NewPlanSession(p *Prompter, wizard *Wizard, planner Planner, progress *Progress) *PlanSession {
	if progress == nil {
		progress = NewProgress(p.Out())
	}
	return &PlanSession{p: p, wizard: wizard, planner: planner, progress: progress}
}

// Run collects the trip, searches flights, builds the itinerary and offers to
// email it. A cancelled wizard is not an error.
func (s *PlanSession) Run(ctx context.Context) error {
	req, err := s.wizard.Collect()
	if errors.Is(err, derr.ErrCancelled) {
		s.p.Println("\nTrip planning cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	for {
		err = s.planner.ValidateTrip(req)
		if err == nil {
			break
		}
		s.p.Error("%v", err)
		if req, err = s.wizard.Modify(req); err != nil {
			if errors.Is(err, derr.ErrCancelled) {
				s.p.Println("\nTrip planning cancelled.")
				return nil
			}
			return err
		}
	}

	s.progress.Start("Searching for available flights")
	selection, err := s.planner.SearchFlights(ctx, req)
	s.progress.Stop()
	switch {
	case errors.Is(err, derr.ErrNoFlightOptions):
		s.p.Warn("No flight options found. Please try different dates or routes.")
		return nil
	case err != nil:
		return err
	}

	if selection.CabinFallback {
		s.p.Warn("No %s class offers were found; showing the best offers in any cabin.", req.CabinClass.Label())
	}
	if n := len(selection.Excluded); n > 0 {
		s.p.Warn("%d offer(s) were skipped because their data could not be read.", n)
	}
	s.p.Println(format.FlightOptions(selection))

	s.progress.Start("Creating your perfect itinerary")
	result, err := s.planner.BuildPlan(ctx, req, selection)
	s.progress.Stop()
	if err != nil {
		return err
	}

	s.p.Heading("Your Itinerary")
	s.p.Println(result.Plan.Itinerary)
	s.p.Success("\nYour search ID: %s", result.Plan.SearchID)
	if !result.Saved {
		s.p.Warn("Warning: failed to store the plan, it cannot be retrieved later: %v", result.SaveErr)
	}

	if !s.planner.EmailEnabled() {
		return nil
	}
	send, err := s.p.AskYesNo("\nDo you want to receive your itinerary by email? (y/n): ")
	if err != nil || !send {
		return nil
	}
	if err := s.planner.EmailPlan(ctx, result.Plan); err != nil {
		s.p.Error("Failed to send email: %v", err)
		return nil
	}
	s.p.Success("Email sent to %s", result.Plan.Request.Email)
	return nil
}

// RetrieveSession looks up stored plans until the user quits.
type RetrieveSession struct {
	p      *Prompter
	finder PlanFinder
}

func NewRetrieveSession(p *Prompter, finder PlanFinder) *RetrieveSession {
	return &RetrieveSession{p: p, finder: finder}
}

// Show prints one plan. A missing plan is reported to the user, not returned.
func (s *RetrieveSession) Show(ctx context.Context, searchID string) error {
	plan, err := s.finder.GetPlan(ctx, searchID)
	if errors.Is(err, derr.ErrPlanNotFound) {
		s.p.Warn("\nNo plan found with search ID: %s", searchID)
		return nil
	}
	if err != nil {
		return err
	}
	s.p.Println()
	s.p.Println(format.PlanReport(plan))
	return nil
}

func (s *RetrieveSession) Run(ctx context.Context) error {
	for {
		searchID, err := s.p.Ask("\nEnter the search ID (e.g., 001234) or 'q' to quit: ")
		if errors.Is(err, derr.ErrCancelled) || (err == nil && (searchID == "q" || searchID == "Q")) {
			s.p.Println("\nGoodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		if err := s.Show(ctx, searchID); err != nil {
			return err
		}

		another, err := s.p.AskYesNo("\nWould you like to look up another plan? (y/n): ")
		if err != nil || !another {
			s.p.Println("\nGoodbye!")
			return nil
		}
	}
}

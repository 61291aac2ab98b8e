package client

import (
	"strings"

	"github.com/headcookai/headcook/internal/types"
)

// Messages shown to the user
const (
	MsgEmptyIngredients = "Please enter at least one ingredient."
	MsgSignIn           = "You have reached the free search limit. Please sign in to continue."
	MsgSearchFailed     = "Failed to fetch recipes. Please try again."
)

// Status is whether a search is in flight
type Status int

const (
	Idle Status = iota
	Searching
)

func (s Status) String() string {
	if s == Searching {
		return "searching"
	}
	return "idle"
}

// Outcome is how the last search ended
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeInvalid
	OutcomeSuccess
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// State is a snapshot of the search session. Generation identifies the
// most recently submitted search; responses carrying another generation
// are stale.
type State struct {
	Status      Status
	Outcome     Outcome
	Ingredients string
	Cuisines    []string
	Recipes     []types.Recipe
	Error       string
	SearchCount int64
	Generation  uint64
}

// Action is an input to Reduce
type Action interface {
	isAction()
}

// Submit starts a search
type Submit struct {
	Ingredients string
	Cuisines    []string
}

// Succeeded delivers the recipes of search Generation
type Succeeded struct {
	Generation  uint64
	Recipes     []types.Recipe
	SearchCount int64
}

// Failed delivers the error of search Generation
type Failed struct {
	Generation uint64
	Err        error
}

// Cancel aborts the search in flight
type Cancel struct{}

func (Submit) isAction()    {}
func (Succeeded) isAction() {}
func (Failed) isAction()    {}
func (Cancel) isAction()    {}

// Reduce returns the state after applying a. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Submit:
		if s.Status == Searching {
			return s
		}
		ingredients := strings.TrimSpace(a.Ingredients)
		if ingredients == "" {
			s.Outcome = OutcomeInvalid
			s.Error = MsgEmptyIngredients
			return s
		}
		s.Status = Searching
		s.Outcome = OutcomeNone
		s.Ingredients = ingredients
		s.Cuisines = a.Cuisines
		s.Error = ""
		s.Generation++
		return s

	case Succeeded:
		if s.Status != Searching || a.Generation != s.Generation {
			return s
		}
		s.Status = Idle
		s.Outcome = OutcomeSuccess
		s.Recipes = a.Recipes
		s.SearchCount = a.SearchCount
		s.Error = ""
		return s

	case Failed:
		if s.Status != Searching || a.Generation != s.Generation {
			return s
		}
		s.Status = Idle
		s.Outcome = OutcomeFailed
		s.Recipes = nil
		s.Error = FailureMessage(a.Err)
		return s

	case Cancel:
		if s.Status != Searching {
			return s
		}
		s.Status = Idle
		s.Outcome = OutcomeCancelled
		s.Recipes = nil
		s.Error = ""
		return s
	}
	return s
}

// FailureMessage is the user-facing text for a failed search
func FailureMessage(err error) string {
	if IsAuthError(err) {
		return MsgSignIn
	}
	return MsgSearchFailed
}

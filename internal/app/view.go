package app

import (
	"errors"
	"fmt"
)

// View is one screen of the workbench.
type View int

const (
	ViewDashboard View = iota
	ViewEncyclopedia
	ViewFormulator
	ViewSettings
)

var ErrInvalidTransition = errors.New("invalid view transition")

// Views lists every view in navigation order.
var Views = []View{ViewDashboard, ViewFormulator, ViewEncyclopedia, ViewSettings}

func (v View) String() string {
	switch v {
	case ViewDashboard:
		return "Dashboard"
	case ViewEncyclopedia:
		return "Species Library"
	case ViewFormulator:
		return "Formulator"
	case ViewSettings:
		return "Settings"
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// Title is the header shown above the view.
func (v View) Title() string {
	switch v {
	case ViewDashboard:
		return "Overview"
	case ViewEncyclopedia:
		return "Species Library"
	case ViewFormulator:
		return "Feed Formulation Workbench"
	case ViewSettings:
		return "Settings"
	}
	return ""
}

// resolveNavigation maps a navigation request to the view actually shown.
// The formulator needs a species; without one the library is shown instead.
func resolveNavigation(to View, hasSpecies bool) (View, error) {
	switch to {
	case ViewDashboard, ViewEncyclopedia, ViewSettings:
		return to, nil
	case ViewFormulator:
		if !hasSpecies {
			return ViewEncyclopedia, nil
		}
		return ViewFormulator, nil
	}
	return 0, fmt.Errorf("%w: unknown view %d", ErrInvalidTransition, int(to))
}

// clearsSpecies reports whether entering to drops the selected species.
func clearsSpecies(to View) bool {
	return to == ViewDashboard || to == ViewEncyclopedia
}

// canSelectSpecies reports whether the species picker is on screen in from.
func canSelectSpecies(from View) bool {
	return from == ViewEncyclopedia || from == ViewDashboard
}

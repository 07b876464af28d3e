package application

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrInvalidTransition is returned by Navigator.Fire when the event is not
// accepted in the current state.
var ErrInvalidTransition = errors.New("invalid screen transition")

// NavState is the screen currently shown.
type NavState string

const (
	NavLoggedOut NavState = "logged_out"
	NavList      NavState = "list"
	NavFormNew   NavState = "form_new"
	NavFormEdit  NavState = "form_edit"
)

// NavEvent triggers a screen transition.
type NavEvent string

const (
	EventLoginSucceeded NavEvent = "login_succeeded"
	EventRowActivated   NavEvent = "row_activated"
	EventCreateClicked  NavEvent = "create_clicked"
	EventFormClosed     NavEvent = "form_closed"
	EventLoggedOut      NavEvent = "logged_out"
)

// transitions maps state and event to the next state.
var transitions = map[NavState]map[NavEvent]NavState{
	NavLoggedOut: {
		EventLoginSucceeded: NavList,
		EventLoggedOut:      NavLoggedOut,
	},
	NavList: {
		EventLoginSucceeded: NavList,
		EventRowActivated:   NavFormEdit,
		EventCreateClicked:  NavFormNew,
		EventLoggedOut:      NavLoggedOut,
	},
	NavFormNew: {
		EventFormClosed: NavList,
		EventLoggedOut:  NavLoggedOut,
	},
	NavFormEdit: {
		EventFormClosed: NavList,
		EventLoggedOut:  NavLoggedOut,
	},
}

// Navigator sequences the screens: login, then the list, then a form, then
// back to the list. It starts LoggedOut and has no terminal state.
type Navigator struct {
	logger *slog.Logger

	mu          sync.Mutex
	state       NavState
	editingCode string
}

// NewNavigator creates a Navigator in the LoggedOut state.
func NewNavigator(logger *slog.Logger) *Navigator {
	return &Navigator{logger: logger, state: NavLoggedOut}
}

// State returns the current screen.
func (n *Navigator) State() NavState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// EditingCode returns the code of the item open in the edit form, or "" when
// the edit form is not shown.
func (n *Navigator) EditingCode() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.editingCode
}

// Fire applies event and returns the new state. code is required for
// EventRowActivated and ignored otherwise. On ErrInvalidTransition the state
// is unchanged.
func (n *Navigator) Fire(event NavEvent, code string) (NavState, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	next, ok := transitions[n.state][event]
	if !ok {
		return n.state, fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, n.state)
	}
	if event == EventRowActivated && code == "" {
		return n.state, fmt.Errorf("%w: row activated without a code", ErrInvalidTransition)
	}

	prev := n.state
	n.state = next
	n.editingCode = ""
	if next == NavFormEdit {
		n.editingCode = code
	}

	if prev != next {
		n.logger.Debug("screen transition", "from", prev, "to", next, "event", event)
	}
	return next, nil
}

// Close returns from any form to the list. It is a no-op outside a form.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != NavFormNew && n.state != NavFormEdit {
		return
	}
	n.logger.Debug("screen transition", "from", n.state, "to", NavList, "event", EventFormClosed)
	n.state = NavList
	n.editingCode = ""
}

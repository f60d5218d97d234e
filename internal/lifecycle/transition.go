package lifecycle

import "time"

// TransitionKind names a slot transition.
type TransitionKind string

const (
	TransitionBoot    TransitionKind = "boot"
	TransitionSuspend TransitionKind = "suspend"
	TransitionResume  TransitionKind = "resume"
)

// Transition is reported to observers after the slot changed.
type Transition struct {
	Kind       TransitionKind
	From       State
	To         State
	Generation uint64 // generation of the service created or disposed
	Err        error  // Initialize or Dispose error, if any
	At         time.Time
}

// Observer receives transitions. Implementations must not call back into the
// controller's transition methods.
type Observer interface {
	ObserveTransition(Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Transition)

// ObserveTransition calls f(t).
func (f ObserverFunc) ObserveTransition(t Transition) {
	f(t)
}

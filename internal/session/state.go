package session

import "fmt"

// State is the page a session is on. The zero value is Login.
type State int

const (
	StateLogin State = iota
	StatePayment
	StateQuestions
	StateResults
)

var stateNames = map[State]string{
	StateLogin:     "login",
	StatePayment:   "payment",
	StateQuestions: "questions",
	StateResults:   "results",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether s is one of the four known states.
func (s State) Valid() bool {
	_, ok := stateNames[s]
	return ok
}

// MarshalText renders the state by name in JSON views.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(b []byte) error {
	for st, name := range stateNames {
		if name == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", b)
}

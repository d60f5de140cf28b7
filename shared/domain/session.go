package domain

import "fmt"

// SessionState is a state of the admin sign-in state machine.
//
//	SignedOut -> Authenticating -> Authorized | Denied | Error
//	Denied -> SignedOut (automatic)
//	Authorized -> SignedOut (sign-out or expiry)
//	Error -> SignedOut | Authenticating
type SessionState int

const (
	SignedOut SessionState = iota
	Authenticating
	Authorized
	Denied
	SessionError
)

func (s SessionState) String() string {
	switch s {
	case SignedOut:
		return "signed_out"
	case Authenticating:
		return "authenticating"
	case Authorized:
		return "authorized"
	case Denied:
		return "denied"
	case SessionError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

var sessionTransitions = map[SessionState][]SessionState{
	SignedOut:      {Authenticating},
	Authenticating: {Authorized, Denied, SessionError},
	Authorized:     {SignedOut},
	Denied:         {SignedOut},
	SessionError:   {SignedOut, Authenticating},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to SessionState) bool {
	for _, s := range sessionTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SessionEvent is delivered to session-change subscribers.
type SessionEvent struct {
	Email Email
	From  SessionState
	To    SessionState
}

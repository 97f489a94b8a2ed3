package session

import (
	"encoding/json"

	"github.com/alexjbarnes/admin-console/internal/models"
)

// State is the controller's authentication state.
type State int

const (
	// Unknown is the state before storage has been read.
	Unknown State = iota
	Anonymous
	AwaitingOtp
	Awaiting2FA
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case AwaitingOtp:
		return "awaiting_otp"
	case Awaiting2FA:
		return "awaiting_2fa"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// ChallengeKind identifies a pending login step.
type ChallengeKind string

const (
	ChallengeNone      ChallengeKind = ""
	ChallengeOTP       ChallengeKind = "otp"
	ChallengeTwoFactor ChallengeKind = "2fa"
)

// Challenge is a login step the backend asked for before it will issue
// a session. OTP challenges carry the target and channel, 2FA
// challenges the user id.
type Challenge struct {
	Kind    ChallengeKind `json:"kind"`
	Target  string        `json:"target,omitempty"`
	Channel Channel       `json:"channel,omitempty"`
	UserID  string        `json:"userId,omitempty"`
}

// Pending reports whether c holds a challenge.
func (c Challenge) Pending() bool {
	return c.Kind != ChallengeNone
}

func (c Challenge) state() State {
	switch c.Kind {
	case ChallengeOTP:
		return AwaitingOtp
	case ChallengeTwoFactor:
		return Awaiting2FA
	default:
		return Anonymous
	}
}

func decodeChallenge(data []byte) Challenge {
	if len(data) == 0 {
		return Challenge{}
	}

	var c Challenge
	if err := json.Unmarshal(data, &c); err != nil {
		return Challenge{}
	}

	switch {
	case c.Kind == ChallengeOTP && c.Target != "":
		return c
	case c.Kind == ChallengeTwoFactor && c.UserID != "":
		return c
	default:
		return Challenge{}
	}
}

// Snapshot is a copy of the controller's observable state.
type Snapshot struct {
	State     State
	User      *models.UserProfile
	Challenge Challenge
}

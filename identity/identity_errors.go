package identity

import "github.com/pkg/errors"

var (
	AbortedErr          = errors.New("flow aborted by caller")
	UnknownChallengeErr = errors.New("unknown authentication challenge")
	NoSessionErr        = errors.New("authentication succeeded without a session")
)

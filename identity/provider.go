package identity

import "context"

// ChallengeKind is a backend-raised hurdle between credential acceptance
// and a session.
type ChallengeKind string

const (
	ChallengeNewPassword ChallengeKind = "NEW_PASSWORD_REQUIRED"
	ChallengeMFA         ChallengeKind = "MFA_CODE"
)

// Delivery describes where an out-of-band confirmation code was sent.
type Delivery struct {
	Via string // e.g. "SMS", "EMAIL"
	To  string // masked destination
}

// Session is an authenticated backend session: tokens plus the user
// attributes known to the provider.
type Session struct {
	UserID     string
	Username   string
	Attributes map[string]string
	Tokens     map[TokenKind]string
}

// User converts the session into the application's identity record.
func (s *Session) User() *User {
	user := NewUser()
	if s.UserID != "" {
		user.ID = s.UserID
	}
	user.Username = s.Username
	for k, v := range s.Attributes {
		user.Attributes[k] = v
	}
	for k, v := range s.Tokens {
		user.Tokens[k] = v
	}
	return user
}

// AuthResult is the outcome of an authentication step: either a session,
// or a further challenge the caller must answer.
type AuthResult struct {
	Session   *Session
	Challenge ChallengeKind
	Delivery  *Delivery
}

// SignUpResult reports whether registration completed outright or a
// confirmation code was dispatched.
type SignUpResult struct {
	Confirmed bool
	Delivery  *Delivery
}

// Provider is the backend identity system. Implementations hold the
// intermediate state between Authenticate and the follow-up calls that
// answer its challenge; the engine drives one flow at a time.
type Provider interface {
	// CurrentSession returns the cached session, or nil if signed out.
	CurrentSession(ctx context.Context) (*Session, error)

	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)

	// CompleteNewPassword answers a ChallengeNewPassword from Authenticate.
	CompleteNewPassword(ctx context.Context, newPassword string) (*AuthResult, error)

	// VerifyMFA answers a ChallengeMFA from Authenticate.
	VerifyMFA(ctx context.Context, code string) (*AuthResult, error)

	SignUp(ctx context.Context, username, password string, attributes map[string]string) (*SignUpResult, error)

	ConfirmSignUp(ctx context.Context, username, code string) error

	ForgotPassword(ctx context.Context, username string) (*Delivery, error)

	ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error

	SignOut(ctx context.Context) error
}

// Package localidp is a self-contained identity provider: bcrypt password
// hashes, per-user MFA codes, and HS256-signed session tokens. It backs
// development and tests; a hosted identity provider plugs in behind the
// same interface.
package localidp

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/shellmonger/mynotes/identity"
)

const defaultSignUpCode = "144255"

var _ identity.Provider = (*Provider)(nil)

type userRecord struct {
	id            string
	username      string
	passwordHash  string
	mfaCode       string
	passwordReset bool
	confirmed     bool
	attributes    map[string]string
}

type pendingStage int

const (
	stageNone pendingStage = iota
	stageNewPassword
	stageMFA
)

// Provider keeps its user base and the in-progress authentication state in
// memory. One authentication flow is driven at a time.
type Provider struct {
	mu      sync.Mutex
	users   map[string]*userRecord
	pending *userRecord
	stage   pendingStage
	session *identity.Session

	tokens     *tokenMinter
	signUpCode string
	nowTime    func() time.Time
}

type Option func(*Provider)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(p *Provider) {
		p.nowTime = nowFunc
	}
}

// WithSignUpConfirmationCode overrides the confirmation code expected for
// new registrations.
func WithSignUpConfirmationCode(code string) Option {
	return func(p *Provider) {
		p.signUpCode = code
	}
}

func New(tokenSecret []byte, issuer string, options ...Option) *Provider {
	p := &Provider{
		users:      make(map[string]*userRecord),
		signUpCode: defaultSignUpCode,
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.tokens = &tokenMinter{secret: tokenSecret, issuer: issuer, nowTime: func() time.Time { return p.nowTime() }}
	return p
}

// NewSeeded creates a provider with two well-known users: one that signs
// in through the MFA challenge and one with a pending password reset.
func NewSeeded(tokenSecret []byte, issuer string, options ...Option) *Provider {
	p := New(tokenSecret, issuer, options...)
	_ = p.AddUser(identity.DeriveUsername("user@user.com"), "abcd1234", "123456", false,
		map[string]string{"name": "User 1", "phone_number": "+17205551212", "email": "user@user.com"})
	_ = p.AddUser(identity.DeriveUsername("reset@password.com"), "abcd1234", "000000", true,
		map[string]string{"name": "User 2", "phone_number": "+14085551212", "email": "reset@password.com"})
	return p
}

// AddUser registers a confirmed user with the given password and MFA code.
func (p *Provider) AddUser(username, password, mfaCode string, passwordReset bool, attributes map[string]string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "[Provider.AddUser] GenerateFromPassword")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.users[username]; exists {
		return UserExistsErr
	}
	attrs := make(map[string]string, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}
	p.users[username] = &userRecord{
		id:            newUserID(),
		username:      username,
		passwordHash:  string(hash),
		mfaCode:       mfaCode,
		passwordReset: passwordReset,
		confirmed:     true,
		attributes:    attrs,
	}
	return nil
}

func (p *Provider) CurrentSession(ctx context.Context) (*identity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session, nil
}

func (p *Provider) Authenticate(ctx context.Context, username, password string) (*identity.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	user, ok := p.users[username]
	if !ok {
		return nil, UnknownUserErr
	}
	if !user.confirmed {
		return nil, UserNotConfirmedErr
	}
	if bcrypt.CompareHashAndPassword([]byte(user.passwordHash), []byte(password)) != nil {
		return nil, PasswordIncorrectErr
	}

	if user.passwordReset {
		p.pending = user
		p.stage = stageNewPassword
		return &identity.AuthResult{Challenge: identity.ChallengeNewPassword}, nil
	}

	p.pending = user
	p.stage = stageMFA
	return &identity.AuthResult{
		Challenge: identity.ChallengeMFA,
		Delivery:  &identity.Delivery{Via: "SMS", To: user.attributes["phone_number"]},
	}, nil
}

func (p *Provider) CompleteNewPassword(ctx context.Context, newPassword string) (*identity.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stage != stageNewPassword || p.pending == nil {
		return nil, NoPendingAuthErr
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "[Provider.CompleteNewPassword] GenerateFromPassword")
	}
	user := p.pending
	user.passwordHash = string(hash)
	user.passwordReset = false
	p.pending = nil
	p.stage = stageNone

	return p.establishSession(user)
}

func (p *Provider) VerifyMFA(ctx context.Context, code string) (*identity.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stage != stageMFA || p.pending == nil {
		return nil, NoPendingAuthErr
	}
	user := p.pending
	p.pending = nil
	p.stage = stageNone

	if user.mfaCode != code {
		return nil, MFACodeMismatchErr
	}
	return p.establishSession(user)
}

func (p *Provider) SignUp(ctx context.Context, username, password string, attributes map[string]string) (*identity.SignUpResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "[Provider.SignUp] GenerateFromPassword")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.users[username]; exists {
		return nil, UserExistsErr
	}
	attrs := make(map[string]string, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}
	p.users[username] = &userRecord{
		id:           newUserID(),
		username:     username,
		passwordHash: string(hash),
		mfaCode:      p.signUpCode,
		confirmed:    false,
		attributes:   attrs,
	}
	return &identity.SignUpResult{
		Confirmed: false,
		Delivery:  &identity.Delivery{Via: "SMS", To: attrs["phone_number"]},
	}, nil
}

func (p *Provider) ConfirmSignUp(ctx context.Context, username, code string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	user, ok := p.users[username]
	if !ok {
		return UnknownUserErr
	}
	if code != p.signUpCode {
		return ConfirmationCodeErr
	}
	user.confirmed = true
	return nil
}

func (p *Provider) ForgotPassword(ctx context.Context, username string) (*identity.Delivery, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	user, ok := p.users[username]
	if !ok {
		return nil, UnknownUserErr
	}
	return &identity.Delivery{Via: "SMS", To: user.attributes["phone_number"]}, nil
}

func (p *Provider) ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	user, ok := p.users[username]
	if !ok {
		return UnknownUserErr
	}
	if user.mfaCode != code {
		return MFACodeMismatchErr
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "[Provider.ConfirmForgotPassword] GenerateFromPassword")
	}
	user.passwordHash = string(hash)
	user.passwordReset = false
	return nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = nil
	return nil
}

// establishSession mints tokens and caches the session. Callers must hold
// the lock.
func (p *Provider) establishSession(user *userRecord) (*identity.AuthResult, error) {
	tokens, err := p.tokens.mint(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Provider.establishSession]")
	}
	attrs := make(map[string]string, len(user.attributes))
	for k, v := range user.attributes {
		attrs[k] = v
	}
	session := &identity.Session{
		UserID:     user.id,
		Username:   user.username,
		Attributes: attrs,
		Tokens:     tokens,
	}
	p.session = session
	return &identity.AuthResult{Session: session}, nil
}

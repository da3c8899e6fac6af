package identity

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SessionSink receives the authenticated user on success. It is the only
// state the engine touches outside a flow; persisting the last-used
// username is the caller's concern, not the engine's.
type SessionSink interface {
	SetCurrentUser(user *User)
	ClearCurrentUser()
}

// Engine drives the sign-in, sign-up, forgot-password and sign-out flows
// as explicit state machines. Each flow invokes the caller's handler once
// per challenge round and terminates in Success or Failure; no error ever
// crosses the engine boundary as a panic or a returned error.
type Engine struct {
	provider Provider
	store    SessionSink
}

func NewEngine(provider Provider, store SessionSink) (*Engine, error) {
	if provider == nil {
		return nil, errors.New("[NewEngine] provider is required")
	}
	if store == nil {
		return nil, errors.New("[NewEngine] session sink is required")
	}
	return &Engine{provider: provider, store: store}, nil
}

// Restore loads a cached provider session into the session sink, if one
// exists. Called once at startup; a missing session is not an error.
func (e *Engine) Restore(ctx context.Context) error {
	session, err := e.provider.CurrentSession(ctx)
	if err != nil {
		return errors.Wrap(err, "[Engine.Restore] CurrentSession")
	}
	if session != nil {
		e.store.SetCurrentUser(session.User())
	}
	return nil
}

// SignIn walks the caller through credential collection and any backend
// challenges. With a valid cached session it succeeds immediately.
func (e *Engine) SignIn(ctx context.Context, handler Handler) Request {
	log.Debug().Msg("Engine.SignIn")

	if session, err := e.provider.CurrentSession(ctx); err == nil && session != nil {
		return e.succeed(ctx, handler, session)
	}

	response, err := e.ask(ctx, handler, NeedCredentials, nil)
	if err != nil {
		return e.fail(ctx, handler, err.Error())
	}
	username := DeriveUsername(response[FieldUsername])
	password := response[FieldPassword]
	if username == "" {
		return e.fail(ctx, handler, "Username is empty")
	}
	if password == "" {
		return e.fail(ctx, handler, "Password is empty")
	}

	result, err := e.provider.Authenticate(ctx, username, password)
	if err != nil {
		return e.fail(ctx, handler, err.Error())
	}
	return e.resolveAuth(ctx, handler, result)
}

// SignUp collects the registration fields, then the confirmation code the
// backend delivered out of band. All four fields are required before any
// backend call is attempted.
func (e *Engine) SignUp(ctx context.Context, handler Handler) Request {
	log.Debug().Msg("Engine.SignUp")

	response, err := e.ask(ctx, handler, NeedSignup, nil)
	if err != nil {
		return e.fail(ctx, handler, err.Error())
	}
	emailAddr := response[FieldUsername]
	password := response[FieldPassword]
	phone := response[FieldPhone]
	name := response[FieldName]
	if emailAddr == "" {
		return e.fail(ctx, handler, "Email Address is empty")
	}
	if password == "" {
		return e.fail(ctx, handler, "Password is empty")
	}
	if phone == "" {
		return e.fail(ctx, handler, "Phone is empty")
	}
	if name == "" {
		return e.fail(ctx, handler, "Name is empty")
	}
	username := DeriveUsername(emailAddr)

	attributes := map[string]string{
		"email":        emailAddr,
		"phone_number": phone,
		"name":         name,
	}
	result, err := e.provider.SignUp(ctx, username, password, attributes)
	if err != nil {
		return e.fail(ctx, handler, err.Error())
	}
	if result.Confirmed {
		// No confirmation round needed.
		handler(ctx, Success, nil)
		return Success
	}

	codeResponse, err := e.ask(ctx, handler, NeedMultiFactorCode, deliveryParams(result.Delivery))
	if err != nil {
		return e.fail(ctx, handler, err.Error())
	}
	code := codeResponse[FieldMFACode]
	if len(code) != 6 {
		return e.fail(ctx, handler, fmt.Sprintf("Invalid MFA Code len=%d", len(code)))
	}
	if err := e.provider.ConfirmSignUp(ctx, username, code); err != nil {
		return e.fail(ctx, handler, err.Error())
	}

	handler(ctx, Success, nil)
	return Success
}

// ForgotPassword collects the username and replacement password, then the
// reset code delivered out of band.
func (e *Engine) ForgotPassword(ctx context.Context, handler Handler) Request {
	log.Debug().Msg("Engine.ForgotPassword")

	response, err := e.ask(ctx, handler, NeedCredentials, nil)
	if err != nil {
		return e.fail(ctx, handler, err.Error())
	}
	username := DeriveUsername(response[FieldUsername])
	newPassword := response[FieldPassword]
	if username == "" {
		return e.fail(ctx, handler, "Username must be specified")
	}
	if newPassword == "" {
		return e.fail(ctx, handler, "New password must be specified")
	}

	delivery, err := e.provider.ForgotPassword(ctx, username)
	if err != nil {
		return e.fail(ctx, handler, err.Error())
	}

	codeResponse, err := e.ask(ctx, handler, NeedMultiFactorCode, deliveryParams(delivery))
	if err != nil {
		return e.fail(ctx, handler, err.Error())
	}
	code := codeResponse[FieldMFACode]
	if code == "" {
		return e.fail(ctx, handler, "MFA code is empty")
	}
	if err := e.provider.ConfirmForgotPassword(ctx, username, code, newPassword); err != nil {
		return e.fail(ctx, handler, err.Error())
	}

	handler(ctx, Success, nil)
	return Success
}

// SignOut clears the provider session and the stored identity. The
// persisted last-used username is deliberately left alone.
func (e *Engine) SignOut(ctx context.Context, handler Handler) Request {
	log.Debug().Msg("Engine.SignOut")

	if err := e.provider.SignOut(ctx); err != nil {
		log.Warn().Err(err).Msg("Engine.SignOut - provider sign-out failed")
	}
	e.store.ClearCurrentUser()
	handler(ctx, Success, nil)
	return Success
}

// resolveAuth loops over backend challenges until the provider yields a
// session or the flow fails. Each challenge is answered at most once.
func (e *Engine) resolveAuth(ctx context.Context, handler Handler, result *AuthResult) Request {
	for {
		switch {
		case result == nil:
			return e.fail(ctx, handler, "Unknown error")

		case result.Session != nil:
			return e.succeed(ctx, handler, result.Session)

		case result.Challenge == ChallengeNewPassword:
			response, err := e.ask(ctx, handler, NeedNewPassword, nil)
			if err != nil {
				return e.fail(ctx, handler, err.Error())
			}
			newPassword := response[FieldPassword]
			if newPassword == "" {
				return e.fail(ctx, handler, "Invalid new password")
			}
			result, err = e.provider.CompleteNewPassword(ctx, newPassword)
			if err != nil {
				return e.fail(ctx, handler, err.Error())
			}

		case result.Challenge == ChallengeMFA:
			response, err := e.ask(ctx, handler, NeedMultiFactorCode, deliveryParams(result.Delivery))
			if err != nil {
				return e.fail(ctx, handler, err.Error())
			}
			code := response[FieldMFACode]
			if code == "" {
				return e.fail(ctx, handler, "MFA code is empty")
			}
			result, err = e.provider.VerifyMFA(ctx, code)
			if err != nil {
				return e.fail(ctx, handler, err.Error())
			}

		case result.Challenge == "":
			return e.fail(ctx, handler, NoSessionErr.Error())

		default:
			return e.fail(ctx, handler, UnknownChallengeErr.Error())
		}
	}
}

// ask presents one challenge round to the caller. A nil response aborts
// the flow.
func (e *Engine) ask(ctx context.Context, handler Handler, req Request, params Params) (Response, error) {
	response, err := handler(ctx, req, params)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid response from %s", req)
	}
	if response == nil {
		return nil, errors.Wrapf(AbortedErr, "no response from %s", req)
	}
	return response, nil
}

func (e *Engine) succeed(ctx context.Context, handler Handler, session *Session) Request {
	user := session.User()
	e.store.SetCurrentUser(user)
	log.Info().Str("username", user.Username).Msg("Engine - authenticated")
	handler(ctx, Success, nil)
	return Success
}

func (e *Engine) fail(ctx context.Context, handler Handler, message string) Request {
	if message == "" {
		message = "Unknown error"
	}
	log.Warn().Str("message", message).Msg("Engine - flow failed")
	handler(ctx, Failure, Params{ParamMessage: message})
	return Failure
}

func deliveryParams(delivery *Delivery) Params {
	if delivery == nil {
		return nil
	}
	return Params{ParamDeliveryVia: delivery.Via, ParamDeliveryTo: delivery.To}
}

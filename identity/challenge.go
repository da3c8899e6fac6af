package identity

import "context"

// Request is the kind of challenge the engine presents to the caller.
type Request string

const (
	NeedSignup          Request = "NEED_SIGNUP"
	NeedCredentials     Request = "NEED_CREDENTIALS"
	NeedNewPassword     Request = "NEED_NEWPASSWORD"
	NeedMultiFactorCode Request = "NEED_MULTIFACTORCODE"
	Success             Request = "SUCCESS"
	Failure             Request = "FAILURE"
)

// Terminal reports whether the request ends the flow; no response is
// expected for a terminal request.
func (r Request) Terminal() bool {
	return r == Success || r == Failure
}

// Params carries optional challenge parameters (MFA delivery channel and
// destination, failure message).
type Params map[string]string

// Response is the caller's answer to a challenge.
type Response map[string]string

// Well-known keys in challenge params and responses.
const (
	ParamMessage     = "message"
	ParamDeliveryVia = "deliveryVia"
	ParamDeliveryTo  = "deliveryTo"

	FieldUsername = "username"
	FieldPassword = "password"
	FieldPhone    = "phone"
	FieldName     = "name"
	FieldMFACode  = "mfaCode"
)

// Handler is supplied by the caller and invoked once per challenge round.
// Returning a nil response aborts the flow, which the engine reports as a
// validation failure. For terminal requests the return value is ignored.
type Handler func(ctx context.Context, req Request, params Params) (Response, error)

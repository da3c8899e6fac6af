package localidp

import "github.com/pkg/errors"

var (
	UnknownUserErr       = errors.New("Username does not exist")
	PasswordIncorrectErr = errors.New("Password incorrect")
	MFACodeMismatchErr   = errors.New("MFA Code Incorrect")
	UserExistsErr        = errors.New("Username already exists")
	UserNotConfirmedErr  = errors.New("User is not confirmed")
	ConfirmationCodeErr  = errors.New("Invalid Code Entered")
	NoPendingAuthErr     = errors.New("no authentication in progress")
)

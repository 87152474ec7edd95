package session

import "github.com/pkg/errors"

// Auth error codes
const (
	CodeInvalidCredential   = "invalid-credential"
	CodeInvalidEmail        = "invalid-email"
	CodeUserDisabled        = "user-disabled"
	CodeUserNotFound        = "user-not-found"
	CodeWrongPassword       = "wrong-password"
	CodeTooManyRequests     = "too-many-requests"
	CodeEmailAlreadyInUse   = "email-already-in-use"
	CodeWeakPassword        = "weak-password"
	CodeOperationNotAllowed = "operation-not-allowed"
	CodeUnknown             = "unknown"
)

// Operations an AuthError may be reported for.
const (
	OpSignIn = "sign-in"
	OpSignUp = "sign-up"
)

var (
	signInMessages = map[string]string{
		CodeInvalidCredential: "Invalid email or password. Please check your credentials.",
		CodeInvalidEmail:      "Invalid email address format",
		CodeUserDisabled:      "This account has been disabled",
		CodeUserNotFound:      "No account found with this email",
		CodeWrongPassword:     "Invalid password",
		CodeTooManyRequests:   "Too many failed login attempts. Please try again later.",
	}
	signInDefault = "An error occurred during login. Please try again."

	signUpMessages = map[string]string{
		CodeEmailAlreadyInUse:   "This email is already registered",
		CodeInvalidEmail:        "Invalid email address format",
		CodeOperationNotAllowed: "Email/password accounts are not enabled",
		CodeWeakPassword:        "Password is too weak",
	}
	signUpDefault = "An error occurred during sign up"
)

// AuthError is returned by a Provider when authentication is refused.
type AuthError struct {
	Code string
	Err  error
}

func NewAuthError(code string, err ...error) *AuthError {
	ae := &AuthError{Code: code}
	if len(err) > 0 {
		ae.Err = err[0]
	}
	return ae
}

func (err *AuthError) Error() string {
	if err.Err != nil {
		return "auth/" + err.Code + ": " + err.Err.Error()
	}
	return "auth/" + err.Code
}

func (err *AuthError) Unwrap() error { return err.Err }

// Message maps the code to a user-readable message for the given operation.
func (err *AuthError) Message(op string) string {
	if op == OpSignUp {
		if msg, ok := signUpMessages[err.Code]; ok {
			return msg
		}
		return signUpDefault
	}
	if msg, ok := signInMessages[err.Code]; ok {
		return msg
	}
	return signInDefault
}

// AuthErrorCode returns the code of an *AuthError found in err's chain, or CodeUnknown.
func AuthErrorCode(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// ErrorMessage maps any error to a user-readable message for the given operation.
func ErrorMessage(op string, err error) string {
	var ae *AuthError
	if !errors.As(err, &ae) {
		ae = NewAuthError(CodeUnknown, err)
	}
	return ae.Message(op)
}

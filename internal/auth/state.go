package auth

// State identifies where the unlock ceremony currently stands.
type State string

const (
	// StateSignup: no vault exists on this device yet.
	StateSignup State = "signup"

	// StateUnlock: a vault exists, waiting for the master password.
	StateUnlock State = "unlock"

	// StateMFASetup: password accepted, no second factor enrolled yet.
	StateMFASetup State = "mfa_setup"

	// StateMFAVerify: waiting for a TOTP or e-mail code.
	StateMFAVerify State = "mfa_verify"

	// StateSessionGranted: fully authenticated, session token issued.
	StateSessionGranted State = "session_granted"
)

// Method is the second factor used by the current ceremony.
type Method string

const (
	MethodNone  Method = ""
	MethodTOTP  Method = "totp"
	MethodEmail Method = "email"
)

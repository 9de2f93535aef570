package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/keyfold/internal/mailer"
)

// EnrollTOTP starts authenticator enrollment: prints the secret, renders the
// provisioning QR code and waits for the confirmation code. The secret is not
// stored until the first code verifies.
func (a *App) EnrollTOTP(ctx context.Context) error {
	enr, err := a.flow.StartTOTPEnrollment(ctx)
	if err != nil {
		printlnFn("TOTP enrollment failed:", err.Error())
		return err
	}

	printlnFn("Scan the QR code with your authenticator app, or enter the secret manually.")
	printlnFn("Secret:", enr.Secret)
	renderQR(enr.URI, a.out)
	printlnFn("Confirm with: code <digits>")
	return nil
}

// EmailCode sends a one-time code to the vault owner's address. A new request
// replaces any previous code.
func (a *App) EmailCode(ctx context.Context) error {
	expires, err := a.flow.RequestEmailCode(ctx)
	if err != nil {
		printlnFn("Could not send code:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Code sent to %s, valid until %s",
		mailer.MaskAddress(a.flow.Email()), expires.Format("15:04:05")))
	return nil
}

// Code submits a verification code, either from the command arguments
// ("code 123456") or from an interactive prompt.
func (a *App) Code(ctx context.Context, args []string) error {
	var code string
	if len(args) > 0 {
		code = args[0]
	} else {
		var err error
		code, err = getSimpleText(a.reader, "Enter code", a.out)
		if err != nil {
			return err
		}
	}

	sess, err := a.flow.SubmitCode(ctx, code)
	if err != nil {
		printlnFn("Code rejected:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s! The vault is open.", sess.Name))
	return nil
}

package cli

import (
	"io"

	qrterminal "github.com/mdp/qrterminal/v3"
)

// renderQR draws the otpauth provisioning URI as a QR code in the terminal,
// so the secret can be scanned straight into an authenticator app.
func renderQR(uri string, w io.Writer) {
	qrterminal.GenerateWithConfig(uri, qrterminal.Config{
		Level:     qrterminal.L,
		Writer:    w,
		BlackChar: qrterminal.BLACK,
		WhiteChar: qrterminal.WHITE,
		QuietZone: 1,
	})
}

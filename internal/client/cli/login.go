package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/clipfeed/clipfeed/internal/client/models"
)

var stdout = os.Stdout

// Login walks the two-step phone verification: request a code, then confirm
// it. Errors are rendered from the session state, so the user sees the
// provider's message verbatim.
func (a *App) Login(ctx context.Context) {
	if a.session.IsAuthenticated() {
		fmt.Println("Already signed in.")
		return
	}

	if a.session.Snapshot().Phase != models.SessionCodeSent {
		phone, err := GetSimpleText(a.reader, "Enter phone number", stdout)
		if err != nil {
			return
		}

		if err := a.session.RequestCode(ctx, phone); err != nil {
			fmt.Printf("Could not send code: %s\n", a.session.Snapshot().Err)
			return
		}
		fmt.Printf("Code sent to %s\n", a.session.Snapshot().PhoneNumber)
	}

	code, err := GetCode(stdout)
	if err != nil {
		return
	}

	if err := a.session.ConfirmCode(ctx, code); err != nil {
		fmt.Printf("Could not confirm code: %s\n", a.session.Snapshot().Err)
		return
	}
	fmt.Println("Signed in.")
}

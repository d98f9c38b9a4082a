package cli

import (
	"context"
	"fmt"

	"github.com/clipfeed/clipfeed/internal/client/models"
)

// Root runs the command loop until the user quits or input ends.
func (a *App) Root(ctx context.Context) {
	fmt.Println("ClipFeed")

	for {
		a.printMenu()

		cmd, err := GetSimpleText(a.reader, "Command", stdout)
		if err != nil {
			return
		}

		switch cmd {
		case "login":
			a.Login(ctx)
		case "feed":
			a.Feed(ctx)
		case "upload":
			a.Upload(ctx)
		case "logout":
			a.session.SignOut(ctx)
			fmt.Println("Signed out.")
		case "status":
			a.printStatus()
		case "q", "quit", "exit":
			return
		case "":
			// ignore
		default:
			fmt.Printf("Unknown command %q\n", cmd)
		}
	}
}

func (a *App) printMenu() {
	if a.session.IsAuthenticated() {
		fmt.Println("\nCommands: feed | upload | status | logout | quit")
		return
	}
	fmt.Println("\nCommands: login | feed | status | quit")
}

func (a *App) printStatus() {
	s := a.session.Snapshot()
	fmt.Printf("Phase: %s\n", s.Phase)
	if s.PhoneNumber != "" {
		fmt.Printf("Phone: %s\n", s.PhoneNumber)
	}
	if s.Err != "" {
		fmt.Printf("Last error: %s\n", s.Err)
	}
	if s.Phase == models.SessionCodeSent {
		fmt.Println("A verification code is pending. Use 'login' to enter it.")
	}
}

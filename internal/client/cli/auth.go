package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/mealtrack/internal/client/client"
	"github.com/dmitrijs2005/mealtrack/internal/common"
)

// Register prompts for a username and password and creates the account.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		return err
	}

	a.printf("Registered %s, you can log in now\n", userName)
	return nil
}

// Login prompts for credentials and starts a session that is kept locally
// for the next start.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	a.stopWatch()
	if err := a.authService.Login(ctx, userName, password); err != nil {
		return err
	}

	a.setUser(userName)
	a.setMode(ModeOnline)
	a.printf("Logged in as %s\n", userName)
	return nil
}

// Logout closes the live watch, revokes the session and wipes it locally.
// An unreachable server does not keep the user logged in.
func (a *App) Logout(ctx context.Context) error {
	a.stopWatch()
	err := a.authService.Logout(ctx)
	a.setUser("")
	if err != nil && !errors.Is(err, client.ErrUnavailable) && !errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	a.printf("Logged out\n")
	return nil
}

// afterCommand reports err and keeps the stored session in step with token
// rotation. A failed command may still have refreshed the tokens before
// failing, so the session is saved either way. A rejected session logs the
// user out locally.
func (a *App) afterCommand(ctx context.Context, err error) {
	if err != nil {
		a.printf("%s\n", describeError(err))
		if errors.Is(err, client.ErrUnauthorized) && a.isLoggedIn() {
			a.stopWatch()
			a.setUser("")
			return
		}
	}
	a.saveSession(ctx)
}

func (a *App) saveSession(ctx context.Context) {
	if !a.isLoggedIn() {
		return
	}
	if err := a.authService.SaveSession(ctx); err != nil {
		a.logger.Warn(ctx, "session not saved", "error", err)
	}
}

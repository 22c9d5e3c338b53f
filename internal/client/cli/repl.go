package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/mealtrack/internal/client/client"
	"github.com/dmitrijs2005/mealtrack/internal/common"
)

// execIface defines the command surface the REPL needs to operate.
// App implements it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Search(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Totals(ctx context.Context, args []string) error
	Watch(ctx context.Context, args []string) error
	Unwatch(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	afterCommand(ctx context.Context, err error)
}

var loggedInCommands = map[string]bool{
	"logout": true, "search": true, "add": true, "delete": true, "show": true,
	"totals": true, "watch": true, "unwatch": true, "export": true,
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: search <text>, add <category> #<n> [qty] [measure], add <category> <kcal> <name>, " +
		"delete <category> <id> [date], show [date], totals [date], watch [date], unwatch, export [date] [file], logout, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit", or the end
// of ctx. Handler errors are passed to afterCommand.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "mt %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		if ctx.Err() != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if loggedInCommands[cmd] && !a.isLoggedIn() {
			fmt.Fprintln(w, "Please log in first")
			continue
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpLoggedIn)
			} else {
				fmt.Fprintln(w, helpLoggedOut)
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "search":
			cmdErr = a.Search(ctx, args)
		case "add":
			cmdErr = a.Add(ctx, args)
		case "delete":
			cmdErr = a.Delete(ctx, args)
		case "show":
			cmdErr = a.Show(ctx, args)
		case "totals":
			cmdErr = a.Totals(ctx, args)
		case "watch":
			cmdErr = a.Watch(ctx, args)
		case "unwatch":
			cmdErr = a.Unwatch(ctx)
		case "export":
			cmdErr = a.Export(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
			continue
		}
		a.afterCommand(ctx, cmdErr)
	}
}

// errUsage carries a usage line back to the user.
type errUsage string

func (e errUsage) Error() string { return "usage: " + string(e) }

// describeError turns a command error into the line shown to the user.
func describeError(err error) string {
	var usage errUsage
	switch {
	case errors.As(err, &usage):
		return usage.Error()
	case errors.Is(err, client.ErrUnauthorized):
		return "Not authorized, please log in again"
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, try again later"
	case errors.Is(err, client.ErrConflict):
		return "The log was changed elsewhere, run 'show' and try again"
	case errors.Is(err, client.ErrNotFound):
		return "Not found"
	case errors.Is(err, client.ErrUserExists):
		return "This username is taken"
	case errors.Is(err, common.ErrValidation), errors.Is(err, client.ErrInvalidInput):
		return err.Error()
	}
	return "Error: " + err.Error()
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App implements
// it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Verify(ctx context.Context, token string) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	Status(ctx context.Context) error
	Avatar(ctx context.Context, path string) error
	ChangeEmail(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context, token string) error
}

const (
	helpGuest  = "Available commands: register, verify <token>, login, forgot, reset <token>, status, help, exit"
	helpMember = "Available commands: profile, avatar <path>, email, status, logout, help, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit", or ctx is
// done. Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("sk %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpMember)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "verify":
			if len(args) == 0 {
				printlnFn("Usage: verify <token>")
				continue
			}
			cmdErr = a.Verify(ctx, args[0])

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "profile", "me":
			cmdErr = a.Profile(ctx)

		case "status":
			cmdErr = a.Status(ctx)

		case "avatar":
			if len(args) == 0 {
				printlnFn("Usage: avatar <path>")
				continue
			}
			cmdErr = a.Avatar(ctx, strings.Join(args, " "))

		case "email":
			cmdErr = a.ChangeEmail(ctx)

		case "forgot":
			cmdErr = a.Forgot(ctx)

		case "reset":
			if len(args) == 0 {
				printlnFn("Usage: reset <token>")
				continue
			}
			cmdErr = a.Reset(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describeError(cmdErr))
		}
	}
}

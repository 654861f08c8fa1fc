package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Attendance(ctx context.Context) error
	Visit(ctx context.Context) error
	Report(ctx context.Context) error
	LastReport(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login [username], help, exit"
	helpLoggedIn  = "Available commands: attendance, visit, report, last, whoami, logout, help, exit"
)

// runREPL reads one command per line from reader and dispatches it. Handler
// errors are printed and never end the loop; only exit/quit, end of input or
// a cancelled ctx do.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("fk %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		if ctx.Err() != nil {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var cmdErr error
		switch cmd {
		case "help", "?":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "login":
			cmdErr = a.Login(ctx, args)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "attendance", "a":
			cmdErr = a.Attendance(ctx)

		case "visit", "v":
			cmdErr = a.Visit(ctx)

		case "report", "r":
			cmdErr = a.Report(ctx)

		case "last":
			cmdErr = a.LastReport(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr.Error())
		}
	}
}

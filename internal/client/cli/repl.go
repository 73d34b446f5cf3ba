package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn and printFn are test seams for user-facing output.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Mkdir(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Cd(ctx context.Context, args []string) error
	Publish(ctx context.Context, args []string) error
	Unpublish(ctx context.Context, args []string) error
	Get(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, get <id> [size], exit"
	helpLoggedIn  = "Available commands: me, mkdir <name>, upload <path> [public], (l)s [page], cd <id>|..|/, " +
		"publish <id>, unpublish <id>, get <id> [size], logout, exit"
)

// usage lists the commands that need an argument.
var usage = map[string]string{
	"mkdir":     "Usage: mkdir <name>",
	"upload":    "Usage: upload <path> [public]",
	"cd":        "Usage: cd <id>|..|/",
	"publish":   "Usage: publish <id>",
	"unpublish": "Usage: unpublish <id>",
	"get":       "Usage: get <id> [size]",
}

// needsLogin lists the commands that are refused without a session.
var needsLogin = map[string]bool{
	"logout": true, "me": true, "mkdir": true, "upload": true, "ls": true, "l": true,
	"cd": true, "publish": true, "unpublish": true,
}

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF or on "exit"/"quit". Handler errors are reported by the
// handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("fm %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			printlnFn()
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if msg, ok := usage[cmd]; ok && len(args) == 0 {
			printlnFn(msg)
			continue
		}
		if needsLogin[cmd] && !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "me":
			_ = a.Me(ctx)

		case "mkdir":
			_ = a.Mkdir(ctx, args)

		case "upload":
			_ = a.Upload(ctx, args)

		case "l", "ls":
			_ = a.List(ctx, args)

		case "cd":
			_ = a.Cd(ctx, args)

		case "publish":
			_ = a.Publish(ctx, args)

		case "unpublish":
			_ = a.Unpublish(ctx, args)

		case "get":
			_ = a.Get(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

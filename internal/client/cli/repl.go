package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	loggedIn() bool
	Contacts(ctx context.Context) error
	AddContact(ctx context.Context) error
	DeleteContact(ctx context.Context, args []string) error
	LogInteraction(ctx context.Context, args []string) error
	Interactions(ctx context.Context, args []string) error
	Remind(ctx context.Context, args []string) error
	Reminders(ctx context.Context, args []string) error
	Due(ctx context.Context) error
	Upcoming(ctx context.Context) error
	Ack(ctx context.Context, args []string) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Migrate(ctx context.Context) error
}

const helpText = `Available commands:
  contacts             list contacts with last interaction and reminders
  addcontact           add a contact
  delcontact <id>      delete a contact (and its history)
  log [contactId]      log an interaction
  interactions <id>    list a contact's interactions
  remind [contactId]   add a reminder
  reminders [id]       list reminders (all or for one contact)
  due                  list due reminders
  upcoming             list upcoming reminders
  ack <reminderId>     acknowledge a reminder
  login | logout       switch between local and remote storage
  migrate              move local data to the remote store
  exit | quit          leave the program`

// runREPL starts a simple read-eval-print loop for the KeepInTouch CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit". Errors returned by command handlers are printed and the
// loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		fmt.Printf("kit %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "contacts":
			err = a.Contacts(ctx)

		case "addcontact":
			err = a.AddContact(ctx)

		case "delcontact":
			err = a.DeleteContact(ctx, args)

		case "log":
			err = a.LogInteraction(ctx, args)

		case "interactions":
			err = a.Interactions(ctx, args)

		case "remind":
			err = a.Remind(ctx, args)

		case "reminders":
			err = a.Reminders(ctx, args)

		case "due":
			err = a.Due(ctx)

		case "upcoming":
			err = a.Upcoming(ctx)

		case "ack":
			err = a.Ack(ctx, args)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "migrate":
			err = a.Migrate(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}

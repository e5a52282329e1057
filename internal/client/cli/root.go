package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	if a.isLoggedIn() {
		return fmt.Sprintf("(%s)", a.sess.User.Email)
	}
	return ""
}

func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to QueueVault CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("qv %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: submit [event], list, stats, events, logout, exit")
			} else {
				fmt.Println("Available commands: register, login, events, exit")
			}

		case "register":
			a.Register(ctx)
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "submit":
			selector := ""
			if len(args) > 0 {
				selector = args[0]
			}
			a.Submit(ctx, selector)
		case "list":
			a.list(ctx)
		case "stats":
			a.stats(ctx)
		case "events":
			a.listEvents(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}

}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	if a.loggedIn() {
		return fmt.Sprintf("(%s remote)", a.config.UserID)
	}
	return "(local)"
}

func (a *App) Root(ctx context.Context) {

	fmt.Println("Welcome to KeepInTouch CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	runREPL(ctx, a, a.getStatus, scanner)
}

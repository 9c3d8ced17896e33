package cli

import (
	"context"
	"errors"
	"os"
)

var (
	errNoRemote = errors.New("no backend configured: set the database DSN (-d) and user id (-u)")
)

// Login switches the storage manager to the remote store. Identity comes
// from configuration; if local data exists the user is offered a migration.
func (a *App) Login(ctx context.Context) error {
	if a.db == nil || a.config.UserID == "" {
		return errNoRemote
	}
	if err := a.db.PingContext(ctx); err != nil {
		return err
	}

	a.manager.SetAuthenticated(true)
	printlnFn("Switched to remote storage as", a.config.UserID)

	if a.manager.HasLocalData() {
		answer, err := getSimpleText(a.reader, "Local data found. Migrate it to the cloud? (y/n)", os.Stdout)
		if err != nil {
			return err
		}
		if answer == "y" || answer == "yes" {
			return a.Migrate(ctx)
		}
	}
	return nil
}

// Logout switches back to the local data file.
func (a *App) Logout(ctx context.Context) error {
	a.manager.SetAuthenticated(false)
	printlnFn("Switched to local storage")
	return nil
}

// Migrate moves the local data file's contents into the remote store and
// clears the file afterwards.
func (a *App) Migrate(ctx context.Context) error {
	if err := a.manager.MigrateToCloud(a.opCtx(ctx)); err != nil {
		return err
	}
	printlnFn("Migration complete. Local data cleared.")
	return nil
}

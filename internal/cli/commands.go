package cli

import (
	"context"

	"github.com/mkravets/jobvault/internal/backup"
)

func (a *App) show(res backup.Result) {
	if res.Success {
		printlnFn("OK:", res.Message)
	} else {
		printlnFn("FAILED:", res.Message)
	}
}

func (a *App) Backup(ctx context.Context) error {
	a.show(a.service.BackupNow(ctx))
	return nil
}

func (a *App) Restore(ctx context.Context, name string) error {
	a.show(a.service.RestoreFromFile(ctx, name))
	return nil
}

func (a *App) Confirm(ctx context.Context) error {
	a.show(a.service.ConfirmRestore(ctx))
	return nil
}

func (a *App) Cancel() error {
	a.show(a.service.CancelRestore())
	return nil
}

func (a *App) CloudBackup(ctx context.Context) error {
	a.show(a.service.BackupToCloud(ctx))
	return nil
}

func (a *App) CloudRestore(ctx context.Context) error {
	a.show(a.service.RestoreFromCloud(ctx))
	return nil
}

// Login runs the two-step sign-in: show the authorization URL, then read
// the code the provider displays and exchange it.
func (a *App) Login(ctx context.Context) error {
	res := a.service.SignInURL(ctx)
	if !res.Success {
		a.show(res)
		return nil
	}
	printlnFn("Open this link in a browser and authorize the app:")
	printlnFn(res.Data)

	code, err := GetSecret("Enter the authorization code")
	if err != nil {
		return err
	}
	a.show(a.service.SignIn(ctx, code))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.show(a.service.SignOut(ctx))
	return nil
}

func (a *App) Configure(ctx context.Context) error {
	dir, err := GetSimpleText(a.reader, "External backup folder (empty to clear):")
	if err != nil {
		return err
	}
	a.show(a.service.ConfigureStorage(ctx, dir))
	return nil
}

func (a *App) Test(ctx context.Context) error {
	a.show(a.service.TestStorage(ctx))
	return nil
}

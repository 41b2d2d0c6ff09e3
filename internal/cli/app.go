// Package cli is the interactive terminal front-end standing in for the
// mobile UI. It drives the backup facade and owns all prompt I/O; no
// business logic lives here.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/mkravets/jobvault/internal/backup"
	"github.com/mkravets/jobvault/internal/logging"
)

type App struct {
	service *backup.Service
	log     logging.Logger
	reader  *bufio.Reader
}

func NewApp(service *backup.Service, log logging.Logger) *App {
	return &App{service: service, log: log, reader: bufio.NewReader(os.Stdin)}
}

// Run starts the command loop and blocks until the user exits or the
// context is cancelled.
func (a *App) Run(ctx context.Context) {
	printlnFn("JobVault backup console (type 'help' for commands)")
	runREPL(ctx, a, bufio.NewScanner(os.Stdin))
}

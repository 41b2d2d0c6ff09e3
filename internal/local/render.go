package local

import (
	"fmt"
	"strings"

	"github.com/mkravets/jobvault/internal/model"
)

// ExportRenderer produces the human-readable companion document written next
// to a snapshot. Rendering is delegated so report formats can evolve without
// touching the backup path.
type ExportRenderer interface {
	// Render returns the document content and its file extension
	// (including the dot).
	Render(snap *model.BackupSnapshot) ([]byte, string, error)
}

// TextRenderer is the default renderer: a plain-text summary of the
// snapshot.
type TextRenderer struct{}

func (TextRenderer) Render(snap *model.BackupSnapshot) ([]byte, string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Backup created %s\n", snap.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "App version:   %s\n", snap.Metadata.AppVersion)
	fmt.Fprintf(&b, "Records:       %d\n", snap.Metadata.RecordCount)
	if len(snap.Records) > 0 {
		b.WriteString("\n")
		for _, rec := range snap.Records {
			fmt.Fprintf(&b, "  %s  (updated %s)\n",
				rec.Id, rec.UpdatedAt.Format("2006-01-02 15:04"))
		}
	}
	return []byte(b.String()), ".txt", nil
}

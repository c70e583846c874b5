package mailbox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const processedDir = "processed"

// LocalMailbox implements Mailbox over a watched directory. Report PDFs are
// dropped into the inbox path (by a mail fetcher, a sync client, or by hand);
// processed files move to a processed/ subdirectory so reruns are idempotent.
type LocalMailbox struct {
	inboxPath string
	logger    *slog.Logger
}

// NewLocalMailbox creates the inbox and processed directories if missing.
func NewLocalMailbox(inboxPath string, logger *slog.Logger) (*LocalMailbox, error) {
	if err := os.MkdirAll(filepath.Join(inboxPath, processedDir), 0755); err != nil {
		return nil, fmt.Errorf("create inbox directory: %w", err)
	}
	return &LocalMailbox{inboxPath: inboxPath, logger: logger}, nil
}

// SearchReports returns every PDF sitting in the inbox, sorted by filename.
// The senders filter is ignored: files in a drop directory carry no sender
// metadata. Files that cannot be read are logged and skipped rather than
// failing the whole sweep.
func (m *LocalMailbox) SearchReports(ctx context.Context, _ []string) ([]Attachment, error) {
	entries, err := os.ReadDir(m.inboxPath)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}

	var attachments []Attachment
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(m.inboxPath, entry.Name()))
		if err != nil {
			m.logger.Warn("skipping unreadable attachment",
				slog.String("file", entry.Name()),
				slog.Any("error", err),
			)
			continue
		}

		attachments = append(attachments, Attachment{
			ID:       entry.Name(),
			Filename: entry.Name(),
			Data:     data,
		})
	}

	m.logger.Info("inbox swept",
		slog.String("path", m.inboxPath),
		slog.Int("reports", len(attachments)),
	)
	return attachments, nil
}

// MarkProcessed moves the file out of the inbox. A name collision in
// processed/ gets a numeric suffix instead of overwriting the earlier run.
func (m *LocalMailbox) MarkProcessed(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src := filepath.Join(m.inboxPath, filepath.Base(id))
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("attachment %q: %w", id, err)
	}

	dst := filepath.Join(m.inboxPath, processedDir, filepath.Base(id))
	for n := 1; ; n++ {
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			break
		}
		ext := filepath.Ext(id)
		base := strings.TrimSuffix(filepath.Base(id), ext)
		dst = filepath.Join(m.inboxPath, processedDir, fmt.Sprintf("%s_%d%s", base, n, ext))
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("archive attachment %q: %w", id, err)
	}
	m.logger.Info("attachment marked processed", slog.String("file", filepath.Base(id)))
	return nil
}

// Package mailbox abstracts where the monthly report PDFs come from. The
// pipeline only needs two capabilities: find unprocessed report attachments
// and mark them handled so the next run skips them.
package mailbox

import "context"

// Attachment is one report PDF pulled from the mailbox.
type Attachment struct {
	// ID identifies the source message for MarkProcessed.
	ID       string
	Filename string
	Data     []byte
}

// Mailbox is the report intake surface.
type Mailbox interface {
	// SearchReports returns attachments that have not been processed yet,
	// restricted to the given sender addresses when the backend carries
	// sender metadata. An empty senders list means no restriction.
	SearchReports(ctx context.Context, senders []string) ([]Attachment, error)
	// MarkProcessed records that an attachment was handled.
	MarkProcessed(ctx context.Context, id string) error
}

package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"example.com/clyqfeed/internal/models"
	"example.com/clyqfeed/internal/store"
)

// Report writes archived posts as indented JSON to out: the newest overall, or
// an author's newest when author is set.
func Report(ctx context.Context, archive store.Archive, author string, limit int, out io.Writer) error {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows []models.ArchivedPost
		err  error
	)
	if author != "" {
		rows, err = archive.ArchivedByAuthor(ctx, author, limit)
	} else {
		rows, err = archive.RecentArchived(ctx, limit)
	}
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	if rows == nil {
		rows = []models.ArchivedPost{}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

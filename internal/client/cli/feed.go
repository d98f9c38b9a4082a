package cli

import (
	"context"
	"fmt"
)

// Feed prints the most recent clips, newest first. When the backend is
// unreachable, cached records are shown with a warning.
func (a *App) Feed(ctx context.Context) {
	records, err := a.feed.Load(ctx)
	if err != nil {
		if len(records) == 0 {
			fmt.Printf("Could not load feed: %v\n", err)
			return
		}
		fmt.Printf("Backend unreachable (%v), showing cached feed:\n", err)
	}

	if len(records) == 0 {
		fmt.Println("The feed is empty. Be the first to upload a clip!")
		return
	}

	for _, rec := range records {
		caption := rec.Caption
		if caption == "" {
			caption = "(no caption)"
		}
		fmt.Printf("%s  %s  by %s\n    %s\n", rec.CreatedAt.Format("2006-01-02 15:04"), caption, rec.UserID, rec.URL)
	}
}

package cli

import (
	"context"
	"fmt"

	"github.com/clipfeed/clipfeed/internal/filex"
)

// Upload reads a recorded clip from disk and submits it through the pipeline.
func (a *App) Upload(ctx context.Context) {
	if !a.session.IsAuthenticated() {
		fmt.Println("Sign in first ('login'), or your clip will be posted anonymously.")
	}

	path, err := GetSimpleText(a.reader, "Path of the .mp4 file to upload", stdout)
	if err != nil {
		return
	}

	data, err := filex.ReadVideoFile(path)
	if err != nil {
		fmt.Printf("Could not read file: %v\n", err)
		return
	}

	caption, err := GetSimpleText(a.reader, "Caption (optional)", stdout)
	if err != nil {
		return
	}

	fmt.Println("Uploading...")
	attempt, err := a.pipeline.Submit(ctx, data, caption)
	if err != nil {
		fmt.Printf("Upload failed (%s): %s\n", attempt.Phase, attempt.Err)
		return
	}

	fmt.Printf("Uploaded %s\n%s\n", attempt.FileName, attempt.LocatorURL)
	fmt.Println("Reloading feed...")
	a.Feed(ctx)
}

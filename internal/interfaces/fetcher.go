package interfaces

import "context"

// PageFetcher retrieves the HTML of an offer page
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// PageRenderer retrieves page HTML through a headless browser, for offer
// pages that return an empty shell without JavaScript
type PageRenderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Package notion is a small typed client for the Notion public API.
//
// It covers the two calls a content index needs: querying a database with a
// filter and sort (following pagination to the end) and retrieving a single
// page. Requests are paced with a token bucket and transient failures (429
// and 5xx) are retried with linear backoff, honouring Retry-After.
//
// # Usage
//
//	client, err := notion.New(os.Getenv("NOTION_KEY"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	pages, err := client.QueryDatabase(ctx, databaseID, notion.Query{
//		Filter: &notion.Filter{
//			Property: "Status",
//			Status:   &notion.StatusCondition{Equals: "Published"},
//		},
//		Sorts: []notion.Sort{{Property: "Date", Direction: notion.SortDescending}},
//	})
//
//	for _, p := range pages {
//		title, err := p.PlainTitle("Title")
//		...
//	}
//
// # Errors
//
// Non-2xx responses decode into *APIError. Transport failures are joined with
// ErrRequestFailed and malformed bodies with ErrDecodeFailed. IsRetryable
// reports whether an error is worth another attempt.
package notion

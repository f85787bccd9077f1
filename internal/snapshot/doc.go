// Package snapshot turns a GitHub web URL into the concatenated text of one
// repository directory.
//
// Architecture:
//   - ResolveURL: URL parsing into a clone URL and a subpath
//   - BranchResolver: picks main or master from the remote's heads
//   - Fetcher: shallow, time-bounded clone into a Workspace
//   - Aggregator: reads the direct child files of the subpath
//   - Service: runs the steps above for one FetchRequest
//
// Every fetch owns its Workspace, which is removed before Fetch returns.
//
// Usage:
//
//	svc := snapshot.NewService(snapshot.ServiceOptions{Client: client, Logger: logger})
//	result, err := svc.Fetch(ctx, domain.NewFetchRequest(url, 30))
package snapshot

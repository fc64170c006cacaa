// Package fetch reassembles a resource from a server that truncates or
// drops transfers, by following a whole-resource request with as many
// range-qualified requests as needed.
//
// # Fetching
//
// Build a [Fetcher] over any [Doer] (usually a *client.Client) and call
// [Fetcher.Fetch]:
//
//	f, err := fetch.New(c, fetch.WithPolicy(fetch.Remainder{}))
//	res, err := f.Fetch(ctx)
//	fmt.Println(digest.Sum(res.Data), res.Complete)
//
// The first response's Content-Length is the target size for the whole
// run. The assembled bytes are returned as-is; Result.Complete reports
// whether their length matches that target.
//
// # Policies
//
// [Remainder] always asks for everything still missing and stops as soon as
// a cycle's body matches that cycle's own Content-Length. [Chunked] walks
// the resource in fixed-size ranges with a pause between requests and
// advances by the chunk size whatever the server returned.
//
// Each policy carries a [FailureMode] for failed range cycles: [Abort]
// returns the error, [Stop] logs it and returns what was assembled so far.
// A failed initial request is always fatal.
package fetch

// Package coc provides a client for the Clash of Clans REST API.
//
// It covers clan search, clan details, war logs, current wars and locations.
// Responses are bound strictly onto typed models, and every failure is
// reported as one of a small set of error types.
//
// # Architecture
//
//   - Client: one GET per operation through a Transport
//   - Transport: HTTPTransport (resty) owns base URL, bearer token and timeouts
//   - Queries: per-endpoint structs with an explicit set of allowed options
//   - Decoding: explicit per-model binding with property paths in errors
//   - Errors: API, unknown API, decode, query, invariant and transport errors
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := coc.NewClient(token, logger, coc.WithTimeout(10*time.Second))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	page, err := client.SearchClans(ctx, coc.SearchClansQuery{
//		Name:  coc.Ptr("coconut"),
//		Limit: coc.Ptr(10),
//	})
//
// Queries can also be built from raw options, which rejects unknown names
// before any request is made:
//
//	query, err := coc.NewSearchClansQuery(map[string]string{"name": "coconut"})
//
// # Error Handling
//
// Non-200 responses become an *APIError when the body is an API error
// document and an *UnknownAPIError otherwise. KindOf reports which kind an
// error is:
//
//	var apiErr *coc.APIError
//	if errors.As(err, &apiErr) && apiErr.IsThrottled() {
//		// back off
//	}
//
// FindClanByTag returns nil instead of an error for unknown tags, and
// GetCurrentWar returns nil when the clan is not in a war.
package coc

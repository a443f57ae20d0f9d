// Package services implements the client side of the library catalog REST API.
//
// # Transport
//
// [APIService] sends raw JSON requests. A token set with [APIService.WithToken]
// is attached as a bearer Authorization header by an [oauth2.Transport] wrapping
// the configured client's transport.
//
// # Catalog client
//
// [CatalogService] exposes typed operations for auth, books, readers and the
// currently-reading association. Inputs are validated with [models.Validate]
// before any request is sent.
//
// # Error Handling
//
// Error statuses map to sentinel errors from the shared package, wrapped in an [*APIError]:
//   - 401 : [shared.ErrNotAuthenticated], the stored session should be cleared
//   - 403 : [shared.ErrForbidden]
//   - 404 : [shared.ErrNotFound]
//   - 400 : [*ValidationError] when the body has per-field errors, else [shared.ErrInvalidInput]
//   - 409 : [shared.ErrConflict]
//   - 5xx : [shared.ErrServiceUnavailable]
//
// A request that never reaches the server also reports [shared.ErrServiceUnavailable].
//
// # Collections
//
// [BookSource] and [ReaderSource] implement [Collection] for list views that
// reload the full item set.
package services

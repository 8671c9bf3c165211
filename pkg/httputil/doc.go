// Package httputil provides the HTTP plumbing shared by remote catalog
// clients.
//
//   - [Client]: JSON GET requests against a base URL, with retries and
//     observability hooks
//   - [Retry]: retry with exponential backoff for transient failures
//   - [Cache]: file-based cache for decoded responses
//
// # Retry
//
// Only errors wrapped in [RetryableError] are retried. [Client] wraps
// network errors, 429 responses and 5xx responses; every other status is
// returned to the caller immediately as an [StatusError].
//
// # Caching
//
// [Cache] stores values as JSON files named after the SHA-256 of their key,
// under the user cache directory (for example ~/.cache/canicai/) unless a
// directory is given. Entries older than the TTL are reported with
// [ErrExpired]. The cache can be emptied with `canicai cache clear`.
package httputil

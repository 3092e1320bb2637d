// Package remote retrieves vcluster release tags and configuration files
// from the project's GitHub repository.
//
// GitHubClient talks to the REST API for tags and to the raw content host
// for files. Requests are retried with backoff, deduplicated while in flight
// and cached with a TTL and an LRU bound, so repeated tool calls against the
// same version do not hit GitHub again.
//
// A file or version that does not exist is reported as ErrNotFound.
package remote

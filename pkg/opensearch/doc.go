// Package opensearch builds an OpenSearch client from environment config.
// Search is optional: an empty address list disables it and callers fall
// back to Mongo text queries.
package opensearch

// Package redis connects to Redis with retries. An empty URL disables it.
package redis

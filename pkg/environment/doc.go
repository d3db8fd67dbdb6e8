// Package environment names the deployment environment and carries it in
// request contexts so the logger can tag every record with it.
package environment

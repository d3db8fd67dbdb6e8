// Package slug builds URL-safe identifiers from titles.
package slug

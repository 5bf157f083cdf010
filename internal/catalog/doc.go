// Package catalog answers tag queries over the gallery catalog.
//
// An Engine selects items by tag filter (AND, OR or none) and returns each
// one with its complete, sorted tag list, newest first. A TagCatalog lists
// every tag. Service is the facade the HTTP handlers and CLI call: it parses
// request input, rejects malformed filters with ErrInvalidArgument and
// records catalog metrics.
package catalog

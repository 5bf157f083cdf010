// Package handlers implements the HTTP API of the gallery server.
//
// Item and tag routes delegate to catalog.Service; image routes read bytes
// through media.Resolver. Catalog errors map to status codes in one place,
// writeError: invalid filters are 400, unknown items 404, an unavailable
// store 503, and failed queries 500.
package handlers

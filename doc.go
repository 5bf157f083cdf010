// Package main is the searchable-gallery HTTP server.
//
// The server answers tag queries over an image catalog stored in SQLite.
// Items are filtered by a set of tag names joined with "and" (the item
// carries every tag) or "or" (the item carries at least one), and are
// always returned newest first with their complete tag sets.
//
// # Application Lifecycle
//
//  1. Memory Configuration: sets GOMEMLIMIT from GOMEMLIMIT or MEMORY_LIMIT
//  2. Configuration Loading: reads the environment, .env files and CONFIG_FILE
//  3. Database Initialization: opens the catalog with the configured driver
//  4. Metrics Collector: publishes catalog totals every STATS_INTERVAL
//  5. HTTP Server Setup: routes, access logging, request timeouts
//  6. Graceful Shutdown: on SIGINT/SIGTERM the servers drain, then the
//     collector stops and the database closes
//
// # HTTP Server
//
// The main server (PORT, default 8080) serves:
//
//	GET  /api/items                    ?tag=a&tag=b&join=and
//	POST /api/items/query              {"tagNames": [...], "joinType": "or"}
//	GET  /api/items/{id}
//	GET  /api/items/{id}/image
//	GET  /api/items/{id}/image-data
//	GET  /api/thumbnails/{ref}
//	GET  /api/tags
//	GET  /healthz, /livez, /readyz, /version
//
// The metrics server (METRICS_PORT, default 9090) exposes /metrics when
// METRICS_ENABLED is true.
//
// Populating the catalog is done with the galleryctl command.
package main

// Command galleryctl inspects and populates a gallery catalog from the
// command line.
//
// Usage:
//
//	galleryctl <command> [flags]
//
// Commands:
//
//	tags                       List every tag, sorted by name.
//	items [--tag T]... [--join and|or]
//	                           List items carrying the given tags, newest
//	                           first. With no --tag every item is listed.
//	import <dir> [--tag T]...  Catalog the images under dir, generating
//	                           thumbnails and attaching the given tags.
//	version                    Print build information.
//
// Global flags:
//
//	-o, --output table|json|yaml  Output format. Defaults to table on a
//	                              terminal and json otherwise.
//	--database-dir DIR            Overrides DATABASE_DIR.
//	--driver sqlite3|sqlite       Overrides DATABASE_DRIVER.
//	-v, --verbose                 Log at debug level.
//
// Configuration is otherwise read exactly as the server reads it
// (environment, .env and CONFIG_FILE).
package main

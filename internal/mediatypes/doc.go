// Package mediatypes maps image file extensions to types and MIME types.
//
// It is a dependency-free leaf package imported by the media resolver, the
// importer and the HTTP handlers.
//
//	mime := mediatypes.ImageMimeType("/photos/cat.PNG") // "image/png"
//	mime = mediatypes.ImageMimeType("/photos/raw")      // "image/jpeg"
//
// ImageExtensions lists the formats the importer picks up and the thumbnail
// generator can decode.
package mediatypes

// Package media reads catalog image blobs and produces thumbnails.
//
// Resolver serves raw image bytes, base64 data URLs and thumbnail files,
// reading through the filesystem package's stale-handle retry helpers.
// ThumbnailGenerator fits images into a 200x200 JPEG using
// github.com/disintegration/imaging; JPEG, PNG, GIF, BMP, TIFF and WebP
// sources are supported.
package media

// Package indexer imports image files into the gallery catalog.
//
// An Importer walks a directory with a pool of workers. Each supported
// image (jpg, jpeg, png, gif, bmp, webp, tiff) becomes one catalog item
// with a random id, a 200x200 JPEG thumbnail and the tags given for the
// run. Hidden files and directories are skipped, as are files whose path is
// already catalogued.
package indexer

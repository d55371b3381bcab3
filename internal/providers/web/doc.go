// Package web fetches the pages opened in web tabs and extracts a title,
// description, favicon and plain-text excerpt. Pages are decoded to UTF-8
// before parsing and results are cached in memory.
package web

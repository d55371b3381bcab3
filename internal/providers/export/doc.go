// Package export renders annotations to a single-page PDF. Geometry is
// scaled to fit the page and never enlarged.
package export

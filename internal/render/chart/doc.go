// Package chart writes the per-run summary of frame statistics.
//
// Three renditions of the same series are supported: a PNG line chart
// (go-chart), an SVG line chart (svgo) and a CSV table. The x axis is
// seconds since the first frame; the y axis is the fraction of pages in a
// state, fixed to [0, 1].
package chart

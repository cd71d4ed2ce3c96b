// Package graph builds the complete weighted graph of city districts used by
// the dispatch simulator.
//
// Vertices are district identifiers; the weight of the edge between two
// districts is the great-circle distance in kilometres between the mean
// positions of the incidents recorded in each district during one year.
// The graph is complete and stored as a dense symmetric distance table.
package graph

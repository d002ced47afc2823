// Package tree is the node model behind the logical view: the Node contract,
// node events, keyed child collections that reconcile their nodes against a
// key list, and a text renderer.
//
// Children built on Keys are lazy. Nothing is computed until the first call
// to Nodes, which activates the collection; Deactivate releases the nodes
// again.
package tree

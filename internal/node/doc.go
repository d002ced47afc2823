// Package node implements the platform node of the logical view: the node
// that shows the server platform a project is bound to and lists the
// platform's embeddable EJB container archives as package views.
//
// The node resolves its platform lazily through the registry and caches the
// handle until one of its triggers fires: the binding property changes, a
// platform instance is added or removed, or the cached platform's classpath
// changes. Triggers only post work. Event firing runs on the context's UI
// executor and key recomputation on its background executor.
package node

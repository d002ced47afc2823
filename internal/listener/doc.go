// Package listener provides typed listener lists with cancellable
// subscriptions, plus weak subscriptions that hold only a non-owning
// back-reference to their target so a long-lived event source never keeps a
// short-lived subscriber alive.
package listener

// Package project opens a project directory for the logical view. A project
// is any directory holding .platformview/project.yaml; opening it wires the
// project properties, the platform registry and the two executors into a
// platform node.
package project

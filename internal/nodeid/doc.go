// internal/nodeid/doc.go

/*
Package nodeid provides a structured representation for the canonical paths
that identify steps and tasks within a component.

A path is a slash-separated sequence of segments relative to the component
root, e.g. `mesh/gen` or `cases/cavity/run`. The same string is used as the
registry key, as the on-disk location below the component work directory and
in every log line and error message, so parsing and formatting live here.
*/
package nodeid

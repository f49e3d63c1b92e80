// Package checkpoint persists a negotiated, materialized plan at the end of
// setup and reconstructs it at run time.
//
// Three descriptors are written, each next to the entity it describes:
//
//	<work>/plan.json                          the whole plan
//	<work>/<component>/<task path>/task.json  one per selected task
//	<work>/<component>/<step path>/step.json  one per scheduled step
//
// Every descriptor is an envelope carrying the schema version, the framework
// version, its kind and a sha256 digest of its payload. The header is checked
// before the payload is decoded, so a checkpoint written by another version
// is rejected as stale instead of being half-read. A payload that no longer
// matches its digest (edited after setup) is rejected the same way.
//
// Loading never recomputes anything: order, edges, resources, bounds and
// config values are taken verbatim from the descriptors.
package checkpoint

// Package scheduler turns a selection of tasks into an execution plan.
//
// # How It Works
//
//  1. Discovery: every step of every selected task is added to a dag.Graph,
//     tasks in selection order and steps in declared order. Steps that are
//     only reached through an input reference (a producer no selected task
//     names) are appended as they are discovered. The insertion index is the
//     node priority used to break ties.
//  2. Linking: consecutive steps of a task are linked (a task's steps always
//     run in declared order, even without a data dependency), and every
//     reference input links its producer to the consumer.
//  3. Ordering: Kahn's algorithm produces the linear order; a cycle is a
//     DependencyError naming its members.
//
// A shared step is a single node, so it is scheduled exactly once and ahead
// of all of its consumers.
package scheduler

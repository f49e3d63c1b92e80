/*
Package builder constructs the entity model from decoded definitions. It is the
bridge between the static HCL definitions (the 'schema' package) and the
dependency scheduler.

Construction is a multi-phase process per component:

 1. Config: the base layers plus the optional component layer form the
    component-level config, which is resolved eagerly. Any interpolation error
    is fatal here, before anything touches the disk.

 2. Steps: every declared step is validated and registered in the
    component's registry, in declaration order. Expression attributes
    (command, input targets, resource counts) are evaluated here against an
    hcl.EvalContext built from the step's resolved config, so
    `ntasks = config.forward.ntasks` or `command = ["run", config.paths.exe]`
    are frozen to plain values before anything is checkpointed. Resources
    come from the step's HCL attributes, then from its config_section, then
    from defaults.

 3. Tasks and suites: each task gets its own config (component layers plus
    the task-local layer) and attaches references to registered steps. A task
    naming a step that is not declared is rejected with a suggestion, and two
    steps of one task may not share a name.

Select then narrows a component down to the tasks a run was asked for.
*/
package builder

package hcl_adapter

import "github.com/specialistvlad/suitegrid/internal/schema"

// validateFile performs the structural checks HCL decoding cannot express.
// Semantic checks (paths, references, resources) belong to the builder.
func validateFile(f *schema.File) error {
	for _, c := range f.Components {
		if c.Name == "" {
			return diagError(f.Path, "component", "component name must not be empty")
		}
		for _, s := range c.Steps {
			for _, in := range s.Inputs {
				hasTarget := schema.IsSet(in.Target)
				hasRef := in.WorkDirTarget != nil && *in.WorkDirTarget != ""
				if hasTarget == hasRef {
					return diagError(f.Path, "step "+s.Path,
						"input %q must set exactly one of target or work_dir_target", in.Filename)
				}
				if in.Filename == "" {
					return diagError(f.Path, "step "+s.Path, "input filename must not be empty")
				}
			}
		}
		for _, t := range c.Tasks {
			if len(t.Steps) == 0 {
				return diagError(f.Path, "task "+t.Path, "task must list at least one step")
			}
		}
	}
	return nil
}

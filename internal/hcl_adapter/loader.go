package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/suitegrid/internal/ctxlog"
	"github.com/specialistvlad/suitegrid/internal/fsutil"
	"github.com/specialistvlad/suitegrid/internal/schema"
)

// Extension is the suffix of definition files.
const Extension = ".hcl"

// Loader reads component definitions from HCL files.
type Loader struct{}

// NewLoader creates a new HCL definitions loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file found under paths. Paths may be files or
// directories; directories are searched recursively and missing paths are
// skipped. Files are processed in lexical order so the result is stable.
func (l *Loader) Load(ctx context.Context, paths ...string) (*schema.Definitions, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.FindFilesByExtension(Extension, paths...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	defs := &schema.Definitions{}
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		root := &schema.File{Path: file}
		diags = gohcl.DecodeBody(hclFile.Body, nil, root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if err := validateFile(root); err != nil {
			return nil, err
		}

		logger.Debug("Decoded HCL file.", "file", file, "components", len(root.Components))
		defs.Files = append(defs.Files, root)
	}

	logger.Debug("HCL loading complete.", "files", len(defs.Files), "components", len(defs.ComponentNames()))
	return defs, nil
}

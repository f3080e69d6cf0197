package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/decl"
	"github.com/wippyai/hostbridge/manifest"
	"github.com/wippyai/hostbridge/value"
)

// GenFormats lists the artifacts gen can produce.
var GenFormats = []string{"ts", "wit", "schema", "manifest"}

// GenOptions holds gen flags.
type GenOptions struct {
	Manifest  string
	Format    string
	Out       string
	Package   string
	Interface string
	SchemaID  string
}

// NewGenCommand creates the gen command.
func NewGenCommand(root *RootOptions) *cobra.Command {
	opts := &GenOptions{}

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate declarations for exported functions",
		Long: `Generate a declaration artifact for the exported functions.

Functions come from --manifest when given, otherwise from the built-in registry.
Formats: ts (TypeScript .d.ts), wit, schema (JSON Schema), manifest (YAML).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(root, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Manifest, "manifest", "m", "", "YAML manifest to read functions from")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "ts", "output format (ts|wit|schema|manifest)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.Package, "package", "hostbridge:exports", "WIT package id and manifest package")
	cmd.Flags().StringVar(&opts.Interface, "interface", manifest.DefaultInterface, "WIT interface name")
	cmd.Flags().StringVar(&opts.SchemaID, "schema-id", "https://hostbridge.dev/exports.schema.json", "JSON Schema $id")

	return cmd
}

func runGen(root *RootOptions, opts *GenOptions, cmd *cobra.Command) error {
	if !isValidFormat(opts.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, GenFormats)
	}

	shapes, fns, err := opts.declarations(root, cmd)
	if err != nil {
		return err
	}

	var data []byte
	switch opts.Format {
	case "ts":
		data, err = decl.TypeScript(fns, shapes...)
	case "wit":
		data, err = decl.WIT(opts.Package, opts.Interface, fns, shapes...)
	case "schema":
		data, err = decl.SchemaJSON(opts.SchemaID, fns, shapes...)
	case "manifest":
		var m *manifest.Manifest
		if m, err = manifest.FromFunctions(opts.Package, opts.Interface, fns, shapes...); err == nil {
			data, err = m.Marshal()
		}
	}
	if err != nil {
		return fmt.Errorf("generate %s: %w", opts.Format, err)
	}

	root.Log.Debug("declarations generated",
		zap.String("format", opts.Format),
		zap.Int("functions", len(fns)),
		zap.Int("shapes", len(shapes)),
		zap.Int("bytes", len(data)))

	if opts.Out == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.Out, err)
	}
	return nil
}

// declarations loads the manifest when one is given. A manifest's package and
// interface apply unless the flags were set explicitly.
func (o *GenOptions) declarations(root *RootOptions, cmd *cobra.Command) ([]*value.Shape, []value.Function, error) {
	if o.Manifest == "" {
		return root.Registry.Shapes(), root.Registry.Signatures(), nil
	}
	m, err := manifest.Load(o.Manifest)
	if err != nil {
		return nil, nil, err
	}
	if !cmd.Flags().Changed("package") {
		o.Package = m.Package
	}
	if !cmd.Flags().Changed("interface") {
		o.Interface = m.Interface
	}
	return m.Declarations()
}

func isValidFormat(format string) bool {
	for _, f := range GenFormats {
		if f == format {
			return true
		}
	}
	return false
}

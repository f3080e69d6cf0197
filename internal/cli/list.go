package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/hostbridge/decl"
	"github.com/wippyai/hostbridge/naming"
	"github.com/wippyai/hostbridge/registry"
	"github.com/wippyai/hostbridge/value"
)

// NewListCommand creates the list command.
func NewListCommand(root *RootOptions) *cobra.Command {
	var native bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List exported functions and shapes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.OutOrStdout(), root.Registry, native, isTerminal(cmd.OutOrStdout()))
		},
	}
	cmd.Flags().BoolVar(&native, "native", false, "show native types instead of TypeScript")

	return cmd
}

func runList(w io.Writer, reg *registry.Registry, native, styled bool) error {
	fnStyle, tyStyle, title := plain, plain, plain
	if styled {
		fnStyle, tyStyle, title = funcStyle.Render, typeStyle.Render, titleStyle.Render
	}

	fns := reg.Signatures()
	fmt.Fprintf(w, "%s\n\n", title(fmt.Sprintf("Functions (%d)", len(fns))))
	for _, fn := range fns {
		sig, err := signature(fn, native)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s %s\n", fnStyle(fn.HostName), tyStyle(sig))
	}

	shapes := reg.Shapes()
	if len(shapes) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\n%s\n\n", title(fmt.Sprintf("Shapes (%d)", len(shapes))))
	for _, s := range shapes {
		fmt.Fprintf(w, "  %s\n", fnStyle(naming.Pascal(s.Name)))
		for _, f := range s.Fields {
			opt := ""
			if f.Optional {
				opt = "?"
			}
			fmt.Fprintf(w, "    %s%s %s\n", f.Key, opt, tyStyle(f.Type.String()))
		}
	}
	return nil
}

// signature renders fn as a TypeScript arrow type or, with native set, in
// the canonical type spelling.
func signature(fn value.Function, native bool) (string, error) {
	if !native {
		return decl.Signature(fn)
	}
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Name + ": " + p.Type.String()
	}
	return "(" + strings.Join(params, ", ") + ") -> " + fn.Result.String(), nil
}

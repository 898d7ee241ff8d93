package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tmdb-api-tester/internal/catalog"
	"tmdb-api-tester/internal/types"
)

type listOptions struct {
	catalog string
	only    []string
	tags    []string
	quiet   bool
}

func newListCmd() *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the contracts of a catalog",
		Long: `List contracts in run order.

Without --catalog the built-in catalog is listed. --only and --tag select
contracts the same way they do for "run".

Examples:
  tmdb-api-tester list
  tmdb-api-tester list --tag cache
  tmdb-api-tester list --catalog config/catalog.yaml --quiet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			contracts, err := catalog.Load(opts.catalog)
			if err != nil {
				return fatal(err)
			}
			contracts, err = catalog.Filter(contracts, opts.only, opts.tags)
			if err != nil {
				return fatal(err)
			}
			for _, c := range contracts {
				if opts.quiet {
					fmt.Fprintln(cmd.OutOrStdout(), c.Name)
					continue
				}
				printContract(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.catalog, FlagCatalog, "", "YAML contract catalog (default: built-in catalog)")
	f.StringSliceVar(&opts.only, FlagOnly, nil, "List only contracts whose name matches a glob")
	f.StringSliceVar(&opts.tags, FlagTag, nil, "List only contracts carrying a tag")
	f.BoolVarP(&opts.quiet, FlagQuiet, "q", false, "Only print contract names")
	return cmd
}

func printContract(w io.Writer, c types.EndpointContract) {
	bold := color.New(color.Bold)
	bold.Fprintln(w, c.Name)
	fmt.Fprintf(w, "    %s %s", c.HTTPMethod(), c.Path)
	if len(c.PathParams) > 0 || len(c.Query) > 0 {
		fmt.Fprintf(w, "  %s", describeParams(c))
	}
	fmt.Fprintln(w)

	expect := fmt.Sprintf("status %v", c.Expected())
	if c.ResolvedKind() == types.KindNegative {
		expect = "any failure status"
		if len(c.FailureStatus) > 0 {
			expect = fmt.Sprintf("status %v", c.FailureStatus)
		}
	}
	fmt.Fprintf(w, "    kind: %s, expects %s", c.ResolvedKind(), expect)
	if len(c.Tags) > 0 {
		fmt.Fprintf(w, ", tags: %s", strings.Join(c.Tags, ","))
	}
	fmt.Fprintln(w)
}

func describeParams(c types.EndpointContract) string {
	var parts []string
	for _, k := range sortedKeys(c.PathParams) {
		parts = append(parts, fmt.Sprintf("{%s}=%s", k, c.PathParams[k]))
	}
	for _, k := range sortedKeys(c.Query) {
		parts = append(parts, fmt.Sprintf("%s=%q", k, c.Query[k]))
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

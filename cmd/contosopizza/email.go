package main

import (
	"fmt"
	"sort"

	"github.com/deppfellow/contosopizza/internal/lib/email"
	"github.com/spf13/cobra"
)

func newEmailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Work with the customer email templates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "preview TEMPLATE",
		Short:     "Render a template with sample data to stdout",
		Args:      cobra.ExactArgs(1),
		ValidArgs: templateNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			html, err := email.Preview(email.Template(args[0]))
			if err != nil {
				return fmt.Errorf("%w (available: %v)", err, templateNames())
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), html)
			return err
		},
	})

	return cmd
}

func templateNames() []string {
	names := make([]string, 0, len(email.PreviewData))
	for name := range email.PreviewData {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

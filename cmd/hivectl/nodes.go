package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes [dimension]",
	Short: "List nodes under a dimension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := loadHive()
		if err != nil {
			return err
		}
		defer h.Close()

		for _, n := range h.ListNodes(args[0]) {
			fmt.Printf("%s\turi=%s\tstatus=%s\n", n.Name, n.URI, n.Status)
		}
		return nil
	},
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the hive's revision and read-only state",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := loadHive()
		if err != nil {
			return err
		}
		defer h.Close()

		sem := h.Status()
		fmt.Printf("revision: %d\n", sem.Revision)
		fmt.Printf("status:   %s\n", sem.Status)
		return nil
	},
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dimensionsCmd = &cobra.Command{
	Use:   "dimensions",
	Short: "List partition dimensions",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := loadHive()
		if err != nil {
			return err
		}
		defer h.Close()

		for _, d := range h.ListDimensions() {
			fmt.Printf("%s\tkeyType=%s\tassigner=%s\tindexUri=%s\n", d.Name, d.KeyType, d.Assigner, d.IndexURI)
		}
		return nil
	},
}

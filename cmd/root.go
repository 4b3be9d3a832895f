// Package cmd wires the command-line interface for the model builder.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "catlearn",
	Version: "0.1.0",
	Short:   "CatLearn - adaptive feature selection for atomic structures",
	Long:    `CatLearn converts atomic structures into fingerprint feature vectors
and searches for the smallest feature subset that best predicts a target
property with a kernel regression surrogate.`,
}

func Execute() error {
	return rootCmd.Execute()
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nomadconnection/cryptobears/consts"
)

func init() {
	cobra.EnablePrefixMatching = true
}

// NewCommand implements "bearvm version" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Prints out the version",
		RunE:  versionFunc,
	}
	return cmd
}

func versionFunc(*cobra.Command, []string) error {
	fmt.Printf("%s@%s (%s)\n", consts.Name, consts.Version, runtime.Version())
	return nil
}

/*
Copyright © 2025 subbotindann

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"encoding/json"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subbotindann/wgate/internal/commands/winrun"
)

func init() {
	rootCmd.AddCommand(importsCmd)

	importsCmd.Flags().BoolP("json", "j", false, "print the analysis as JSON")
	viper.BindPFlag("imports.json", importsCmd.Flags().Lookup("json"))
}

// importsCmd represents the imports command
var importsCmd = &cobra.Command{
	Use:   "imports <binary>",
	Short: "Discover the Windows API calls of a binary without replaying them",
	Example: heredoc.Doc(`
		# List the emulated imports of a PE
		❯ winrun imports game.exe

		# Scan a text fixture and emit JSON
		❯ winrun imports --json fixture.exe`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		analysis, err := winrun.Inspect(args[0])
		if err != nil {
			return err
		}

		if viper.GetBool("imports.json") {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(analysis)
		}

		winrun.PrintAnalysis(cmd.OutOrStdout(), analysis)
		return nil
	},
}

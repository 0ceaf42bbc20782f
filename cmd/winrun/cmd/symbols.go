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
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subbotindann/wgate/internal/colors"
	"github.com/subbotindann/wgate/pkg/waygate"
)

func init() {
	rootCmd.AddCommand(symbolsCmd)

	symbolsCmd.Flags().StringP("module", "m", "", "only list symbols of MODULE (kernel32|user32)")
	viper.BindPFlag("symbols.module", symbolsCmd.Flags().Lookup("module"))
}

// symbolsCmd represents the symbols command
var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List the Windows API symbols waygate emulates",
	Example: heredoc.Doc(`
		# List every emulated symbol
		❯ winrun symbols

		# Only the user32 ones
		❯ winrun symbols --module user32`),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		syms := waygate.Symbols()

		if name := viper.GetString("symbols.module"); name != "" {
			var mod waygate.Module
			for _, m := range []waygate.Module{waygate.Kernel32, waygate.User32} {
				if strings.EqualFold(m.String(), name) {
					mod = m
				}
			}
			if mod == 0 {
				return fmt.Errorf("invalid --module %q: must be one of 'kernel32', 'user32'", name)
			}
			syms = waygate.ModuleSymbols(mod)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, sym := range syms {
			fmt.Fprintf(w, "%s\t%s\n", colors.Symbol().Sprint(sym), colors.Muted().Sprint(sym.Module()))
		}
		return w.Flush()
	},
}

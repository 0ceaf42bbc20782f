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
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/subbotindann/wgate/internal/commands/winrun"
	"github.com/subbotindann/wgate/internal/magic"
	"github.com/subbotindann/wgate/pkg/gdbtrace"
)

func init() {
	rootCmd.AddCommand(traceCmd)
}

// traceCmd represents the trace command
var traceCmd = &cobra.Command{
	Use:   "trace <native-binary>",
	Short: "Run a native binary under gdb and report the Windows API symbols it hits",
	Example: heredoc.Doc(`
		# Trace a native build of a ported program
		❯ winrun trace ./a.out

		# Use another debugger binary and stop after 16 hits
		❯ winrun trace --gdb gdb-multiarch --max-stops 16 ./a.out`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := magic.IsELF(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s is not a native ELF binary", args[0])
		}

		calls, err := winrun.Trace(cmd.Context(), &winrun.Config{
			Target:   args[0],
			GDBPath:  conf.Trace.GDB,
			MaxStops: conf.Trace.MaxStops,
			Verbose:  conf.Verbose,
		})
		if errors.Is(err, gdbtrace.ErrUnavailable) {
			log.WithError(err).Debug("trace failed")
			winrun.PrintTraceUnavailable(cmd.OutOrStdout())
			return nil
		}
		if err != nil {
			return err
		}

		winrun.PrintTrace(cmd.OutOrStdout(), calls)
		return nil
	},
}

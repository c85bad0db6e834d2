package cli

import (
	"github.com/fatih/color"
	prettyjson "github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
)

func logErrorCmd(cmd cobra.Command, err error) {
	boldRed := color.New(color.FgRed, color.Bold)
	boldRed.Fprintf(cmd.ErrOrStderr(), "\nerror: ")

	cmd.PrintErrf("%s\n\n", color.RedString(err.Error()))
}

func logSuccessCmd(cmd cobra.Command, msg string) {
	cmd.Printf("\n%s\n\n", color.GreenString(msg))
}

func logJSONCmd(cmd cobra.Command, v any) {
	data, err := prettyjson.Marshal(v)
	if err != nil {
		logErrorCmd(cmd, err)

		return
	}

	cmd.Printf("\n%s\n\n", string(data))
}

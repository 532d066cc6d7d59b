package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

var interpretCmd = &cobra.Command{
	Use:   "interpret [text]",
	Short: "Show how a question is interpreted",
	Long: `Print the structured intent a question is interpreted as, without
contacting any backend. Useful for checking how dates, amounts, ranges and
limits are recognised.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInterpret,
}

func init() {
	interpretCmd.Flags().String("as", "", "force the action: fetch_rows, fetch_range, fetch_info or search_records")
	interpretCmd.Flags().String("spreadsheet", "", "spreadsheet to use when the question names none")
	interpretCmd.Flags().String("sheet", "", "sheet to use when the question names none")
	rootCmd.AddCommand(interpretCmd)
}

func runInterpret(cmd *cobra.Command, args []string) error {
	s, err := requireServices(cmd)
	if err != nil {
		return err
	}
	if s.Interpreter == nil {
		return fmt.Errorf("interpreter not configured")
	}

	as, _ := cmd.Flags().GetString("as")
	spreadsheet, _ := cmd.Flags().GetString("spreadsheet")
	sheet, _ := cmd.Flags().GetString("sheet")

	text := strings.Join(args, " ")
	overrides := domain.Overrides{SourceID: spreadsheet, Scope: sheet}

	var intent domain.QueryIntent
	if as != "" {
		action := domain.Action(as)
		if !action.IsValid() {
			return fmt.Errorf("unknown action %q", as)
		}
		intent, err = s.Interpreter.InterpretAs(text, action, overrides)
	} else {
		intent, err = s.Interpreter.Interpret(text, overrides)
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(intent, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}

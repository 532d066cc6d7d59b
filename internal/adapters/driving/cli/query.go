package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driving"
	coreservices "github.com/drewfsc/saturday-night/internal/core/services"
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Answer a plain-language question",
	Long: `Interpret a question and answer it from the spreadsheet or the invoice ledger.

Questions mentioning invoices search the ledger; anything else reads the
default spreadsheet.

Examples:
  saturday-night query "first 10 rows from the Sales sheet"
  saturday-night query "invoices over $1,000 from last month"
  saturday-night query --json "spreadsheet info"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringP("format", "f", string(domain.ResponseBoth), "response format: verbal, structured or both")
	queryCmd.Flags().Bool("json", false, "print the raw JSON-RPC response envelope")
	queryCmd.Flags().String("spreadsheet", "", "spreadsheet to read when the question names none")
	queryCmd.Flags().String("sheet", "", "sheet to read when the question names none")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	s, err := requireServices(cmd)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	asJSON, _ := cmd.Flags().GetBool("json")
	spreadsheet, _ := cmd.Flags().GetString("spreadsheet")
	sheet, _ := cmd.Flags().GetString("sheet")

	toolArgs := map[string]any{
		"query":          strings.Join(args, " "),
		"responseFormat": format,
	}
	if spreadsheet != "" {
		toolArgs["spreadsheetId"] = spreadsheet
	}
	if sheet != "" {
		toolArgs["sheetName"] = sheet
	}

	return callTool(cmd, s.Dispatcher, coreservices.ToolQueryData, toolArgs, asJSON)
}

// callTool runs a tool and prints its result, or the full response envelope
// when asJSON is set.
func callTool(cmd *cobra.Command, d driving.Dispatcher, name string, args map[string]any, asJSON bool) error {
	if asJSON {
		return printEnvelope(cmd, d, name, args)
	}

	result, err := d.Call(cmd.Context(), name, args)
	if err != nil {
		return err
	}
	printResult(cmd, result)
	return nil
}

func printEnvelope(cmd *cobra.Command, d driving.Dispatcher, name string, args map[string]any) error {
	params, err := json.Marshal(domain.ToolCallParams{Name: name, Arguments: args})
	if err != nil {
		return err
	}
	id, err := json.Marshal(uuid.NewString())
	if err != nil {
		return err
	}

	resp := d.Dispatch(cmd.Context(), domain.RPCRequest{
		JSONRPC: "2.0",
		Method:  domain.MethodToolsCall,
		Params:  params,
		ID:      id,
	})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("%s (code %d)", resp.Error.Message, resp.Error.Code)
	}
	return nil
}

func printResult(cmd *cobra.Command, result *domain.FormattedResult) {
	if result.Verbal != "" {
		cmd.Println(result.Verbal)
	}
	if result.Data == nil {
		return
	}
	if result.Verbal != "" {
		cmd.Println()
	}
	printDataset(cmd, result.Data)
}

func printDataset(cmd *cobra.Command, ds *domain.NormalizedDataset) {
	if len(ds.Records) == 0 {
		cmd.Printf("No %s found.\n", ds.Kind.Noun())
		return
	}

	title := ds.SourceID
	if ds.Scope != "" {
		title += " / " + ds.Scope
	}
	cmd.Println(render(cmd, headerStyle, title))

	// Escape codes would skew tabwriter widths, so cells stay unstyled.
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(ds.Fields, "\t"))

	for _, rec := range ds.Records {
		cells := make([]string, len(ds.Fields))
		for i, f := range ds.Fields {
			cells[i] = cellText(rec[f])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()

	summary := fmt.Sprintf("%d of %d %s", len(ds.Records), ds.TotalMatched, ds.Kind.Noun())
	cmd.Println(render(cmd, countStyle, summary))
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List and call the published tools",
	RunE:  runToolsList,
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the published tools",
	RunE:  runToolsList,
}

var toolsCallCmd = &cobra.Command{
	Use:   "call [tool] [key=value...]",
	Short: "Call a tool with explicit arguments",
	Long: `Call a tool by name. Arguments are given as key=value pairs; values that
parse as JSON (numbers, booleans, arrays) are passed as such, anything
else is passed as a string.

Examples:
  saturday-night tools call search_invoices minAmount=1000 responseFormat=verbal
  saturday-night tools call read_sheet sheetName=Sales limit=5 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runToolsCall,
}

func init() {
	toolsCallCmd.Flags().Bool("json", false, "print the raw JSON-RPC response envelope")
	toolsCmd.AddCommand(toolsListCmd)
	toolsCmd.AddCommand(toolsCallCmd)
	rootCmd.AddCommand(toolsCmd)
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	s, err := requireServices(cmd)
	if err != nil {
		return err
	}

	tools := s.Dispatcher.Tools()
	cmd.Println(render(cmd, headerStyle, fmt.Sprintf("Tools (%d)", len(tools))))
	cmd.Println()
	for _, t := range tools {
		cmd.Printf("  %s\n", t.Name)
		cmd.Printf("    %s\n", render(cmd, labelStyle, t.Description))
		if props, ok := t.InputSchema["properties"].(map[string]any); ok && len(props) > 0 {
			cmd.Printf("    Arguments: %s\n", strings.Join(sortedKeys(props), ", "))
		}
	}
	return nil
}

func runToolsCall(cmd *cobra.Command, args []string) error {
	s, err := requireServices(cmd)
	if err != nil {
		return err
	}

	toolArgs, err := parseToolArgs(args[1:])
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	return callTool(cmd, s.Dispatcher, args[0], toolArgs, asJSON)
}

// parseToolArgs turns key=value pairs into tool arguments.
func parseToolArgs(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q: expected key=value", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out[key] = v
	}
	return out, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

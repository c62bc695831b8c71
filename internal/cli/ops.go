package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/membank/internal/dispatch"
)

func init() {
	for _, op := range dispatch.CoreOps() {
		RootCmd.AddCommand(opCommand(op))
	}
	// Sync commands exist only when the config file enables the mirror,
	// mirroring the boundary contract: absent capability, absent operations.
	if syncConfigured() {
		for _, op := range dispatch.SyncOps() {
			RootCmd.AddCommand(opCommand(op))
		}
	}
}

// opCommand builds one cobra command from a dispatch operation: flags come
// from the argument specs, and the result text is printed as-is.
func opCommand(op dispatch.Operation) *cobra.Command {
	cmd := &cobra.Command{
		Use:   flagName(op.Name),
		Short: op.Desc,
		Run: func(cmd *cobra.Command, args []string) {
			runOp(cmd, op)
		},
	}

	for _, spec := range op.Args {
		name := flagName(spec.Name)
		switch spec.Type {
		case dispatch.TypeNumber:
			cmd.Flags().Int(name, 0, spec.Desc)
		case dispatch.TypeBoolean:
			cmd.Flags().Bool(name, false, spec.Desc)
		default:
			cmd.Flags().String(name, "", spec.Desc)
		}
		if spec.Required {
			cmd.MarkFlagRequired(name)
		}
	}
	return cmd
}

func runOp(cmd *cobra.Command, op dispatch.Operation) {
	args := dispatch.Args{}
	for _, spec := range op.Args {
		name := flagName(spec.Name)
		if !cmd.Flags().Changed(name) {
			continue
		}
		switch spec.Type {
		case dispatch.TypeNumber:
			v, _ := cmd.Flags().GetInt(name)
			args[spec.Name] = v
		case dispatch.TypeBoolean:
			v, _ := cmd.Flags().GetBool(name)
			args[spec.Name] = v
		default:
			v, _ := cmd.Flags().GetString(name)
			args[spec.Name] = v
		}
	}

	d, cleanup, err := openDispatcher()
	if err != nil {
		exitErr(op.Name, err)
	}
	defer cleanup()

	fmt.Println(d.Call(cmd.Context(), op.Name, args))
}

func flagName(opName string) string {
	return strings.ReplaceAll(opName, "_", "-")
}

package cli

import (
	"errors"
	"time"

	"github.com/censys-cli/internal/service"
	"github.com/spf13/cobra"
)

const defaultHistory = 20

func (a *app) historyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history [limit]",
		Short: "List recently recorded queries",
		Long: `List the most recent invocations recorded in the audit trail.
Requires CENSYS_AUDIT_DSN to be set.`,
		Args:        usageArgs(cobra.MaximumNArgs(1)),
		Annotations: map[string]string{annotationAudit: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := defaultHistory
			if len(args) > 0 {
				n, err := parseCount(cmd, "limit", args[0], 0)
				if err != nil {
					return err
				}
				limit = n
			}

			entries, err := a.svc.History(cmd.Context(), limit)
			if errors.Is(err, service.ErrAuditDisabled) {
				return err
			}
			if err != nil {
				return &CommandError{Err: err}
			}
			return a.renderer().History(entries, time.Now())
		},
	}
}

package cli

import (
	"strconv"

	"github.com/censys-cli/internal/censys"
	"github.com/spf13/cobra"
)

const (
	maxPageSize    = 100
	maxBucketCount = 1000
)

var apiAnnotation = map[string]string{annotationAPI: "true"}

func (a *app) hostCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "host <ip>",
		Short:       "Look up a single host by IP address",
		Example:     "  censys-cli host 8.8.8.8",
		Args:        usageArgs(cobra.ExactArgs(1)),
		Annotations: apiAnnotation,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHost(cmd, args[0])
		},
	}
}

func (a *app) runHost(cmd *cobra.Command, ip string) error {
	host, err := a.svc.Host(cmd.Context(), ip)
	if err != nil {
		return &CommandError{Err: err}
	}
	return a.renderer().Host(host)
}

func (a *app) searchCommand() *cobra.Command {
	var pageToken string

	cmd := &cobra.Command{
		Use:   "search <query> [pageSize]",
		Short: "Search hosts, certificates and web properties",
		Long: `Run a Censys query and print one page of hits. The page size defaults
to CENSYS_SEARCH_PAGE_SIZE (5). Use the printed next page token with
--page-token to fetch the following page.`,
		Example:     `  censys-cli search "host.services.port: 22" 10`,
		Args:        usageArgs(cobra.RangeArgs(1, 2)),
		Annotations: apiAnnotation,
		RunE: func(cmd *cobra.Command, args []string) error {
			pageSize := a.cfg.Query.PageSize
			if len(args) > 1 {
				n, err := parseCount(cmd, "pageSize", args[1], maxPageSize)
				if err != nil {
					return err
				}
				pageSize = n
			}

			result, err := a.svc.Search(cmd.Context(), &censys.SearchRequest{
				Query:     args[0],
				PageSize:  pageSize,
				PageToken: pageToken,
				Fields:    censys.SearchFields,
			})
			if err != nil {
				return &CommandError{Err: err}
			}
			return a.renderer().Search(result)
		},
	}
	cmd.Flags().StringVar(&pageToken, "page-token", "", "continuation token from a previous page")
	return cmd
}

func (a *app) aggregateCommand() *cobra.Command {
	var (
		filterByQuery bool
		countByLevel  string
	)

	cmd := &cobra.Command{
		Use:   "aggregate <query> <field> [bucketCount]",
		Short: "Bucket the matches of a query by a field",
		Long: `Aggregate the matches of a Censys query by a field and print the
count per bucket. The bucket count defaults to CENSYS_AGGREGATE_BUCKETS (5).`,
		Example:     `  censys-cli aggregate "host.services.port: 22" "host.location.country" 10`,
		Args:        usageArgs(cobra.RangeArgs(2, 3)),
		Annotations: apiAnnotation,
		RunE: func(cmd *cobra.Command, args []string) error {
			buckets := a.cfg.Query.BucketCount
			if len(args) > 2 {
				n, err := parseCount(cmd, "bucketCount", args[2], maxBucketCount)
				if err != nil {
					return err
				}
				buckets = n
			}

			result, err := a.svc.Aggregate(cmd.Context(), &censys.AggregateRequest{
				Query:           args[0],
				Field:           args[1],
				NumberOfBuckets: buckets,
				FilterByQuery:   filterByQuery,
				CountByLevel:    countByLevel,
			})
			if err != nil {
				return &CommandError{Err: err}
			}
			return a.renderer().Aggregate(args[1], result)
		},
	}
	cmd.Flags().BoolVar(&filterByQuery, "filter-by-query", true, "only count values from documents matching the query")
	cmd.Flags().StringVar(&countByLevel, "count-by-level", "", "count documents at this nested field level")
	return cmd
}

// parseCount parses a positive integer argument, capped at upper when upper > 0
func parseCount(cmd *cobra.Command, name, value string, upper int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, usageErrorf(cmd, "%s must be a positive integer, got %q", name, value)
	}
	if upper > 0 && n > upper {
		return 0, usageErrorf(cmd, "%s must be at most %d, got %d", name, upper, n)
	}
	return n, nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/article"
	"github.com/frahmantamala/warehouse-management/internal/client"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/frahmantamala/warehouse-management/internal/workspace"
	"github.com/spf13/cobra"
)

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Work with store stock through the REST API",
	Long: `Log in against a running warehouse service and list, copy or transfer articles.
Credentials come from the client section of config.yml or the --user/--password flags.`,
}

var (
	stockUser      string
	stockPassword  string
	stockStore     string
	stockLowOnly   bool
	stockOverwrite bool
)

var stockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the articles visible to the logged in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
			var items []article.Article
			switch {
			case stockLowOnly:
				items = ws.Articles.LowStock()
			case stockStore != "":
				items = ws.Articles.InStore(stockStore)
			default:
				items = ws.Articles.List()
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STORE\tID\tNAME\tQTY\tRACK\tSHELF")
			for _, a := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", a.StoreID, a.ID, a.Name, a.Quantity, a.RackID, a.ShelfNumber)
			}
			return tw.Flush()
		})
	},
}

var stockCopyCmd = &cobra.Command{
	Use:   "copy [source-store] [target-store]",
	Short: "Copy every article of one store into another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
			res, saga, err := ws.Workflows.CopyArticles(ctx, args[0], args[1], stockOverwrite)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "copied %d, skipped %d, failed %d\n", res.Copied, res.Skipped, res.Failed)
			printFailedSteps(cmd, saga)
			return nil
		})
	},
}

var stockTransferCmd = &cobra.Command{
	Use:   "transfer [source-store] [target-store] [article-id] [quantity]",
	Short: "Move stock of one article between stores",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("quantity must be a number: %w", err)
		}
		return withWorkspace(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
			saga, err := ws.Workflows.TransferStock(ctx, args[0], args[1], args[2], qty)
			if err != nil {
				if saga != nil && saga.Count(workspace.StepDone) > 0 {
					if cerr := saga.Compensate(ctx); cerr != nil {
						return errors.Join(err, fmt.Errorf("compensation incomplete: %w", cerr))
					}
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transferred %d x %s from %s to %s\n", qty, args[2], args[0], args[1])
			return nil
		})
	},
}

var stockLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the local activity log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadClientConfig(configPath)
		if err != nil {
			return err
		}
		lg := initLogger(cfg)
		state, err := workspace.NewFileStore(cfg.Client.CacheDir, lg)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tUSER\tACTION\tDETAILS")
		for _, e := range workspace.NewActivityLog(state, lg).Entries() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp.Format(time.RFC3339), e.User, e.Action, e.Details)
		}
		return tw.Flush()
	},
}

func printFailedSteps(cmd *cobra.Command, saga *workspace.Saga) {
	if saga == nil {
		return
	}
	for _, st := range saga.Steps() {
		if st.State == workspace.StepFailed {
			fmt.Fprintf(cmd.ErrOrStderr(), "step %s failed: %v\n", st.Name, st.Err)
		}
	}
}

// withWorkspace logs in, syncs the caches, runs fn and logs out again.
func withWorkspace(cmd *cobra.Command, fn func(ctx context.Context, ws *workspace.Workspace) error) error {
	cfg, err := loadClientConfig(configPath)
	if err != nil {
		return err
	}
	lg := initLogger(cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ws, err := openWorkspace(cfg, lg)
	if err != nil {
		return err
	}

	username, password := cfg.Client.Username, cfg.Client.Password
	if stockUser != "" {
		username = stockUser
	}
	if stockPassword != "" {
		password = stockPassword
	}
	if _, err := ws.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login as %s: %w", username, err)
	}
	defer func() {
		if err := ws.Logout(context.Background()); err != nil && !errors.Is(err, workspace.ErrNoSession) {
			lg.Warn("logout failed", "error", err)
		}
	}()

	if err := ws.Sync(ctx); err != nil {
		lg.Warn("some collections could not be loaded", "error", err)
	}

	runErr := fn(ctx, ws)
	for _, n := range ws.Notifier.List() {
		if !n.Read {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", n.Level, n.Message)
		}
	}
	ws.Notifier.MarkAllRead()
	return runErr
}

func openWorkspace(cfg *internal.Config, lg *slog.Logger) (*workspace.Workspace, error) {
	state, err := workspace.NewFileStore(cfg.Client.CacheDir, lg)
	if err != nil {
		return nil, err
	}
	c := client.New(client.Config{BaseURL: cfg.Client.BaseURL, Timeout: cfg.Client.Timeout}, lg)
	remotes := workspace.Remotes{
		Articles:       c.Articles(),
		GlobalArticles: c.GlobalArticles(),
		Stores:         c.Stores(),
		Racks:          c.Racks(),
		Users:          c.Users(),
		Tasks:          c.Tasks(),
		Announcements:  c.Announcements(),
		AuditTemplates: c.AuditTemplates(),
	}
	wcfg := workspace.Config{
		InactivityTimeout: cfg.Workspace.InactivityTimeout,
		Locale:            cfg.Workspace.Locale,
		PermissionModel:   permission.Model(cfg.Permissions.Model),
	}
	return workspace.New(wcfg, c, remotes, state, lg), nil
}

func init() {
	stockCmd.PersistentFlags().StringVarP(&stockUser, "user", "u", "", "Username, overrides client.username")
	stockCmd.PersistentFlags().StringVarP(&stockPassword, "password", "p", "", "Password, overrides client.password")
	stockListCmd.Flags().StringVar(&stockStore, "store", "", "Only list articles of this store")
	stockListCmd.Flags().BoolVar(&stockLowOnly, "low", false, "Only list articles below their minimum quantity")
	stockCopyCmd.Flags().BoolVar(&stockOverwrite, "overwrite", false, "Overwrite articles that already exist in the target store")

	stockCmd.AddCommand(stockListCmd, stockCopyCmd, stockTransferCmd, stockLogCmd)
	rootCmd.AddCommand(stockCmd)
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/warehouse-management/internal/activity"
	activityPostgres "github.com/frahmantamala/warehouse-management/internal/activity/postgres"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/core/events"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage entity change events: list the known types, publish a test event, record it in the activity log`,
}

var listEventTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the entity change event types",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, t := range events.EventTypes() {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
	},
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [entity] [action]",
	Short: "Publish a test entity change event",
	Long:  `Publish an entity change event to the in-process bus. With --record the activity handler writes it to the database.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), args[0], args[1])
	},
}

var (
	eventData   string
	eventActor  string
	eventStore  string
	eventID     string
	eventRecord bool
)

func publishTestEvent(ctx context.Context, entity, action string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	lg := initLogger(cfg)

	eventType := entity + "." + action
	known := false
	for _, t := range events.EventTypes() {
		if t == eventType {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown event type %q", eventType)
	}

	bus := events.NewEventBus(lg)
	bus.Subscribe(eventType, func(_ context.Context, event events.Event) error {
		lg.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	if eventRecord {
		db, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		policy := auth.NewABACPolicy(permission.NewOracle(permission.Model(cfg.Permissions.Model)))
		activity.NewService(activityPostgres.NewActivityRepository(db), policy, lg).RegisterEventHandlers(bus)
	}

	ev := events.NewEntityChangedEvent(eventActor, entity, action, eventID, eventStore, eventData)
	lg.Info("publishing test event", "event_type", eventType, "event_id", ev.EventID())

	if err := bus.Publish(ctx, ev); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	drainCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := bus.Drain(drainCtx); err != nil {
		return fmt.Errorf("drain event bus: %w", err)
	}
	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event details")
	publishEventCmd.Flags().StringVar(&eventActor, "actor", "cli", "Username recorded as the actor")
	publishEventCmd.Flags().StringVar(&eventStore, "store", "", "Store ID the change belongs to")
	publishEventCmd.Flags().StringVar(&eventID, "id", "", "Entity ID")
	publishEventCmd.Flags().BoolVar(&eventRecord, "record", false, "Write the event to the activity log table")

	eventCmd.AddCommand(listEventTypesCmd, publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}

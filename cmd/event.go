package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/recruitment/internal/core/events"
	"github.com/frahmantamala/recruitment/internal/rbac"
	"github.com/frahmantamala/recruitment/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish domain events by hand, e.g. after editing roles directly in the database`,
}

var rbacChangedCmd = &cobra.Command{
	Use:   "rbac-changed",
	Short: "Publish rbac.changed",
	Long:  `Publish rbac.changed so every cached permission set is dropped`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		publishRBACChanged()
	},
}

var eventReason string

func publishRBACChanged() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	lg := logger.LoggerWrapper()

	redisClient := initRedis(config.Redis)
	if redisClient == nil {
		lg.Info("redis not configured, permission caches are process local and need no flush")
		return
	}
	defer redisClient.Close()

	bus := events.NewEventBus(lg)
	// invalidation never reads the store
	resolver := rbac.NewPermissionResolver(nil, rbac.NewRedisCache(redisClient, config.Redis.CacheTTL), lg)
	resolver.SubscribeInvalidation(bus)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event := events.NewRBACChangedEvent(eventReason)
	if err := bus.PublishSync(ctx, event); err != nil {
		lg.Error("failed to publish event", "error", err)
		os.Exit(1)
	}
	lg.Info("event published", "event_id", event.EventID(), "event_type", event.EventType())
}

func init() {
	rbacChangedCmd.Flags().StringVar(&eventReason, "reason", "manual flush", "reason recorded on the event")

	eventCmd.AddCommand(rbacChangedCmd)

	rootCmd.AddCommand(eventCmd)
}

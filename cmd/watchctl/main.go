// Command watchctl is the Burkina Watch operations CLI.
//
// Usage:
//
//	watchctl analyze
//	watchctl analyze --json
//	watchctl dispatch --incident 42
//	watchctl broadcast --title "Maintenance" --body "Service indisponible ce soir"
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/config"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/db"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/push"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/risk"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "watchctl",
		Short: "Burkina Watch operations CLI",
	}

	root.AddCommand(analyzeCmd())
	root.AddCommand(dispatchCmd())
	root.AddCommand(broadcastCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// analyze command
// --------------------------------------------------------------------------

func analyzeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run risk analysis and print the current zones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				analyzer := risk.NewService(store.NewIncidents(pool.Pool), nil, logger)
				result, err := analyzer.Zones(ctx, time.Now().UTC())
				if err != nil {
					return err
				}

				if asJSON {
					data, err := risk.MarshalZones(result.Zones)
					if err != nil {
						return err
					}
					fmt.Println(string(data))
					return nil
				}

				if len(result.Zones) == 0 {
					fmt.Println("No risk zones in the current window.")
					return nil
				}
				for i, z := range result.Zones {
					fmt.Printf("%2d. [%s] %-40s score=%3d incidents=%d trend=%s\n",
						i+1, z.Level, z.Label, z.Score, z.IncidentCount, z.Trend)
				}
				if result.Skipped > 0 {
					fmt.Printf("(%d rows skipped for malformed coordinates)\n", result.Skipped)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print zones as a JSON array")
	return cmd
}

// --------------------------------------------------------------------------
// dispatch command
// --------------------------------------------------------------------------

func dispatchCmd() *cobra.Command {
	var incidentID int
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Re-run the geofenced fan-out for an incident",
		RunE: func(cmd *cobra.Command, args []string) error {
			if incidentID <= 0 {
				return fmt.Errorf("--incident is required")
			}
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				incidents := store.NewIncidents(pool.Pool)
				incident, err := incidents.ByID(ctx, incidentID)
				if err != nil {
					return err
				}

				engine, err := newEngine(cfg, pool)
				if err != nil {
					return err
				}
				sent, err := engine.DispatchForIncident(ctx, incident, incident.AuthorID)
				if err != nil {
					return err
				}
				fmt.Printf("Dispatched %d notification(s) for incident %d\n", sent, incidentID)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&incidentID, "incident", 0, "Incident id")
	return cmd
}

// --------------------------------------------------------------------------
// broadcast command
// --------------------------------------------------------------------------

func broadcastCmd() *cobra.Command {
	var title, body string
	var incidentID int
	cmd := &cobra.Command{
		Use:   "broadcast",
		Short: "Send a platform-wide announcement to all subscribers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" || body == "" {
				return fmt.Errorf("--title and --body are required")
			}
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				engine, err := newEngine(cfg, pool)
				if err != nil {
					return err
				}

				payload := push.Payload{Title: title, Body: body, IncidentID: incidentID}
				if incidentID > 0 {
					payload.URL = fmt.Sprintf("/reports/%d", incidentID)
				}
				sent, err := engine.Broadcast(ctx, payload)
				if err != nil {
					return err
				}
				fmt.Printf("Broadcast delivered to %d subscription(s)\n", sent)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Announcement title")
	cmd.Flags().StringVar(&body, "body", "", "Announcement body")
	cmd.Flags().IntVar(&incidentID, "incident", 0, "Related incident id (optional)")
	return cmd
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func newEngine(cfg *config.Config, pool *db.Pool) (*push.Engine, error) {
	transport := push.NewWebPushTransport(cfg.VAPIDSubscriber, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
	if transport == nil {
		return nil, fmt.Errorf("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY must be set")
	}
	return push.NewEngine(store.NewSubscriptions(pool.Pool), transport, nil, logger, cfg.FanoutBatchSize), nil
}

func withPool(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}

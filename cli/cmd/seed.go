package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/keywinf/relay-stack/cli/internal/seeder"
	"github.com/keywinf/relay-stack/common/messaging"
	"github.com/keywinf/relay-stack/common/messaging/nats"
)

var (
	seedNATSURL   string
	seedCount     int
	seedEventType string
	seedSpread    time.Duration
	seedProfile   string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Publish fake domain events to the relay bus",
	Long: `Generate realistic fake domain events and publish them to the
domain-events stream, where the relay picks them up.

Examples:
  # Publish 50 random events
  relayctl seed --count 50

  # Publish notification events only
  relayctl seed --count 10 --type UserWasNotified

  # Spread event times over the last minute to exercise the freshness gate
  relayctl seed --count 100 --spread 1m

  # Publish a fixed mix described by a YAML profile
  relayctl seed --profile profiles/demo.yaml`,
	RunE: runSeed,
}

var seedTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the event types the seeder can generate",
	Run: func(cmd *cobra.Command, args []string) {
		types := seeder.Types()
		sort.Strings(types)
		for _, t := range types {
			fmt.Println(t)
		}
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedNATSURL, "nats-url", "nats://localhost:4222", "NATS server URL")
	seedCmd.Flags().IntVar(&seedCount, "count", 10, "number of events to publish")
	seedCmd.Flags().StringVar(&seedEventType, "type", "", "event type to generate (default: random mix)")
	seedCmd.Flags().DurationVar(&seedSpread, "spread", 0, "spread event times over this window in the past")
	seedCmd.Flags().StringVar(&seedProfile, "profile", "", "YAML profile describing the event mix (overrides --count/--type)")

	seedCmd.AddCommand(seedTypesCmd)
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	client, err := nats.NewJetStreamClient(nats.Config{
		URL:  seedNATSURL,
		Name: "relayctl-seeder",
	})
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer client.Close()

	envelopes, err := seedBatch()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	published := 0
	for _, env := range envelopes {
		data, err := env.Marshal()
		if err != nil {
			return fmt.Errorf("marshal envelope: %w", err)
		}

		subject := messaging.DomainEventSubject(env.Type)
		if _, err := client.PublishSync(ctx, subject, data); err != nil {
			return fmt.Errorf("publish to %s: %w", subject, err)
		}
		published++
	}

	fmt.Printf("Published %d events\n", published)
	return nil
}

func seedBatch() ([]seeder.Envelope, error) {
	if seedProfile != "" {
		profile, err := seeder.LoadProfile(seedProfile)
		if err != nil {
			return nil, err
		}
		return profile.Envelopes()
	}

	envelopes := make([]seeder.Envelope, 0, seedCount)
	for i := 0; i < seedCount; i++ {
		if seedEventType != "" {
			env, err := seeder.Generate(seedEventType, seedSpread)
			if err != nil {
				return nil, err
			}
			envelopes = append(envelopes, env)
			continue
		}
		envelopes = append(envelopes, seeder.GenerateRandom(seedSpread))
	}
	return envelopes, nil
}

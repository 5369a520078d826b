/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jjudge-oj/glossary/config"
	"github.com/jjudge-oj/glossary/internal/mq"
	"github.com/jjudge-oj/glossary/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// eventsCmd groups glossary event tooling.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect glossary change events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Log glossary events as they are published",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		broker, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		defer broker.Close()

		logger.Info("tailing events", zap.String("channel", cfg.MQ.Channel), zap.String("backend", cfg.MQ.Backend))
		err = broker.Subscribe(ctx, cfg.MQ.Channel, func(_ context.Context, msg mq.Message) error {
			var event types.GlossaryEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				logger.Warn("undecodable event", zap.String("message_id", msg.ID), zap.Error(err))
				return nil
			}
			logger.Info("event",
				zap.String("type", string(event.Type)),
				zap.String("resource_id", event.ResourceID),
				zap.String("actor_id", event.ActorID),
				zap.Time("occurred_at", event.OccurredAt),
			)
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/benmeehan/sentinel/internal/console"
	"github.com/benmeehan/sentinel/internal/device"
	"github.com/benmeehan/sentinel/internal/services"
	"github.com/benmeehan/sentinel/pkg/mqtt"
	"github.com/google/uuid"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:       "get <variable>",
	Short:     "Read one device variable",
	Long:      "Read one device variable: " + strings.Join(device.Variables(), ", ") + ".",
	Args:      cobra.ExactArgs(1),
	ValidArgs: device.Variables(),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(configPath)
		if err != nil {
			return err
		}

		value, err := a.client.ReadVariable(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := colorable.NewColorableStdout()
		style := console.NewStyler(os.Stdout)
		for _, line := range console.RenderValue(args[0], value) {
			fmt.Fprintln(out, style.Format(line))
		}
		return nil
	},
}

var callCmd = &cobra.Command{
	Use:       "call <function> [argument]",
	Short:     "Call one device function and print the state it acknowledged",
	Long:      callHelp(),
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: device.Functions(),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(configPath)
		if err != nil {
			return err
		}

		var argument string
		if len(args) == 2 {
			argument = args[1]
		}

		n, err := a.client.CallFunction(cmd.Context(), args[0], argument)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

func callHelp() string {
	var b strings.Builder
	b.WriteString("Call one device function. Accepted arguments:\n")
	for _, function := range device.Functions() {
		args := device.AcceptedArguments(function)
		if len(args) == 1 && args[0] == "" {
			fmt.Fprintf(&b, "  %s (no argument)\n", function)
			continue
		}
		fmt.Fprintf(&b, "  %s %s\n", function, strings.Join(args, "|"))
	}
	return b.String()
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the device status and report alarms until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(configPath)
		if err != nil {
			return err
		}

		interval, err := a.config.WatchInterval()
		if err != nil {
			return err
		}

		cfg := a.config.Watch.MQTT
		var publisher mqtt.MQTTClient
		if cfg.Enabled {
			clientID := cfg.ClientID + "-" + uuid.New().String()
			a.logger.Info().Str("client_id", clientID).Str("broker", cfg.Broker).Msg("Using MQTT Client ID")

			mqttClient := mqtt.NewMqttService(a.fileClient)
			if err := mqttClient.Initialize(cfg.Broker, clientID, cfg.CACertificate); err != nil {
				return fmt.Errorf("failed to initialize MQTT connection: %w", err)
			}
			defer mqttClient.Disconnect(250)
			publisher = mqttClient
		}

		w := services.NewWatchService(a.client, interval, cfg.Topic, cfg.QOS, publisher, a.logger)
		if err := w.Start(); err != nil {
			return err
		}

		<-cmd.Context().Done()
		return w.Stop()
	},
}

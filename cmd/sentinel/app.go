package main

import (
	"os"

	"github.com/benmeehan/sentinel/internal/device"
	"github.com/benmeehan/sentinel/internal/utils"
	"github.com/benmeehan/sentinel/pkg/file"
	"github.com/benmeehan/sentinel/pkg/relay"
	"github.com/rs/zerolog"
)

// app holds what every command needs once the configuration is loaded.
type app struct {
	config     *utils.Config
	fileClient file.FileOperations
	logger     zerolog.Logger
	client     *device.Client
}

func setup(path string) (*app, error) {
	fileClient := file.NewFileService()

	config, err := utils.LoadConfig(path, fileClient)
	if err != nil {
		return nil, err
	}

	logger := utils.NewLogger(config.Log, os.Stderr)

	id, err := config.Identity()
	if err != nil {
		return nil, err
	}

	timeout, err := config.RelayTimeout()
	if err != nil {
		return nil, err
	}

	transport := relay.NewClient(config.Relay.BaseURL, timeout, logger)
	logger.Debug().Str("config", path).Str("relay", config.Relay.BaseURL).Object("identity", id).Msg("Configuration loaded")

	return &app{
		config:     config,
		fileClient: fileClient,
		logger:     logger,
		client:     device.NewClient(id, transport, logger),
	}, nil
}

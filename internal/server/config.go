package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/bingohall/internal/bingo"
	"github.com/lox/bingohall/internal/room"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Rooms  []RoomConfig   `hcl:"room,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address        string `hcl:"address,optional"`
	Port           int    `hcl:"port,optional"`
	LogLevel       string `hcl:"log_level,optional"`
	Pattern        string `hcl:"pattern,optional"`
	CardsPerPlayer int    `hcl:"cards_per_player,optional"`
}

// RoomConfig declares a room created when the server boots
type RoomConfig struct {
	Name           string `hcl:"name,label"`
	Pattern        string `hcl:"pattern,optional"`
	CardsPerPlayer int    `hcl:"cards_per_player,optional"`
	MaxPlayers     int    `hcl:"max_players,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:        "localhost",
			Port:           4000,
			LogLevel:       "info",
			Pattern:        string(bingo.PatternLine),
			CardsPerPlayer: 1,
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file. A
// missing file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 4000
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.Pattern == "" {
		config.Server.Pattern = string(bingo.PatternLine)
	}
	if config.Server.CardsPerPlayer == 0 {
		config.Server.CardsPerPlayer = 1
	}

	for i := range config.Rooms {
		if config.Rooms[i].Pattern == "" {
			config.Rooms[i].Pattern = config.Server.Pattern
		}
		if config.Rooms[i].CardsPerPlayer == 0 {
			config.Rooms[i].CardsPerPlayer = config.Server.CardsPerPlayer
		}
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	validPatterns := map[string]bool{
		string(bingo.PatternLine):    true,
		string(bingo.PatternCorners): true,
		string(bingo.PatternFull):    true,
	}

	if !validPatterns[c.Server.Pattern] {
		return fmt.Errorf("invalid default pattern: %s", c.Server.Pattern)
	}
	if c.Server.CardsPerPlayer < 1 {
		return fmt.Errorf("cards_per_player must be positive, got %d", c.Server.CardsPerPlayer)
	}

	for _, rc := range c.Rooms {
		if !validPatterns[rc.Pattern] {
			return fmt.Errorf("room %s: invalid pattern %s", rc.Name, rc.Pattern)
		}
		if rc.CardsPerPlayer < 1 {
			return fmt.Errorf("room %s: cards_per_player must be positive", rc.Name)
		}
		if rc.MaxPlayers < 0 {
			return fmt.Errorf("room %s: max_players cannot be negative", rc.Name)
		}
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// DefaultRoomConfig returns the room settings used for rooms created on
// demand by clients.
func (c *ServerConfig) DefaultRoomConfig() room.Config {
	return room.Config{
		Pattern:        bingo.ParsePattern(c.Server.Pattern),
		CardsPerPlayer: c.Server.CardsPerPlayer,
	}
}

// toRoomConfig converts a declared room block into room settings.
func (rc RoomConfig) toRoomConfig() room.Config {
	return room.Config{
		Pattern:        bingo.ParsePattern(rc.Pattern),
		CardsPerPlayer: rc.CardsPerPlayer,
		MaxPlayers:     rc.MaxPlayers,
	}
}

// CreateRooms registers every declared room block with the registry.
func (c *ServerConfig) CreateRooms(registry *room.Registry) error {
	for _, rc := range c.Rooms {
		if _, err := registry.Create(rc.Name, rc.toRoomConfig()); err != nil {
			return fmt.Errorf("creating room %s: %w", rc.Name, err)
		}
	}
	return nil
}

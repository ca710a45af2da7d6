package config

import "time"

// Coordination definition coordination_service YAML structure
type Coordination struct {
	Port string `mapstructure:"port"`

	MongoSQL   DatabaseConfig `mapstructure:"mongo"`
	Redis      RedisConfig    `mapstructure:"redis"`
	PostgreSQL DatabaseConfig `mapstructure:"pg"`

	Kafka  KafkaConfig  `mapstructure:"kafka"`
	Rabbit RabbitConfig `mapstructure:"rabbit"`

	Presence PresenceConfig `mapstructure:"presence"`
	Typing   TypingConfig   `mapstructure:"typing"`
}

// PresenceConfig definition presence registry setting
type PresenceConfig struct {
	// StaleThreshold how long after last_seen the sweep may flip a user offline
	StaleThreshold time.Duration `mapstructure:"stale_threshold"`
	// SweepInterval tick period of the background sweep
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	// RecordTTL redis TTL for the best-effort presence snapshot
	RecordTTL time.Duration `mapstructure:"record_ttl"`
}

// TypingConfig definition typing indicator setting
type TypingConfig struct {
	// Timeout auto-clear delay after the last typing=true signal
	Timeout time.Duration `mapstructure:"timeout"`
}

// KafkaConfig definition activity egress setting
type KafkaConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}

// RabbitConfig definition notification egress setting
type RabbitConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"`
	Queue         string `mapstructure:"queue"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

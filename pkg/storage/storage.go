// Package storage is the key to JSON blob store behind alarms, reminders,
// custom commands and settings.
package storage

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var ErrNotFound = errors.New("storage: key not found")

const (
	KeyAlarm               = "avrilAlarm"
	KeyReminders           = "avrilReminders"
	KeyCustomCommands      = "avrilCustomCommands"
	KeyTimeIntervalMinutes = "avrilTimeIntervalMinutes"
)

type IStorage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GetJSON decodes the blob under key into dest. It reports found=false when the
// key is absent so callers can fall back to their defaults.
func GetJSON(ctx context.Context, s IStorage, key string, dest interface{}) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s IStorage, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

package commandRepository

import (
	"context"
	"errors"
	"os"

	"avril/internal/api/command"
	"avril/internal/entity"
	"avril/pkg/storage"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type IRepository interface {
	// List reports found=false when nothing was ever saved, so the caller
	// can fall back to the seed.
	List(ctx context.Context) (commands []entity.CustomCommand, found bool, err error)
	Save(ctx context.Context, commands []entity.CustomCommand) error
	// LoadSeed reads the YAML seed. A missing file yields an empty seed.
	LoadSeed(path string) (command.Seed, error)
}

type repository struct {
	store storage.IStorage
	log   *logrus.Logger
}

func New(store storage.IStorage, log *logrus.Logger) IRepository {
	return &repository{
		store: store,
		log:   log,
	}
}

func (r *repository) List(ctx context.Context) ([]entity.CustomCommand, bool, error) {
	var commands []entity.CustomCommand
	found, err := storage.GetJSON(ctx, r.store, storage.KeyCustomCommands, &commands)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"key":   storage.KeyCustomCommands,
			"error": err.Error(),
		}).Error("Failed to load custom commands")
		return nil, false, err
	}
	return commands, found, nil
}

func (r *repository) Save(ctx context.Context, commands []entity.CustomCommand) error {
	if commands == nil {
		commands = []entity.CustomCommand{}
	}
	if err := storage.SetJSON(ctx, r.store, storage.KeyCustomCommands, commands); err != nil {
		r.log.WithFields(logrus.Fields{
			"count": len(commands),
			"error": err.Error(),
		}).Error("Failed to save custom commands")
		return err
	}
	return nil
}

func (r *repository) LoadSeed(path string) (command.Seed, error) {
	var seed command.Seed
	if path == "" {
		return seed, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		r.log.WithField("path", path).Debug("No command seed file")
		return seed, nil
	}
	if err != nil {
		return seed, err
	}

	if err := yaml.Unmarshal(raw, &seed); err != nil {
		r.log.WithFields(logrus.Fields{
			"path":  path,
			"error": err.Error(),
		}).Error("Invalid command seed file")
		return command.Seed{}, command.ErrSeedFile
	}
	return seed, nil
}

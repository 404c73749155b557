package commandService

import (
	"context"
	"errors"
	"strings"

	"avril/internal/api/command"
	"avril/internal/entity"
	"avril/pkg/nlp"

	"github.com/sirupsen/logrus"
)

// Load restores saved custom commands. When none were ever saved the seed
// file supplies them. The seed's jokes replace the built-in bank.
func (s *commandService) Load(ctx context.Context) error {
	seed, seedErr := s.repo.LoadSeed(s.cfg.SeedPath)
	if seedErr == nil {
		s.useSeedJokes(seed.Jokes)
	}

	saved, found, err := s.repo.List(ctx)
	if err != nil {
		return errors.Join(err, seedErr)
	}

	source := saved
	if !found {
		source = seed.Commands
	}
	s.custom = normalizeCommands(source)

	s.log.WithFields(logrus.Fields{
		"commands": len(s.custom),
		"jokes":    len(s.jokes),
		"seeded":   !found,
	}).Info("Custom commands loaded")

	return seedErr
}

// normalizeCommands derives each key from the stored key or phrase and drops
// entries without a usable key or response.
func normalizeCommands(in []entity.CustomCommand) []entity.CustomCommand {
	out := make([]entity.CustomCommand, 0, len(in))
	for _, c := range in {
		key := nlp.Squash(c.Key)
		if key == "" {
			key = nlp.Squash(c.Phrase)
		}
		if key == "" || strings.TrimSpace(c.Response) == "" {
			continue
		}
		out = append(out, entity.CustomCommand{Key: key, Phrase: c.Phrase, Response: c.Response})
	}
	return out
}

func (s *commandService) CustomCommands() []entity.CustomCommand {
	out := make([]entity.CustomCommand, len(s.custom))
	copy(out, s.custom)
	return out
}

// SaveCustomCommand adds a command or replaces the response of the command
// with the same key.
func (s *commandService) SaveCustomCommand(ctx context.Context, phrase, response string) (entity.CustomCommand, error) {
	key := nlp.Squash(phrase)
	response = strings.TrimSpace(response)
	if key == "" || response == "" {
		return entity.CustomCommand{}, command.ErrInvalidCommand
	}
	if s.IsWakePhrase(phrase) || key == ownPrompt {
		return entity.CustomCommand{}, command.ErrReservedPhrase
	}

	cmd := entity.CustomCommand{Key: key, Phrase: strings.TrimSpace(phrase), Response: response}

	next := s.CustomCommands()
	replaced := false
	for i := range next {
		if next[i].Key == key {
			next[i] = cmd
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, cmd)
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return entity.CustomCommand{}, command.ErrPersist
	}
	s.custom = next
	return cmd, nil
}

func (s *commandService) DeleteCustomCommand(ctx context.Context, key string) error {
	key = nlp.Squash(key)

	next := make([]entity.CustomCommand, 0, len(s.custom))
	for _, c := range s.custom {
		if c.Key != key {
			next = append(next, c)
		}
	}
	if len(next) == len(s.custom) {
		return command.ErrCommandNotFound
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return command.ErrPersist
	}
	s.custom = next
	return nil
}

func (s *commandService) customIntent() intent {
	find := func(key string) (entity.CustomCommand, bool) {
		for _, c := range s.custom {
			if strings.Contains(key, c.Key) {
				return c, true
			}
		}
		return entity.CustomCommand{}, false
	}

	return intent{
		name: "custom",
		match: func(u utterance) bool {
			_, ok := find(u.key)
			return ok
		},
		handle: func(u utterance, done func(Reply)) {
			c, _ := find(u.key)
			done(reply(c.Response))
		},
	}
}

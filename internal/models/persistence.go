package models

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

const journalFile = "journal.yaml"

// Journal is the exported record of a finished game. It is written once at
// game over for later reading and is never loaded back into a session.
type Journal struct {
	Name     string       `yaml:"name"`
	Finished time.Time    `yaml:"finished"`
	Rounds   int          `yaml:"rounds"`
	Seed     int64        `yaml:"seed"`
	Summary  Summary      `yaml:"summary"`
	Turns    []TurnRecord `yaml:"turns"`
}

// JournalName derives a directory name from the finish time.
func JournalName(finished time.Time) string {
	return "game-" + finished.UTC().Format("20060102-150405")
}

// Save writes the journal under dir. If another journal already holds the
// name, a numeric suffix is added and Name is updated to match.
func (j *Journal) Save(dir string) error {
	if j.Name == "" {
		return fmt.Errorf("journal has no name")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	target, err := claimDir(dir, j.Name)
	if err != nil {
		return err
	}
	j.Name = filepath.Base(target)

	data, err := yaml.Marshal(j)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(target, journalFile), data, 0644)
}

func claimDir(dir, name string) (string, error) {
	for i := 1; ; i++ {
		candidate := name
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", name, i)
		}
		target := filepath.Join(dir, candidate)
		err := os.Mkdir(target, 0755)
		if err == nil {
			return target, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
}

func LoadJournal(dir, name string) (*Journal, error) {
	data, err := os.ReadFile(filepath.Join(dir, name, journalFile))
	if err != nil {
		return nil, err
	}
	var j Journal
	if err := yaml.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse journal %s: %w", name, err)
	}
	return &j, nil
}

// ListJournals returns the names of saved journals, oldest first.
func ListJournals(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			// journal.yaml marks a complete export
			if _, err := os.Stat(filepath.Join(dir, entry.Name(), journalFile)); err == nil {
				names = append(names, entry.Name())
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

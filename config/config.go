package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Config is a source from which application configuration can be loaded.
type Config interface {
	LoadConfig(c any) error
	Check() error
}

// Load first ensures that the config source is valid and accessible. Then it loads the config into c.
func Load(cs Config, c any) error {
	if err := cs.Check(); err != nil {
		return err
	}
	return cs.LoadConfig(c)
}

// File is a JSON config file. Unknown keys are rejected so that a typo in a
// field name does not silently fall back to a default.
type File struct {
	ConfigFilePath string
}

func (f *File) Check() error {
	if f.ConfigFilePath == "" {
		return fmt.Errorf("configFilePath cannot be empty")
	}
	info, err := os.Stat(f.ConfigFilePath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", f.ConfigFilePath)
	}
	return nil
}

func (f *File) LoadConfig(appConfig any) error {
	file, err := os.Open(f.ConfigFilePath)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(appConfig); err != nil {
		return fmt.Errorf("decode %s: %w", f.ConfigFilePath, err)
	}
	return nil
}

// LoadConfigFromFile loads the JSON file at filePath into appConfig. Fields
// absent from the file keep the values appConfig already holds.
func LoadConfigFromFile(filePath string, appConfig any) error {
	if err := Load(&File{ConfigFilePath: filePath}, appConfig); err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	return nil
}

// EnvError reports an environment override that could not be applied.
type EnvError struct {
	Key   string
	Value string
	Err   error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("environment variable %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *EnvError) Unwrap() error {
	return e.Err
}

// GetEnv returns the value of key, or defaultValue when it is unset or empty.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ApplyEnv calls the setter of every variable in overrides that is set in
// the environment, in key order. The first setter error stops the walk.
func ApplyEnv(overrides map[string]func(value string) error) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := GetEnv(key, "")
		if value == "" {
			continue
		}
		if err := overrides[key](value); err != nil {
			return &EnvError{Key: key, Value: value, Err: err}
		}
	}
	return nil
}

// Package credentials resolves the username and API key used to
// authenticate against Kaggle.
//
// Credentials come from explicit values, a kaggle.json file, or the
// KAGGLE_USERNAME and KAGGLE_KEY environment variables:
//
//	creds, err := credentials.Resolve(credentials.Default())
package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// FileName is the name of the credentials file.
	FileName = "kaggle.json"

	envPrefix    = "KAGGLE_"
	envConfigDir = "KAGGLE_CONFIG_DIR"
)

// ErrConfig is returned when credentials are missing, unreadable or malformed.
var ErrConfig = errors.New("invalid credentials configuration")

// Credentials identify a Kaggle account. The zero value is not usable.
type Credentials struct {
	Username string `koanf:"username"`
	Key      string `koanf:"key"`
}

// String never includes the key.
func (c Credentials) String() string {
	return fmt.Sprintf("username=%s key=%s", c.Username, redact(c.Key))
}

// LogValue implements [slog.LogValuer] so the key never reaches a log record.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.String("key", redact(c.Key)),
	)
}

func redact(key string) string {
	if key == "" {
		return ""
	}
	return "****"
}

// Source loads credential values into k.
type Source struct {
	name string
	load func(k *koanf.Koanf) error
}

func (s Source) String() string { return s.name }

// Static uses the given username and key.
func Static(username, key string) Source {
	return Source{
		name: "static",
		load: func(k *koanf.Koanf) error {
			if err := k.Set("username", username); err != nil {
				return err
			}
			return k.Set("key", key)
		},
	}
}

// File reads a kaggle.json file at path. The file must exist.
func File(path string) Source {
	return Source{
		name: "file " + path,
		load: func(k *koanf.Koanf) error {
			return k.Load(file.Provider(path), json.Parser())
		},
	}
}

// Env reads KAGGLE_USERNAME and KAGGLE_KEY.
func Env() Source {
	return Source{
		name: "environment",
		load: func(k *koanf.Koanf) error {
			return k.Load(env.Provider(envPrefix, ".", envKey), nil)
		},
	}
}

// Default reads the kaggle.json file from [DefaultPath] when it exists,
// then overlays any values set in the environment.
func Default() Source {
	return Source{
		name: "default",
		load: func(k *koanf.Koanf) error {
			path, err := DefaultPath()
			if err != nil {
				return err
			}

			switch _, err := os.Stat(path); {
			case err == nil:
				if err := File(path).load(k); err != nil {
					return fmt.Errorf("file %s: %w", path, err)
				}
			case !errors.Is(err, fs.ErrNotExist):
				return fmt.Errorf("file %s: %w", path, err)
			}

			return Env().load(k)
		},
	}
}

// envKey maps KAGGLE_USERNAME to "username" and KAGGLE_KEY to "key".
// Other KAGGLE_ variables are dropped.
func envKey(s string) string {
	switch key := strings.ToLower(strings.TrimPrefix(s, envPrefix)); key {
	case "username", "key":
		return key
	default:
		return ""
	}
}

// DefaultPath is $KAGGLE_CONFIG_DIR/kaggle.json, falling back to
// ~/.kaggle/kaggle.json.
func DefaultPath() (string, error) {
	if dir := os.Getenv(envConfigDir); dir != "" {
		return filepath.Join(dir, FileName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}

	return filepath.Join(home, ".kaggle", FileName), nil
}

// Resolve loads src and checks that both the username and key are set.
func Resolve(src Source) (Credentials, error) {
	if src.load == nil {
		return Credentials{}, fmt.Errorf("%w: no source", ErrConfig)
	}

	k := koanf.New(".")
	if err := src.load(k); err != nil {
		return Credentials{}, fmt.Errorf("%w: %s: %w", ErrConfig, src, err)
	}

	var creds Credentials
	if err := k.Unmarshal("", &creds); err != nil {
		return Credentials{}, fmt.Errorf("%w: %s: decoding: %w", ErrConfig, src, err)
	}

	creds.Username = strings.TrimSpace(creds.Username)
	creds.Key = strings.TrimSpace(creds.Key)

	var missing []string
	if creds.Username == "" {
		missing = append(missing, "username")
	}
	if creds.Key == "" {
		missing = append(missing, "key")
	}
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("%w: %s: missing %s", ErrConfig, src, strings.Join(missing, " and "))
	}

	return creds, nil
}

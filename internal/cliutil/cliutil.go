// Package cliutil holds the wiring shared by the relations binaries.
package cliutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/goliatone/go-relations/pkg/config"
	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/store"
	"github.com/goliatone/go-relations/pkg/token"
)

// Meta store kinds accepted by OpenMeta.
const (
	MetaMemory = "memory"
	MetaBolt   = "bolt"
	MetaRedis  = "redis"
)

// SecretEnv is read when no secret flag is given.
const SecretEnv = "RELATIONS_SECRET"

// LoadConfig loads relations from a single config file or from every config
// file in a directory.
func LoadConfig(path string) ([]config.Relation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cliutil: config: %w", err)
	}
	if info.IsDir() {
		return config.LoadFS(os.DirFS(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cliutil: read config: %w", err)
	}
	return config.Load(data, path)
}

// Fixtures is the JSON document seeding the in-memory record store.
type Fixtures struct {
	Records  []record.Record `json:"records"`
	Untitled []string        `json:"untitled,omitempty"`
}

// LoadFixtures reads a fixtures file. An empty path yields an empty store.
func LoadFixtures(path string) (*record.Memory, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return record.NewMemory(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cliutil: read fixtures: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes a fixtures document.
func ParseFixtures(data []byte) (*record.Memory, error) {
	var doc Fixtures
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cliutil: decode fixtures: %w", err)
	}
	for idx, rec := range doc.Records {
		if rec.ID.IsZero() || strings.TrimSpace(rec.Type) == "" {
			return nil, fmt.Errorf("cliutil: fixture %d needs an id and a type", idx)
		}
	}
	return record.NewMemory(
		record.WithRecords(doc.Records...),
		record.WithUntitledTypes(doc.Untitled...),
	), nil
}

// MetaOptions selects and configures a metadata store.
type MetaOptions struct {
	Kind      string
	BoltPath  string
	RedisAddr string
	KeyPrefix string
}

// OpenMeta opens the metadata store named by opts.Kind. The returned closer
// is never nil.
func OpenMeta(opts MetaOptions) (store.MetaStore, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", MetaMemory:
		return store.NewMemory(), nopCloser{}, nil
	case MetaBolt:
		if strings.TrimSpace(opts.BoltPath) == "" {
			return nil, nil, errors.New("cliutil: bolt store needs a path")
		}
		db, err := store.OpenBolt(opts.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case MetaRedis:
		if strings.TrimSpace(opts.RedisAddr) == "" {
			return nil, nil, errors.New("cliutil: redis store needs an address")
		}
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		var redisOpts []store.RedisOption
		if opts.KeyPrefix != "" {
			redisOpts = append(redisOpts, store.WithKeyPrefix(opts.KeyPrefix))
		}
		return store.NewRedis(client, redisOpts...), client, nil
	default:
		return nil, nil, fmt.Errorf("cliutil: unknown meta store %q", opts.Kind)
	}
}

// Signer builds a token signer from secret, falling back to SecretEnv.
func Signer(secret string) (*token.Signer, error) {
	if strings.TrimSpace(secret) == "" {
		secret = os.Getenv(SecretEnv)
	}
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("cliutil: a secret is required (flag or %s)", SecretEnv)
	}
	return token.NewSigner([]byte(secret))
}

// Logger returns a development logger when verbose is set and a production
// logger otherwise.
func Logger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

package library

import (
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Save writes the whole aggregate as one JSON snapshot, fully replacing
// any prior file. Dates serialize as yyyy-MM-dd.
func (l *Library) Save(path string) error {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create data dir")
		}
	}

	data, err := json.MarshalIndent(l.Snapshot(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write snapshot")
	}
	l.log.Info("snapshot saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// Load reads a snapshot back into a fresh aggregate. A missing file is
// not an error: it returns (nil, nil) and the caller starts empty. A
// file that exists but does not decode fails with ErrCorruptData so bad
// state is never silently replaced.
func Load(path string, log *zap.Logger, opts ...Option) (*Library, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read snapshot")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(ErrCorruptData, "decode %s: %v", path, err)
	}
	lib, err := fromSnapshot(snap, log, opts...)
	if err != nil {
		return nil, err
	}
	lib.log.Info("snapshot loaded",
		zap.String("path", path),
		zap.Int("books", len(snap.Books)),
		zap.Int("members", len(snap.Members)),
		zap.Int("loans", len(snap.Loans)))
	return lib, nil
}

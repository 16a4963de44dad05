// Package cache decides whether a generated C file is stale.
//
// An output is rebuilt when it is missing, when its source is newer, or
// when the digest stamped at the last successful build no longer matches.
// The digest is BLAKE2b-256 over the source text and a salt (the config
// fingerprint), so editing vibec.json invalidates every output even though
// no source changed.
package cache

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/hassan/vibelang/internal/logging"
)

// Cache stores build stamps in Dir. A Cache with an empty Dir only compares
// modification times.
type Cache struct {
	Dir  string
	Salt []byte

	log logrus.FieldLogger
}

// New returns a cache keeping its stamps in dir.
func New(dir string, salt []byte, log logrus.FieldLogger) *Cache {
	return &Cache{Dir: dir, Salt: salt, log: logging.OrDiscard(log)}
}

// NeedsUpdate reports whether out must be regenerated from src.
func (c *Cache) NeedsUpdate(src, out string) bool {
	log := c.log.WithField("output", out)

	outInfo, err := os.Stat(out)
	if err != nil {
		log.Debug("output missing")
		return true
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		log.WithError(err).Debug("cannot stat source")
		return true
	}
	if srcInfo.ModTime().After(outInfo.ModTime()) {
		log.Debug("source is newer")
		return true
	}
	if c.Dir == "" {
		return false
	}

	want, err := os.ReadFile(c.stampPath(out))
	if err != nil {
		log.Debug("no build stamp")
		return true
	}
	got, err := c.digest(src)
	if err != nil {
		log.WithError(err).Debug("cannot digest source")
		return true
	}
	if !bytes.Equal(bytes.TrimSpace(want), got) {
		log.Debug("digest changed")
		return true
	}
	return false
}

// Record stamps out as freshly built from src.
func (c *Cache) Record(src, out string) error {
	if c.Dir == "" {
		return nil
	}
	sum, err := c.digest(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return errors.Wrap(err, "creating cache directory")
	}
	if err := os.WriteFile(c.stampPath(out), append(sum, '\n'), 0o644); err != nil {
		return errors.Wrap(err, "writing build stamp")
	}
	return nil
}

// digest returns the hex BLAKE2b-256 of src's contents and the salt.
func (c *Cache) digest(src string) ([]byte, error) {
	text, err := os.ReadFile(src)
	if err != nil {
		return nil, errors.Wrap(err, "reading source")
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	h.Write(text)
	h.Write(c.Salt)
	sum := h.Sum(nil)
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	return out, nil
}

// stampPath names the stamp of one output. Outputs are keyed by absolute
// path, so equal file names in different directories do not collide.
func (c *Cache) stampPath(out string) string {
	if abs, err := filepath.Abs(out); err == nil {
		out = abs
	}
	key := blake2b.Sum256([]byte(out))
	return filepath.Join(c.Dir, hex.EncodeToString(key[:16])+".stamp")
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/depscan/pkg/errors"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey renders "prefix:<sha256 of the JSON-encoded parts>".
func hashKey(prefix string, parts ...any) string {
	encoded, _ := json.Marshal(parts)
	return prefix + ":" + Hash(encoded)
}

// Fingerprint hashes the named files in order. Each file contributes its base
// name and contents; a missing file contributes an "absent" marker instead,
// so adding or deleting a lockfile changes the result. Any other read error
// is returned.
func Fingerprint(files []string) (string, error) {
	h := sha256.New()
	for _, path := range files {
		if err := fingerprintFile(h, path); err != nil {
			return "", errors.Wrap(errors.ErrCodeIO, err, "fingerprint %s", path)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func fingerprintFile(h hash.Hash, path string) error {
	_, _ = io.WriteString(h, filepath.Base(path)+"\x00")
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		_, _ = io.WriteString(h, "absent\x00")
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	_, _ = h.Write([]byte{0})
	return nil
}

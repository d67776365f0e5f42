package fileutils

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/gofrs/flock"
)

// DefaultMode is applied when Ownership.Mode is zero.
const DefaultMode os.FileMode = 0o644

// Ownership describes who owns a written file and its permission bits.
// Owner and Group accept names or numeric IDs; empty leaves the process
// default in place.
type Ownership struct {
	Owner string
	Group string
	Mode  os.FileMode
}

// WriteResult reports what WriteFile did.
type WriteResult struct {
	Path     string
	Changed  bool
	Bytes    int
	Checksum string
}

// Checksum returns the hex encoded SHA-256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// WriteFile replaces path with data and applies own to it. Writers of the same
// path are serialized through an exclusive lock on path + ".lock". The data is
// written to a temporary file in the same directory and renamed into place, so
// readers see either the old or the new file. When the file already holds
// identical data only mode and ownership are applied and Changed is false.
func WriteFile(path string, data []byte, own Ownership) (WriteResult, error) {
	res := WriteResult{Path: path, Bytes: len(data), Checksum: Checksum(data)}

	uid, gid, err := resolveOwnership(own)
	if err != nil {
		return res, err
	}
	mode := own.Mode
	if mode == 0 {
		mode = DefaultMode
	}

	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil {
		return res, fmt.Errorf("config directory %s: %w", dir, err)
	} else if !info.IsDir() {
		return res, fmt.Errorf("config directory %s is not a directory", dir)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return res, fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, data):
		if err := os.Chmod(path, mode); err != nil {
			return res, fmt.Errorf("chmod %s: %w", path, err)
		}
		if err := chown(path, uid, gid); err != nil {
			return res, err
		}
		return res, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return res, fmt.Errorf("read %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return res, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return res, fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		return res, fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return res, fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := chown(tmpName, uid, gid); err != nil {
		return res, err
	}
	if err := tmp.Close(); err != nil {
		return res, fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return res, fmt.Errorf("rename %s to %s: %w", tmpName, path, err)
	}
	renamed = true

	res.Changed = true
	return res, nil
}

func chown(path string, uid, gid int) error {
	if uid == -1 && gid == -1 {
		return nil
	}
	if runtime.GOOS == "windows" {
		return nil
	}
	if err := os.Chown(path, uid, gid); err != nil {
		return fmt.Errorf("chown %s: %w", path, err)
	}
	return nil
}

// resolveOwnership maps owner and group to numeric IDs, -1 meaning unchanged.
func resolveOwnership(own Ownership) (uid, gid int, err error) {
	uid, gid = -1, -1
	if own.Owner != "" {
		if uid, err = strconv.Atoi(own.Owner); err != nil {
			u, lerr := user.Lookup(own.Owner)
			if lerr != nil {
				return -1, -1, fmt.Errorf("unknown owner %q: %w", own.Owner, lerr)
			}
			if uid, err = strconv.Atoi(u.Uid); err != nil {
				return -1, -1, fmt.Errorf("owner %q has non-numeric uid %q", own.Owner, u.Uid)
			}
		}
	}
	if own.Group != "" {
		if gid, err = strconv.Atoi(own.Group); err != nil {
			g, lerr := user.LookupGroup(own.Group)
			if lerr != nil {
				return -1, -1, fmt.Errorf("unknown group %q: %w", own.Group, lerr)
			}
			if gid, err = strconv.Atoi(g.Gid); err != nil {
				return -1, -1, fmt.Errorf("group %q has non-numeric gid %q", own.Group, g.Gid)
			}
		}
	}
	return uid, gid, nil
}

// ParseMode parses an octal permission string such as "0644" or "644".
func ParseMode(s string) (os.FileMode, error) {
	if s == "" {
		return 0, nil
	}
	m, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file mode %q: must be octal", s)
	}
	if m > 0o777 {
		return 0, fmt.Errorf("invalid file mode %q: out of range", s)
	}
	return os.FileMode(m), nil
}

package stagemove

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"vodforge/internal/logging"
	"vodforge/internal/services"
)

const relocateStage = "relocate"

// Mover relocates bundle directories between stage roots.
type Mover struct {
	logger *slog.Logger
}

// New returns a Mover that logs through the provided logger.
func New(logger *slog.Logger) *Mover {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Mover{logger: logger}
}

// Relocate moves the named bundle from one stage root to another and returns
// the destination path. A pre-existing directory of the same name at the
// destination is replaced by the incoming copy. When the source is already
// gone and the destination exists, the relocation is treated as finished by
// a previous run.
func (m *Mover) Relocate(ctx context.Context, bundleName, fromRoot, toRoot string) (string, error) {
	logger := logging.WithContext(ctx, m.logger)
	src := filepath.Join(fromRoot, bundleName)
	dst := filepath.Join(toRoot, bundleName)

	srcInfo, srcErr := os.Stat(src)
	if srcErr != nil {
		if errors.Is(srcErr, fs.ErrNotExist) {
			if _, dstErr := os.Stat(dst); dstErr == nil {
				logger.Info("relocation already finished by previous run",
					logging.String(logging.FieldBundle, bundleName),
					logging.String("to", toRoot))
				return dst, nil
			}
			return "", services.Wrap(services.ErrRelocation, relocateStage, "stat",
				fmt.Sprintf("bundle %s missing from both %s and %s", bundleName, fromRoot, toRoot), nil)
		}
		return "", services.Wrap(services.ErrRelocation, relocateStage, "stat", "stat source", srcErr)
	}
	if !srcInfo.IsDir() {
		return "", services.Wrap(services.ErrRelocation, relocateStage, "stat",
			fmt.Sprintf("bundle path %s is not a directory", src), nil)
	}

	if err := pruneTree(src, dst); err != nil {
		return "", services.Wrap(services.ErrRelocation, relocateStage, "prune",
			fmt.Sprintf("replace stale copy of %s in %s", bundleName, toRoot), err)
	}
	if err := copyTree(ctx, src, dst); err != nil {
		return "", services.Wrap(services.ErrRelocation, relocateStage, "copy",
			fmt.Sprintf("copy %s to %s", bundleName, toRoot), err)
	}
	if err := verifyTree(src, dst); err != nil {
		return "", services.Wrap(services.ErrRelocation, relocateStage, "verify",
			fmt.Sprintf("verify %s in %s", bundleName, toRoot), err)
	}
	if err := os.RemoveAll(src); err != nil {
		return "", services.Wrap(services.ErrRelocation, relocateStage, "cleanup",
			fmt.Sprintf("remove source %s", src), err)
	}

	logger.Info("relocated bundle",
		logging.String(logging.FieldBundle, bundleName),
		logging.String("from", fromRoot),
		logging.String("to", toRoot))
	return dst, nil
}

// pruneTree removes destination entries that no longer exist in the source,
// so re-ingesting a bundle replaces an earlier copy instead of merging with
// it. Entries that still exist stay in place for the resume fast path in
// copyTree.
func pruneTree(src, dst string) error {
	if _, err := os.Stat(dst); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return filepath.WalkDir(dst, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dst, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		srcInfo, statErr := os.Stat(filepath.Join(src, rel))
		if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
			return statErr
		}
		if statErr == nil && srcInfo.IsDir() == d.IsDir() {
			return nil
		}
		if err := os.RemoveAll(path); err != nil {
			return err
		}
		if d.IsDir() {
			return fs.SkipDir
		}
		return nil
	})
}

// copyTree mirrors src into dst. Destination files that already match the
// source size are kept, which lets an interrupted relocation resume instead
// of recopying everything.
func copyTree(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		srcInfo, err := d.Info()
		if err != nil {
			return err
		}
		if dstInfo, statErr := os.Stat(target); statErr == nil && dstInfo.Size() == srcInfo.Size() {
			return nil
		}
		return copyFileVerified(path, target)
	})
}

// verifyTree confirms the destination mirrors the source: every source
// entry exists with a matching size, and nothing else is present.
func verifyTree(src, dst string) error {
	if err := filepath.WalkDir(dst, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dst, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if _, err := os.Stat(filepath.Join(src, rel)); err != nil {
			return fmt.Errorf("unexpected %s at destination: %w", rel, err)
		}
		return nil
	}); err != nil {
		return err
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := os.Stat(target)
		if err != nil {
			return fmt.Errorf("missing %s at destination: %w", rel, err)
		}
		if d.IsDir() {
			if !info.IsDir() {
				return fmt.Errorf("%s is a file at destination, expected directory", rel)
			}
			return nil
		}
		srcInfo, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() != srcInfo.Size() {
			return fmt.Errorf("size mismatch for %s: source %d bytes, destination %d bytes",
				rel, srcInfo.Size(), info.Size())
		}
		return nil
	})
}

// copyFileVerified streams src to dst with SHA256 + size integrity
// verification. Removes dst on mismatch.
func copyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return nil
}

// Package archive implements the ArchivePacker collaborator: packing a
// directory tree into a single file the core can encrypt as an opaque
// byte stream, and restoring that tree on decrypt. The core treats
// this format as a black box; the only contract is that Pack/Unpack
// round-trip a directory tree.
//
// No third-party archive library appears anywhere in the retrieval
// pack, so this is built directly on archive/tar: it is a thin,
// single-purpose format boundary, not a place the module's domain
// stack needed to live.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Pack walks dirPath and writes a tar stream of its contents
// (relative paths, regular files and directories only) to destPath,
// returning destPath. Packing order is the order filepath.Walk visits
// entries in, which is lexical and therefore deterministic for a given
// directory tree.
func Pack(dirPath, destPath string) (string, error) {
	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("archive: pack: create %s: %w", destPath, err)
	}
	defer out.Close()

	tw := tar.NewWriter(out)
	defer tw.Close()

	err = filepath.Walk(dirPath, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(dirPath, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("archive: pack: %w", err)
	}
	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("archive: pack: close tar writer: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("archive: pack: close %s: %w", destPath, err)
	}
	return destPath, nil
}

// Unpack extracts the tar stream at archivePath into destDir, creating
// destDir if it does not exist.
func Unpack(archivePath, destDir string) error {
	in, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("archive: unpack: open %s: %w", archivePath, err)
	}
	defer in.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("archive: unpack: mkdir %s: %w", destDir, err)
	}

	tr := tar.NewReader(in)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("archive: unpack: read header: %w", err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return fmt.Errorf("archive: unpack: %w", err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)|0o700); err != nil {
				return fmt.Errorf("archive: unpack: mkdir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("archive: unpack: mkdir %s: %w", filepath.Dir(target), err)
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode)|0o600)
			if err != nil {
				return fmt.Errorf("archive: unpack: create %s: %w", target, err)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return fmt.Errorf("archive: unpack: write %s: %w", target, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("archive: unpack: close %s: %w", target, err)
			}
		default:
			// Skip symlinks, devices, and other entry types; a
			// directory-encryption archive never legitimately
			// contains them.
		}
	}
	return nil
}

// safeJoin joins destDir and name, rejecting any path that would
// escape destDir (a zip-slip style path in a malicious or corrupted
// archive).
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	if target != destDir && !hasPrefixDir(target, destDir) {
		return "", fmt.Errorf("unsafe archive entry path: %s", name)
	}
	return target, nil
}

func hasPrefixDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !hasDotDotPrefix(rel)
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[0] == '.' && rel[1] == '.' &&
		(len(rel) == 2 || os.IsPathSeparator(rel[2]))
}

package fsservice

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
)

// maxDecompressedEntrySize bounds how many bytes a single ZIP entry may
// expand to, guarding against decompression-bomb archives.
const maxDecompressedEntrySize = 100 << 30

var windowsVolumePrefix = regexp.MustCompile(`^[A-Za-z]:`)

// ZipDirectory walks inputDir, collects regular files matching glob, and
// streams them into a new ZIP at target. Entry names are paths relative
// to inputDir. Returns a human-readable size of the archive produced.
func (s *Service) ZipDirectory(inputDir, glob, target string) (string, error) {
	validatedTarget, err := s.validateWrite(target)
	if err != nil {
		return "", err
	}
	validatedInput, err := s.validate(inputDir)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(validatedTarget); err == nil {
		return "", newError(ErrAlreadyExists, "%s", validatedTarget)
	}

	entries, err := s.SearchFiles(validatedInput, SearchOptions{Pattern: glob})
	if err != nil {
		return "", err
	}

	out, err := os.Create(validatedTarget)
	if err != nil {
		return "", newError(ErrIo, "%v", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}
		rel, err := filepath.Rel(validatedInput, entry.Path)
		if err != nil {
			continue
		}
		if err := addZipEntry(zw, entry.Path, filepath.ToSlash(rel)); err != nil {
			zw.Close()
			return "", newError(ErrIo, "%v", err)
		}
	}
	if err := zw.Close(); err != nil {
		return "", newError(ErrIo, "%v", err)
	}

	info, err := os.Stat(validatedTarget)
	if err != nil {
		return "", newError(ErrIo, "%v", err)
	}
	return humanize.Bytes(uint64(info.Size())), nil
}

// ZipFiles archives the given files (by base name only) into a new ZIP
// at target.
func (s *Service) ZipFiles(files []string, target string) (string, error) {
	if len(files) == 0 {
		return "", newError(ErrNotFound, "no source files given")
	}
	validatedTarget, err := s.validateWrite(target)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(validatedTarget); err == nil {
		return "", newError(ErrAlreadyExists, "%s", validatedTarget)
	}

	validated := make([]string, 0, len(files))
	for _, f := range files {
		vf, err := s.validate(f)
		if err != nil {
			return "", err
		}
		validated = append(validated, vf)
	}

	out, err := os.Create(validatedTarget)
	if err != nil {
		return "", newError(ErrIo, "%v", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, f := range validated {
		if err := addZipEntry(zw, f, filepath.Base(f)); err != nil {
			zw.Close()
			return "", newError(ErrIo, "%v", err)
		}
	}
	if err := zw.Close(); err != nil {
		return "", newError(ErrIo, "%v", err)
	}

	info, err := os.Stat(validatedTarget)
	if err != nil {
		return "", newError(ErrIo, "%v", err)
	}
	return humanize.Bytes(uint64(info.Size())), nil
}

func addZipEntry(zw *zip.Writer, sourcePath, entryName string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.Create(entryName)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// ExtractResult summarizes an UnzipFile call.
type ExtractResult struct {
	ExtractedFiles int
	ExtractedDirs  int
}

// UnzipFile extracts every entry of the ZIP at zipPath into targetDir,
// rejecting entries that would escape targetDir (zip-slip) and capping
// per-entry decompressed size.
func (s *Service) UnzipFile(zipPath, targetDir string) (ExtractResult, error) {
	var result ExtractResult

	validatedTarget, err := s.validateWrite(targetDir)
	if err != nil {
		return result, err
	}
	validatedZip, err := s.validate(zipPath)
	if err != nil {
		return result, err
	}
	if _, err := os.Stat(validatedTarget); err == nil {
		return result, newError(ErrAlreadyExists, "%s", validatedTarget)
	}

	r, err := zip.OpenReader(validatedZip)
	if err != nil {
		return result, newError(ErrIo, "%v", err)
	}
	defer r.Close()

	if err := validateCompressionMethods(r.File); err != nil {
		return result, err
	}

	if err := os.MkdirAll(validatedTarget, 0o755); err != nil {
		return result, newError(ErrIo, "%v", err)
	}

	for _, entry := range r.File {
		targetPath, err := resolveArchiveEntryPath(validatedTarget, entry.Name)
		if err != nil {
			return result, err
		}

		if strings.HasSuffix(entry.Name, "/") {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return result, newError(ErrIo, "%v", err)
			}
			result.ExtractedDirs++
			continue
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return result, newError(ErrIo, "%v", err)
		}
		if err := extractZipEntry(entry, targetPath); err != nil {
			return result, newError(ErrIo, "%v", err)
		}
		result.ExtractedFiles++
	}

	return result, nil
}

func extractZipEntry(entry *zip.File, targetPath string) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(targetPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, io.LimitReader(rc, maxDecompressedEntrySize))
	return err
}

// resolveArchiveEntryPath validates entry.Name as a safe relative path
// (rejecting zip-slip attempts) and joins it onto baseDir.
func resolveArchiveEntryPath(baseDir, entryName string) (string, error) {
	if err := validateArchiveEntryPath(entryName); err != nil {
		return "", err
	}
	normalized := normalizeArchiveEntryPath(entryName)
	return filepath.Join(baseDir, filepath.FromSlash(normalized)), nil
}

func normalizeArchiveEntryPath(entryName string) string {
	return strings.ReplaceAll(filepath.ToSlash(entryName), `\`, "/")
}

// validateArchiveEntryPath rejects absolute paths, Windows drive
// prefixes, NUL bytes, and ".."/"."/empty path segments.
func validateArchiveEntryPath(entryName string) error {
	normalized := normalizeArchiveEntryPath(entryName)
	if normalized == "" {
		return newError(ErrIo, "empty zip entry name")
	}
	if strings.HasPrefix(normalized, "/") || windowsVolumePrefix.MatchString(normalized) {
		return newError(ErrIo, "zip-slip: absolute entry path %q", entryName)
	}
	if strings.ContainsRune(normalized, '\x00') {
		return newError(ErrIo, "zip entry path contains NUL byte")
	}

	trimmed := strings.TrimRight(normalized, "/")
	if trimmed == "" {
		return newError(ErrIo, "empty zip entry name")
	}
	for _, part := range strings.Split(trimmed, "/") {
		switch part {
		case "..":
			return newError(ErrIo, "zip-slip: entry %q contains \"..\"", entryName)
		case "", ".":
			return newError(ErrIo, "zip entry %q contains an invalid path segment", entryName)
		}
	}

	cleaned := path.Clean(trimmed)
	if cleaned == "." || strings.HasPrefix(cleaned, "/") || windowsVolumePrefix.MatchString(cleaned) {
		return newError(ErrIo, "zip entry %q resolves outside the target directory", entryName)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return newError(ErrIo, "zip-slip: entry %q escapes the target directory", entryName)
	}
	return nil
}

// validateCompressionMethods rejects entries using compression methods
// other than Store or Deflate (e.g. Deflate64).
func validateCompressionMethods(entries []*zip.File) error {
	for _, entry := range entries {
		switch entry.Method {
		case zip.Store, zip.Deflate:
			continue
		default:
			return newError(ErrIo, "unsupported zip compression method %d for entry %q: %v", entry.Method, entry.Name, zip.ErrAlgorithm)
		}
	}
	return nil
}

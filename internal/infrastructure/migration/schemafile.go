package migration

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const schemaFileHeader = "-- Schema description file. Tables are appended by the migration generator.\n"

// SchemaFile is the shared schema description file consumed by the external
// migration tool. Each table is a block delimited by marker comments.
type SchemaFile struct {
	fs   afero.Fs
	path string
}

// NewSchemaFile creates a handle for the file at path
func NewSchemaFile(fs afero.Fs, path string) *SchemaFile {
	return &SchemaFile{fs: fs, path: filepath.Clean(path)}
}

// Path returns the live file location
func (f *SchemaFile) Path() string { return f.path }

// BackupPath returns where the pre-migration snapshot is kept
func (f *SchemaFile) BackupPath() string { return f.path + ".backup" }

// Read returns the live content; a missing file reads as empty
func (f *SchemaFile) Read() ([]byte, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}

// DeclaredTables lists the table blocks in file order
func (f *SchemaFile) DeclaredTables() ([]string, error) {
	data, err := f.Read()
	if err != nil {
		return nil, err
	}
	var tables []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if name, ok := strings.CutPrefix(line, blockStartPrefix); ok {
			tables = append(tables, strings.TrimSpace(name))
		}
	}
	return tables, sc.Err()
}

// HasTable reports whether a block for the table exists
func (f *SchemaFile) HasTable(name string) (bool, error) {
	tables, err := f.DeclaredTables()
	if err != nil {
		return false, err
	}
	for _, t := range tables {
		if t == name {
			return true, nil
		}
	}
	return false, nil
}

// Backup snapshots the live file. It reports whether the live file existed;
// when it did not, any stale snapshot is removed.
func (f *SchemaFile) Backup() (bool, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if os.IsNotExist(err) {
		if rmErr := f.RemoveBackup(); rmErr != nil {
			return false, rmErr
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read schema file: %w", err)
	}
	if err := f.write(f.BackupPath(), data); err != nil {
		return false, fmt.Errorf("write schema backup: %w", err)
	}
	return true, nil
}

// Restore puts the snapshot back in place. When the live file did not exist
// before the attempt it is removed instead.
func (f *SchemaFile) Restore(existed bool) error {
	if !existed {
		if err := f.fs.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove schema file: %w", err)
		}
		return nil
	}
	data, err := afero.ReadFile(f.fs, f.BackupPath())
	if err != nil {
		return fmt.Errorf("read schema backup: %w", err)
	}
	return f.write(f.path, data)
}

// RemoveBackup deletes the snapshot if present
func (f *SchemaFile) RemoveBackup() error {
	if err := f.fs.Remove(f.BackupPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove schema backup: %w", err)
	}
	return nil
}

// RecoverBackup restores a snapshot left behind by an interrupted migration.
// It reports whether a snapshot was found.
func (f *SchemaFile) RecoverBackup() (bool, error) {
	exists, err := afero.Exists(f.fs, f.BackupPath())
	if err != nil || !exists {
		return false, err
	}
	if err := f.Restore(true); err != nil {
		return false, err
	}
	return true, f.RemoveBackup()
}

// Append adds a table block at the end of the file
func (f *SchemaFile) Append(fragment string) error {
	data, err := f.Read()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if len(data) == 0 {
		buf.WriteString(schemaFileHeader)
	} else {
		buf.Write(data)
		if !bytes.HasSuffix(data, []byte("\n")) {
			buf.WriteByte('\n')
		}
	}
	buf.WriteByte('\n')
	buf.WriteString(fragment)
	return f.write(f.path, buf.Bytes())
}

// ReplaceBlock swaps an existing table block for a new rendering
func (f *SchemaFile) ReplaceBlock(name, fragment string) error {
	data, err := f.Read()
	if err != nil {
		return err
	}
	content := string(data)
	start := strings.Index(content, blockStartPrefix+name+"\n")
	if start < 0 {
		return fmt.Errorf("table %s is not declared in %s", name, f.path)
	}
	endMarker := blockEndPrefix + name + "\n"
	end := strings.Index(content[start:], endMarker)
	if end < 0 {
		return fmt.Errorf("table %s block in %s is not terminated", name, f.path)
	}
	end += start + len(endMarker)

	return f.write(f.path, []byte(content[:start]+fragment+content[end:]))
}

// write replaces a file through a temporary sibling and a rename
func (f *SchemaFile) write(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0o644); err != nil {
		return err
	}
	return f.fs.Rename(tmp, path)
}

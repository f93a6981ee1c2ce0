// Package script discovers and loads versioned SQL migration files.
package script

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Kind distinguishes forward migration scripts from rollback scripts.
type Kind int

// Script kinds, keyed off the filename prefix.
const (
	KindForward  Kind = iota // V<digits>__<description>.sql
	KindRollback             // R<digits>__<description>.sql
)

// Script is a single migration or rollback file loaded from the script
// directory.
type Script struct {
	Version  string // digits from the filename, e.g. "2"
	Filename string // base name, e.g. "V2__add_email_column.sql"
	SQL      string // raw file contents
	Kind     Kind
	Checksum string // SHA-256 hex digest of SQL
}

// Rank returns the numeric ordering value of the script's version.
// Filenames are validated against a digits-only grammar at discovery time,
// so parsing cannot fail for repository-produced scripts.
func (s *Script) Rank() int {
	n, _ := strconv.Atoi(s.Version)

	return n
}

// Description returns the human-readable part of the filename: the text
// between the first "__" and the extension, e.g. "add_email_column".
func (s *Script) Description() string {
	name := s.Filename

	start := strings.Index(name, "__")
	if start < 0 {
		return ""
	}

	end := strings.LastIndex(name, ".")
	if end < start+2 {
		return ""
	}

	return name[start+2 : end]
}

// ComputeChecksum returns the SHA-256 hex digest of the given SQL text.
// The digest is persisted with each applied migration for drift detection.
func ComputeChecksum(sql string) string {
	h := sha256.Sum256([]byte(sql))

	return hex.EncodeToString(h[:])
}

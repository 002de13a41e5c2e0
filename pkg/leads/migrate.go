package leads

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/buger/jsonparser"
	"github.com/grovetools/core/logging"
	"github.com/sirupsen/logrus"
)

// Result summarises one pass over the leads array.
type Result struct {
	Leads   int // entries in the array
	Records int // entries that are objects
	Changes int // one per rule application
}

// Migrate applies rules to every object entry of doc.Leads, in order.
// Other entries are kept as they are and at the same index.
func Migrate(doc *Document, rules []Rule) (Result, error) {
	res := Result{Leads: len(doc.Leads)}
	out := make([]json.RawMessage, 0, len(doc.Leads))

	for i, entry := range doc.Leads {
		if kindOf(entry) != jsonparser.Object {
			out = append(out, entry)
			continue
		}
		res.Records++

		rec, err := DecodeRecord(entry)
		if err != nil {
			return Result{}, fmt.Errorf("failed to decode lead %d: %w", i, err)
		}

		changed := 0
		for _, rule := range rules {
			if rule.Apply(rec) {
				changed++
			}
		}
		if changed == 0 {
			out = append(out, entry)
			continue
		}

		encoded, err := rec.MarshalJSON()
		if err != nil {
			return Result{}, fmt.Errorf("failed to encode lead %d: %w", i, err)
		}
		res.Changes += changed
		out = append(out, encoded)
	}

	doc.Leads = out
	return res, nil
}

// Store is the file access the migrator needs.
type Store interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, content []byte) error
	IsDryRun() bool
}

// Outcome describes what a migration run did to the fixture file.
type Outcome struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Changes int    `json:"changes"`
	Written bool   `json:"written"`
	DryRun  bool   `json:"dry_run"`
}

// UpToDate reports whether no field needed changing.
func (o *Outcome) UpToDate() bool {
	return o.Changes == 0
}

// Migrator runs the read, migrate, write cycle against a Store.
type Migrator struct {
	store  Store
	rules  []Rule
	logger *logrus.Entry
}

// NewMigrator creates a migrator. A nil or empty rule set means DefaultRules.
func NewMigrator(store Store, rules []Rule) *Migrator {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Migrator{
		store:  store,
		rules:  rules,
		logger: logging.NewLogger("leads"),
	}
}

// Rules returns the rules in the order they are applied.
func (m *Migrator) Rules() []Rule {
	return m.rules
}

// Run migrates the fixture at path. The file is rewritten in full only when
// at least one field changed and the store is not in dry-run mode.
func (m *Migrator) Run(path string) (*Outcome, error) {
	name := filepath.Base(path)
	outcome := &Outcome{Path: path, Name: name, DryRun: m.store.IsDryRun()}

	data, err := m.store.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Name: name, Path: path}
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := Decode(name, data)
	if err != nil {
		return nil, err
	}

	res, err := Migrate(doc, m.rules)
	if err != nil {
		return nil, err
	}
	outcome.Changes = res.Changes

	m.logger.WithFields(logrus.Fields{
		"path":    path,
		"leads":   res.Leads,
		"records": res.Records,
		"changes": res.Changes,
	}).Debug("Migrated leads")

	if res.Changes == 0 {
		return outcome, nil
	}

	encoded, err := doc.Encode()
	if err != nil {
		return nil, err
	}
	if err := m.store.WriteFile(path, encoded); err != nil {
		return nil, err
	}
	outcome.Written = !outcome.DryRun
	return outcome, nil
}

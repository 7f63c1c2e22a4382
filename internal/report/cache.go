package report

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yeoyun/SpendingAnalysis/internal/analysis"
)

// DefaultCacheDir is where generated reports are kept between runs.
const DefaultCacheDir = "ai_cache"

// cacheKeyVersion invalidates every cached key when the report schema or the
// summary shape changes.
const cacheKeyVersion = "v1"

// Cache is a per-mode file cache of generated reports. Identical inputs map
// to the same key, so regenerating a report for unchanged data is a cache
// hit instead of a model call.
type Cache struct {
	dir string
}

// Entry is the persisted envelope around one generated report.
type Entry struct {
	SavedAt string           `json:"saved_at"`
	Key     string           `json:"key"`
	Mode    Mode             `json:"mode"`
	Result  Report           `json:"result"`
	Summary analysis.Summary `json:"summary"`
}

func NewCache(dir string) *Cache {
	if dir == "" {
		dir = DefaultCacheDir
	}
	return &Cache{dir: dir}
}

// Key derives the cache key from everything that can change the output:
// schema version, model name, parameters and the summary itself. The payload
// is canonicalized (sorted keys, compact separators) before hashing so field
// order can never split the cache.
func Key(summary analysis.Summary, params analysis.Params, model string) (string, error) {
	payload := map[string]any{
		"version": cacheKeyVersion,
		"model":   model,
		"params":  params,
		"summary": summary,
	}
	canonical, err := canonicalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("canonicalize cache key payload: %w", err)
	}
	sum := md5.Sum(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON round-trips v through a generic value so that map keys,
// including those of structs, come out sorted.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}

func (c *Cache) modeDir(mode Mode) string {
	return filepath.Join(c.dir, string(mode))
}

func (c *Cache) entryPath(mode Mode, key string) string {
	return filepath.Join(c.modeDir(mode), "report_"+key+".json")
}

// Save writes the entry under its mode directory. The write goes to a temp
// file first and is renamed into place so readers never observe a torn file.
func (c *Cache) Save(mode Mode, key string, result Report, summary analysis.Summary) (string, error) {
	dir := c.modeDir(mode)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	entry := Entry{
		SavedAt: time.Now().Format(time.RFC3339),
		Key:     key,
		Mode:    mode,
		Result:  result,
		Summary: summary,
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal cache entry: %w", err)
	}

	path := c.entryPath(mode, key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("publish cache entry: %w", err)
	}
	return path, nil
}

// Load returns the entry for a key, or ok=false when it is absent or
// unreadable. A corrupt file counts as a miss, not an error.
func (c *Cache) Load(mode Mode, key string) (Entry, bool) {
	data, err := os.ReadFile(c.entryPath(mode, key))
	if err != nil {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false
	}
	if len(entry.Result.ThreeLines) == 0 {
		return Entry{}, false
	}
	return entry, true
}

// LoadLatest returns the most recently saved entry for a mode.
func (c *Cache) LoadLatest(mode Mode) (Entry, bool) {
	dir := c.modeDir(mode)
	names, err := os.ReadDir(dir)
	if err != nil {
		return Entry{}, false
	}

	type candidate struct {
		name string
		mod  time.Time
	}
	var files []candidate
	for _, de := range names {
		if de.IsDir() || !strings.HasPrefix(de.Name(), "report_") || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		files = append(files, candidate{name: de.Name(), mod: info.ModTime()})
	}
	if len(files) == 0 {
		return Entry{}, false
	}
	sort.Slice(files, func(i, j int) bool {
		if !files[i].mod.Equal(files[j].mod) {
			return files[i].mod.After(files[j].mod)
		}
		return files[i].name > files[j].name
	})

	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if len(entry.Result.ThreeLines) == 0 {
			continue
		}
		return entry, true
	}
	return Entry{}, false
}

// Package config defines the JSON-serializable configuration model for the
// ETL application. Pipelines can be loaded from disk or built in code and are
// passed through the program without additional glue code.
//
// Example (trimmed):
//
//	{
//	  "job":    "bank_marketing",
//	  "source": { "kind": "zip", "zip": { "dir": "files/input", "pattern": "bank-marketing-campaing-%d.csv.zip", "count": 10 } },
//	  "parser": { "kind": "csv", "options": { "comma": "," } },
//	  "tables": [
//	    { "name": "client", "file": "client.csv", "select": ["client_id", "job"],
//	      "transform": [ { "kind": "replace", "options": { "field": "job", "old": ".", "new": "" } } ],
//	      "contract": { "name": "client", "fields": [ { "name": "client_id", "type": "int" }, { "name": "job", "type": "text" } ] } }
//	  ],
//	  "output":  { "dir": "files/output" },
//	  "storage": { "kind": "sqlite", "db": { "dsn": "file:campaign.db", "auto_create_table": true } }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"bankmarketing/internal/schema"
)

// Pipeline describes the full ETL pipeline. It is the top-level object
// decoded from a pipeline file.
type Pipeline struct {
	// Job names the run for logs and metrics.
	Job string `json:"job"`

	// Source describes where input data comes from.
	Source Source `json:"source"`

	// Parser configures how raw bytes are turned into tables.
	Parser Parser `json:"parser"`

	// Tables lists the output tables derived from the unified input, in
	// emission order.
	Tables []Table `json:"tables"`

	// Output is where the derived tables are written as CSV.
	Output Output `json:"output"`

	// Storage optionally loads the derived tables into a database. An empty
	// Kind disables it.
	Storage Storage       `json:"storage"`
	Runtime RuntimeConfig `json:"runtime"`
}

// RuntimeConfig controls database loading.
type RuntimeConfig struct {
	LoaderWorkers int `json:"loader_workers"`
	BatchSize     int `json:"batch_size"`
}

// Source identifies the data source.
type Source struct {
	// Kind selects the source implementation: "zip" or "file".
	Kind string `json:"kind"`

	// Zip carries options for the "zip" source kind.
	Zip SourceZip `json:"zip"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`
}

// SourceZip describes a numbered set of single-entry zip archives.
type SourceZip struct {
	// Dir is the directory holding the archives.
	Dir string `json:"dir"`

	// Pattern is the archive file name with one %d verb for the zero-based
	// index, e.g. "bank-marketing-campaing-%d.csv.zip".
	Pattern string `json:"pattern"`

	// Count is the number of archives expected (indexes 0..Count-1).
	Count int `json:"count"`
}

// SourceFile holds configuration for the "file" source kind (plain CSV
// files, read in order).
type SourceFile struct {
	Path  string   `json:"path"`
	Paths []string `json:"paths"`
}

// Parser selects how to parse the raw source into tables.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind"`

	// Options is interpreted by the parser: comma (string), trim_space
	// (bool), lazy_quotes (bool), header_map (object).
	Options Options `json:"options"`
}

// Table describes one derived output table.
type Table struct {
	// Name identifies the table in logs, metrics and database sinks.
	Name string `json:"name"`

	// File is the CSV file name inside Output.Dir.
	File string `json:"file"`

	// Select lists the unified-table columns the projection starts from.
	Select []string `json:"select"`

	// Transform lists the ordered column rules applied to the selection.
	Transform []Transform `json:"transform"`

	// Contract gives the output columns, in order, with their types.
	Contract schema.Contract `json:"contract"`
}

// Transform defines a single transformation step.
type Transform struct {
	// Kind selects the transform implementation ("replace", "null_if",
	// "binary", "contact_date"). Implementations define their own options.
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the selected transform.
	Options Options `json:"options"`
}

// Output configures CSV emission.
type Output struct {
	// Dir is created when absent.
	Dir string `json:"dir"`
}

// Storage selects the optional database sink.
type Storage struct {
	// Kind selects the storage implementation: "postgres", "mssql", "mysql",
	// "sqlite", or "" for none.
	Kind string `json:"kind"`

	DB DBConfig `json:"db"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	// DSN is the backend connection string.
	DSN string `json:"dsn"`

	// TablePrefix is prepended to each Table.Name to form the destination
	// table, e.g. "public.bank_" -> "public.bank_client".
	TablePrefix string `json:"table_prefix"`

	// AutoCreateTable creates destination tables from their contracts.
	AutoCreateTable bool `json:"auto_create_table"`

	// Mode is "replace" (default; existing rows are deleted before the
	// load) or "append".
	Mode string `json:"mode"`
}

// Load modes.
const (
	ModeReplace = "replace"
	ModeAppend  = "append"
)

// LoadMode returns Mode with the default applied.
func (c DBConfig) LoadMode() string {
	if c.Mode == "" {
		return ModeReplace
	}
	return c.Mode
}

// Load reads and decodes a pipeline file.
func Load(path string) (Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var p Pipeline
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return p, nil
}

// Options is a small helper to fetch typed values from arbitrary JSON maps.
// It performs only minimal type coercion and returns provided defaults when
// a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// so both float64 and int are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object.
// Non-string values are ignored.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		switch m := v.(type) {
		case map[string]any:
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		case map[string]string:
			for k, s := range m {
				res[k] = s
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of
// strings. Returns nil when the key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Has reports whether key is present.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// UnmarshalJSON decodes a missing or null "options" object to a non-nil,
// empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}

// Package export renders a transform run's record sets as CSV, JSON and XLSX
// artifacts and stores them, with a manifest, in an artifact store.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"arcflow/internal/blob"
	"arcflow/internal/pipeline"
	"arcflow/internal/produce"
)

// Format identifies an artifact encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for format names other than csv, json and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// DefaultFormats is used when New receives no formats.
func DefaultFormats() []Format { return []Format{FormatCSV, FormatJSON, FormatXLSX} }

// ParseFormat resolves a format name case-insensitively.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
}

// ParseFormats parses a list of names, dropping duplicates.
func ParseFormats(raw []string) ([]Format, error) {
	out := make([]Format, 0, len(raw))
	seen := make(map[Format]struct{}, len(raw))
	for _, name := range raw {
		f, err := ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out, nil
}

func (f Format) contentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

// Artifact describes one stored record set rendering.
type Artifact struct {
	Type        produce.Kind `json:"type"`
	Format      Format       `json:"format"`
	Key         string       `json:"key"`
	ContentType string       `json:"content_type"`
	SizeBytes   int64        `json:"size_bytes"`
	Records     int          `json:"records"`
	URL         string       `json:"url,omitempty"`
}

// Manifest lists every artifact of a run. It is stored last, at ManifestKey.
type Manifest struct {
	RunID     string           `json:"run_id"`
	CreatedAt time.Time        `json:"created_at"`
	Summary   pipeline.Summary `json:"summary"`
	Warnings  []string         `json:"warnings,omitempty"`
	Artifacts []Artifact       `json:"artifacts"`
}

// RunPrefix returns the key prefix shared by a run's artifacts.
func RunPrefix(runID string) string { return "runs/" + runID + "/" }

// ArtifactKey returns the key of one record set rendering.
func ArtifactKey(runID string, kind produce.Kind, format Format) string {
	return RunPrefix(runID) + string(kind) + "." + string(format)
}

// ManifestKey returns the key of a run's manifest.
func ManifestKey(runID string) string { return RunPrefix(runID) + "manifest.json" }

// Exporter writes run artifacts to a store.
type Exporter struct {
	store   blob.Store
	formats []Format
	now     func() time.Time
}

// New returns an exporter writing the given formats (all three when none).
func New(store blob.Store, formats ...Format) (*Exporter, error) {
	if store == nil {
		return nil, errors.New("export: artifact store required")
	}
	if len(formats) == 0 {
		formats = DefaultFormats()
	}
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	parsed, err := ParseFormats(names)
	if err != nil {
		return nil, err
	}
	return &Exporter{store: store, formats: parsed, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Formats returns the configured formats.
func (e *Exporter) Formats() []Format { return append([]Format(nil), e.formats...) }

// Export stores every record set of out in every configured format, then the
// manifest. An aborted run is rejected. Artifacts already written are left in
// place when a later write fails.
func (e *Exporter) Export(ctx context.Context, runID string, out pipeline.Output) (Manifest, error) {
	if strings.TrimSpace(runID) == "" || strings.Contains(runID, "/") {
		return Manifest{}, fmt.Errorf("export: invalid run id %q", runID)
	}
	if out.Failed() {
		return Manifest{}, fmt.Errorf("export run %s: %w", runID, out.Err())
	}
	manifest := Manifest{
		RunID:     runID,
		CreatedAt: e.now(),
		Summary:   out.Summary(),
		Warnings:  append([]string(nil), out.Warnings...),
	}
	for _, table := range produce.Tables(out) {
		for _, format := range e.formats {
			if err := ctx.Err(); err != nil {
				return Manifest{}, err
			}
			payload, err := materialize(format, table)
			if err != nil {
				return Manifest{}, fmt.Errorf("render %s as %s: %w", table.Kind, format, err)
			}
			artifact, err := e.put(ctx, ArtifactKey(runID, table.Kind, format), payload, format.contentType(), map[string]string{
				"run_id":  runID,
				"type":    string(table.Kind),
				"records": fmt.Sprint(table.Len()),
			})
			if err != nil {
				return Manifest{}, err
			}
			artifact.Type = table.Kind
			artifact.Format = format
			artifact.Records = table.Len()
			manifest.Artifacts = append(manifest.Artifacts, artifact)
		}
	}
	body, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return Manifest{}, fmt.Errorf("marshal manifest: %w", err)
	}
	if _, err := e.put(ctx, ManifestKey(runID), body, FormatJSON.contentType(), map[string]string{"run_id": runID}); err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}

// ReadManifest loads a previously exported manifest.
func ReadManifest(ctx context.Context, store blob.Store, runID string) (Manifest, error) {
	_, rc, err := store.Get(ctx, ManifestKey(runID))
	if err != nil {
		return Manifest{}, err
	}
	defer func() { _ = rc.Close() }()
	var m Manifest
	if err := json.NewDecoder(rc).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %s: %w", runID, err)
	}
	return m, nil
}

func (e *Exporter) put(ctx context.Context, key string, payload []byte, contentType string, md map[string]string) (Artifact, error) {
	info, err := e.store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{ContentType: contentType, Metadata: md})
	if err != nil {
		return Artifact{}, fmt.Errorf("store %s: %w", key, err)
	}
	url := info.URL
	signed, err := e.store.PresignURL(ctx, key, blob.SignedURLOptions{})
	switch {
	case err == nil:
		url = signed
	case !errors.Is(err, blob.ErrUnsupported):
		return Artifact{}, fmt.Errorf("sign %s: %w", key, err)
	}
	size := info.Size
	if size == 0 {
		size = int64(len(payload))
	}
	return Artifact{Key: key, ContentType: contentType, SizeBytes: size, URL: url}, nil
}

func materialize(format Format, table produce.Table) ([]byte, error) {
	switch format {
	case FormatCSV:
		return renderCSV(table)
	case FormatJSON:
		return json.MarshalIndent(table.Records(), "", "  ")
	case FormatXLSX:
		return renderXLSX(table)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func renderCSV(table produce.Table) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(table.Headers); err != nil {
		return nil, err
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderXLSX writes one sheet named after the record set. Cells are strings,
// matching the CSV rendering.
func renderXLSX(table produce.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := SheetName(table.Kind)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := writeRow(f, sheet, 1, table.Headers); err != nil {
		return nil, err
	}
	for i, row := range table.Rows {
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

// SheetName returns the worksheet title used for a record set.
func SheetName(kind produce.Kind) string {
	name := string(kind)
	if name == "" {
		return "Sheet1"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

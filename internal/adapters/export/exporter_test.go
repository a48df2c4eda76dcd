package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"arcflow/internal/blob"
	"arcflow/internal/pipeline"
	"arcflow/internal/produce"
	"arcflow/pkg/domain"
)

const scheme = "BN-10INMUM-NSLN-SP"

func sampleOutput() pipeline.Output {
	return pipeline.Transform(pipeline.Input{
		Schemes: []domain.Scheme{{Code: scheme, GenusCode: "MUM"}},
		Lines:   []domain.SchemeLine{{SchemeCode: scheme, LineNo: 10000, Phase: "GROW", Duration: 6, QtyPerArea: 4}},
		Preferences: []domain.Preference{
			{ProductionItemNo: "4000084", VariantCode: "B01", LocationCode: "KY01", SchemeCode: scheme},
		},
	})
}

func readArtifact(t *testing.T, store blob.Store, key string) []byte {
	t.Helper()
	_, rc, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	return body
}

func TestParseFormats(t *testing.T) {
	formats, err := ParseFormats([]string{"CSV", " json", "csv"})
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatCSV, FormatJSON}, formats)

	_, err = ParseFormats([]string{"parquet"})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = New(blob.NewMemory(), Format("html"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	_, err = New(nil)
	assert.Error(t, err)

	exp, err := New(blob.NewMemory())
	require.NoError(t, err)
	assert.Equal(t, DefaultFormats(), exp.Formats())
}

func TestExport_WritesArtifactsAndManifest(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	exp, err := New(store, FormatCSV, FormatJSON)
	require.NoError(t, err)
	exp.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

	manifest, err := exp.Export(ctx, "run-1", sampleOutput())
	require.NoError(t, err)
	assert.Equal(t, "run-1", manifest.RunID)
	assert.Equal(t, 1, manifest.Summary.Recipes)
	require.Len(t, manifest.Artifacts, len(produce.Kinds())*2)
	assert.Equal(t, "runs/run-1/catalogs.csv", manifest.Artifacts[0].Key)
	assert.Equal(t, "runs/run-1/catalogs.json", manifest.Artifacts[1].Key)
	assert.Equal(t, produce.Mixes, manifest.Artifacts[len(manifest.Artifacts)-1].Type)
	assert.Equal(t, 0, manifest.Artifacts[len(manifest.Artifacts)-1].Records)

	rows, err := csv.NewReader(bytes.NewReader(readArtifact(t, store, "runs/run-1/recipes.csv"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, produce.Headers(produce.Recipes), rows[0])
	assert.Equal(t, "KY01", rows[1][1])
	assert.Equal(t, scheme, rows[1][3])

	var specs []map[string]string
	require.NoError(t, json.Unmarshal(readArtifact(t, store, "runs/run-1/specs.json"), &specs))
	require.Len(t, specs, 1)
	assert.Equal(t, "2", specs[0][produce.ColSpaceWidth])

	stored, err := ReadManifest(ctx, store, "run-1")
	require.NoError(t, err)
	assert.Equal(t, manifest.Artifacts, stored.Artifacts)
	assert.True(t, stored.CreatedAt.Equal(manifest.CreatedAt))

	list, err := store.List(ctx, RunPrefix("run-1"))
	require.NoError(t, err)
	assert.Len(t, list, len(manifest.Artifacts)+1)
}

func TestExport_XLSXSheet(t *testing.T) {
	store := blob.NewMemory()
	exp, err := New(store, FormatXLSX)
	require.NoError(t, err)
	_, err = exp.Export(context.Background(), "run-x", sampleOutput())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(readArtifact(t, store, "runs/run-x/events.xlsx")))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Events"}, f.GetSheetList())
	rows, err := f.GetRows("Events")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, produce.ColID, rows[0][0])
	assert.Equal(t, "GROW", rows[1][2])
}

func TestExport_FilesystemURLs(t *testing.T) {
	store, err := blob.NewFilesystem(t.TempDir())
	require.NoError(t, err)
	exp, err := New(store, FormatCSV)
	require.NoError(t, err)
	manifest, err := exp.Export(context.Background(), "run-fs", sampleOutput())
	require.NoError(t, err)
	for _, a := range manifest.Artifacts {
		assert.True(t, strings.HasPrefix(a.URL, "file://"), a.URL)
		assert.Greater(t, a.SizeBytes, int64(0))
	}
}

func TestExport_Rejections(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	exp, err := New(store, FormatJSON)
	require.NoError(t, err)

	_, err = exp.Export(ctx, "", sampleOutput())
	assert.Error(t, err)
	_, err = exp.Export(ctx, "a/b", sampleOutput())
	assert.Error(t, err)

	failed := pipeline.Transform(pipeline.Input{})
	_, err = exp.Export(ctx, "run-f", failed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrMissingSchemes))

	_, err = exp.Export(ctx, "run-d", sampleOutput())
	require.NoError(t, err)
	_, err = exp.Export(ctx, "run-d", sampleOutput())
	assert.True(t, errors.Is(err, blob.ErrExists))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = exp.Export(cancelled, "run-c", sampleOutput())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Recipes", SheetName(produce.Recipes))
	assert.Equal(t, "Sheet1", SheetName(""))
}

package nfo

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shortplay-scraper/app/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Write(dir, source.Record{Title: "X", Plot: "Y"}))
	assert.True(t, Exists(dir))

	doc, err := Read(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, "X", doc.Title)
	assert.Equal(t, "Y", doc.Plot)
}

func TestEncode_Format(t *testing.T) {
	b, err := Encode(source.Record{Title: "重生 & 逆袭", Plot: "a <b> c"})
	require.NoError(t, err)

	s := string(b)
	assert.True(t, strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+"\n<movie>"))
	assert.Contains(t, s, "<title>重生 &amp; 逆袭</title>")
	assert.Contains(t, s, "<plot><![CDATA[a <b> c]]></plot>")
	assert.NotContains(t, s, "poster")
}

func TestEncode_EmptyPlotKeepsElement(t *testing.T) {
	b, err := Encode(source.Record{Title: "X"})
	require.NoError(t, err)
	assert.Contains(t, string(b), "<plot></plot>")

	dir := t.TempDir()
	require.NoError(t, Write(dir, source.Record{Title: "X"}))
	doc, err := Read(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, "", doc.Plot)
}

func TestWrite_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, source.Record{Title: "X"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}

func TestWrite_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")

	err := Write(dir, source.Record{Title: "X"})
	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, filepath.Join(dir, FileName), we.Path)
}

func TestWrite_EmptyTitle(t *testing.T) {
	err := Write(t.TempDir(), source.Record{Plot: "p"})
	assert.Error(t, err)
}

func TestRead_NotExist(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), FileName))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestWriteRead_KeepsSurroundingWhitespace(t *testing.T) {
	dir := t.TempDir()
	rec := source.Record{Title: " 短剧 ", Plot: "  line1\n  line2  "}

	require.NoError(t, Write(dir, rec))
	doc, err := Read(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, rec.Title, doc.Title)
	assert.Equal(t, rec.Plot, doc.Plot)
}

package fileupload

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type part struct {
	field    string
	filename string
	mime     string
	content  []byte
}

func parseForm(t *testing.T, values map[string]string, parts ...part) *multipart.Form {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range values {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.field, p.filename))
		if p.mime != "" {
			h.Set("Content-Type", p.mime)
		}
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form
}

func TestReceiveMaterializesRegisteredTempFiles(t *testing.T) {
	tmpDir := t.TempDir()
	rc := &Receiver{TempDir: tmpDir}
	reg := NewRegistry()

	form := parseForm(t, nil,
		part{field: "photos", filename: "cat.jpg", mime: "image/jpeg", content: []byte("meow")},
		part{field: "photos", filename: "dog.png", mime: "image/png", content: []byte("woof")},
	)

	records := rc.Receive(form, reg)
	require.Len(t, records["photos"], 2)

	cat := records["photos"][0]
	assert.Equal(t, CodeOK, cat.Error)
	assert.Equal(t, "cat.jpg", cat.Name)
	assert.Equal(t, "image/jpeg", cat.Type)
	assert.EqualValues(t, 4, cat.Size)
	assert.Equal(t, tmpDir, filepath.Dir(cat.TempPath))
	assert.True(t, reg.IsUploaded(cat.TempPath))

	data, err := os.ReadFile(cat.TempPath)
	require.NoError(t, err)
	assert.Equal(t, "meow", string(data))
	assert.Equal(t, 2, reg.Len())
}

func TestReceiveErrorCodes(t *testing.T) {
	cases := []struct {
		name   string
		rc     Receiver
		values map[string]string
		part   part
		want   ErrorCode
	}{
		{
			name: "blocked extension",
			rc:   Receiver{BlockedExtensions: []string{".php", "exe"}},
			part: part{field: "file", filename: "shell.PHP", content: []byte("<?php")},
			want: CodeExtension,
		},
		{
			name: "server limit",
			rc:   Receiver{MaxFileSize: 3},
			part: part{field: "file", filename: "big.jpg", content: []byte("12345")},
			want: CodeIniSize,
		},
		{
			name:   "form limit",
			rc:     Receiver{MaxFileSize: 100},
			values: map[string]string{FormSizeField: "2"},
			part:   part{field: "file", filename: "big.jpg", content: []byte("12345")},
			want:   CodeFormSize,
		},
		{
			name: "missing temp dir",
			rc:   Receiver{TempDir: "/definitely/not/here"},
			part: part{field: "file", filename: "cat.jpg", content: []byte("x")},
			want: CodeNoTmpDir,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.rc.TempDir == "" {
				tc.rc.TempDir = t.TempDir()
			}
			reg := NewRegistry()
			records := tc.rc.Receive(parseForm(t, tc.values, tc.part), reg)

			require.Len(t, records["file"], 1)
			rec := records["file"][0]
			assert.Equal(t, tc.want, rec.Error)
			assert.Empty(t, rec.TempPath)
			assert.Equal(t, 0, reg.Len())
		})
	}
}

func TestReceiveMissingExpectedField(t *testing.T) {
	rc := &Receiver{TempDir: t.TempDir(), Fields: []string{"avatar"}}
	records := rc.Receive(parseForm(t, map[string]string{"title": "hi"}), NewRegistry())

	require.Len(t, records["avatar"], 1)
	assert.Equal(t, CodeNoFile, records["avatar"][0].Error)

	files, err := WrapFields(records, NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, "No file was uploaded.", files["avatar"][0].ErrorMessage())
}

func TestReceiveWrapSaveAndCleanup(t *testing.T) {
	rc := &Receiver{TempDir: t.TempDir()}
	reg := NewRegistry()
	form := parseForm(t, nil,
		part{field: "keep", filename: "cat.jpg", mime: "image/jpeg", content: []byte("meow")},
		part{field: "drop", filename: "notes.txt", mime: "text/plain", content: []byte("todo")},
	)

	files, err := WrapFields(rc.Receive(form, reg), reg)
	require.NoError(t, err)

	keep := files["keep"][0]
	drop := files["drop"][0]
	require.True(t, keep.IsImage())
	require.False(t, drop.IsImage())

	dest := t.TempDir()
	name, err := keep.Save(dest)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, name))

	require.NoError(t, reg.Cleanup())
	assert.NoFileExists(t, drop.TempPath())
	assert.Equal(t, 0, reg.Len())
	assert.FileExists(t, filepath.Join(dest, name))
}

func TestWrapAll(t *testing.T) {
	reg := NewRegistry()
	files, err := WrapAll(map[string]Record{
		"a": {Name: "a.mp4", Type: "video/mp4", TempPath: "/tmp/upload-a"},
		"b": {Error: CodePartial},
	}, reg)
	require.NoError(t, err)
	assert.True(t, files["a"].IsVideo())
	assert.True(t, files["b"].HasError())

	_, err = WrapAll(map[string]Record{"broken": {Name: "x.jpg"}}, reg)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), `"broken"`)
}

func TestPurgeStale(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := filepath.Join(dir, "uploadkit-old")
	fresh := filepath.Join(dir, "uploadkit-fresh")
	other := filepath.Join(dir, "keep.txt")
	foreign := filepath.Join(dir, "upload-other-program")
	for _, p := range []string{old, fresh, other, foreign} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}
	for _, p := range []string{old, other, foreign} {
		require.NoError(t, os.Chtimes(p, now.Add(-2*time.Hour), now.Add(-2*time.Hour)))
	}

	removed, err := PurgeStale(dir, time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)
	assert.FileExists(t, foreign)
}

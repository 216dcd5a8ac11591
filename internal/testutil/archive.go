// Package testutil provides in-memory archive builders and a fake
// geocoder for ingestion and end-to-end tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"testing"
)

// ZipBase64 builds a zip archive from name→content pairs and returns it
// base64-encoded, the way dataset content arrives at the core. Names
// ending in "/" become directory entries.
func ZipBase64(t *testing.T, files map[string]string) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString(ZipBytes(t, files))
}

// ZipBytes builds a zip archive from name→content pairs.
func ZipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

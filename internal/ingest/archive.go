// Package ingest turns raw archive content into validated records of the
// requested dataset kind.
//
// Independent units of work (course files, buildings) are processed with
// fan-out concurrency and joined before the dataset is considered complete;
// a unit that fails is excluded from the result rather than failing the
// whole ingestion.
package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"campusql/internal/dataset"
)

// unitLimit bounds the fan-out when parsing course files and building
// pages.
const unitLimit = 8

// Decode checks that content is valid base64 whose decoded bytes begin
// with the archive magic signature, and opens it as an archive. Both
// checks fail before any parsing begins.
func Decode(content string) (*zip.Reader, error) {
	raw, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, dataset.WrapRequestError("content is not valid base64", err)
	}
	if len(raw) < 2 || !bytes.HasPrefix(raw, []byte("PK")) {
		return nil, dataset.NewRequestError("content is not a zip archive")
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, dataset.WrapRequestError("open zip archive", err)
	}
	return zr, nil
}

// Dataset decodes content and runs the ingestion path for kind. It fails
// if zero valid records are produced.
func Dataset(ctx context.Context, kind dataset.Kind, content string, geo Geocoder) ([]dataset.Record, error) {
	zr, err := Decode(content)
	if err != nil {
		return nil, err
	}

	var records []dataset.Record
	switch kind {
	case dataset.KindSections:
		records, err = Sections(ctx, zr)
	case dataset.KindRooms:
		records, err = Rooms(ctx, zr, geo)
	default:
		return nil, dataset.NewRequestError(fmt.Sprintf("invalid dataset kind %q", kind))
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, dataset.NewRequestError(fmt.Sprintf("archive contains no valid %s", kind))
	}
	return records, nil
}

// readEntry returns the text content of one archive entry. Relative path
// prefixes ("./") are normalized before lookup. ok is false when the
// archive has no such entry.
func readEntry(zr *zip.Reader, path string) (string, bool, error) {
	name := strings.TrimPrefix(path, "./")
	for strings.HasPrefix(name, "/") {
		name = name[1:]
	}
	f, err := zr.Open(name)
	if err != nil {
		return "", false, nil
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return "", true, fmt.Errorf("read archive entry %s: %w", name, err)
	}
	return string(raw), true, nil
}

package server

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
)

//go:embed static/*
var staticFiles embed.FS

var StaticFilesFS = sync.OnceValue(func() fs.FS {
	subFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("Failed to create sub filesystem: " + err.Error())
	}
	return subFS
})

// staticAsset is an embedded file with its precomputed headers. Embedded
// files never change at runtime, so each one is read and hashed once.
type staticAsset struct {
	data        []byte
	etag        string
	contentType string
}

var staticAssets sync.Map

func loadAsset(fileName string) (*staticAsset, error) {
	if cached, ok := staticAssets.Load(fileName); ok {
		return cached.(*staticAsset), nil
	}

	data, err := fs.ReadFile(StaticFilesFS(), fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fileName, err)
	}

	ctype := mime.TypeByExtension(strings.ToLower(path.Ext(fileName)))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	if strings.HasPrefix(ctype, "text/") && !strings.Contains(strings.ToLower(ctype), "charset=") {
		ctype += "; charset=utf-8"
	}
	sum := sha256.Sum256(data)

	asset := &staticAsset{data: data, etag: `"` + hex.EncodeToString(sum[:8]) + `"`, contentType: ctype}
	actual, _ := staticAssets.LoadOrStore(fileName, asset)
	return actual.(*staticAsset), nil
}

// StreamFile writes an embedded asset, answering 304 when the browser already
// holds the current version.
func StreamFile(w http.ResponseWriter, r *http.Request, fileName string) error {
	asset, err := loadAsset(fileName)
	if err != nil {
		return err
	}

	w.Header().Set("ETag", asset.etag)
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, asset.etag) {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	w.Header().Set("Content-Type", asset.contentType)
	if r.Method == http.MethodHead {
		return nil
	}
	if _, err := w.Write(asset.data); err != nil {
		return fmt.Errorf("failed to write %s content: %w", fileName, err)
	}
	return nil
}

// util/resources.go
// Copyright(c) 2025 fixcalc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type zstdFile struct {
	f  *os.File
	zr *zstd.Decoder
}

func (z *zstdFile) Read(p []byte) (int, error) {
	return z.zr.Read(p)
}

func (z *zstdFile) Close() error {
	z.zr.Close()
	return z.f.Close()
}

// OpenDataFile opens a data file for reading, transparently decompressing
// it when the filename carries a .zst extension.
func OpenDataFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if filepath.Ext(path) != ".zst" {
		return f, nil
	}

	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(0))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdFile{f: f, zr: zr}, nil
}

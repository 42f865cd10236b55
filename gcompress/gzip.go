// Package gcompress wraps compress/gzip for the one compression concern
// SPEC_FULL.md names: shrinking a closed capture file in place.
package gcompress

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// GzipUtil is a gzip compressor/decompressor with a configurable level.
type GzipUtil struct {
	CompressionLevel int
}

func NewGzipUtil() *GzipUtil {
	return &GzipUtil{
		CompressionLevel: gzip.DefaultCompression,
	}
}

func (g *GzipUtil) WithCompressionLevel(level int) *GzipUtil {
	g.CompressionLevel = level
	return g
}

func (g *GzipUtil) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buf, g.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("gcompress: new gzip writer: %w", err)
	}
	defer writer.Close()

	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("gcompress: compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gcompress: close gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

func (g *GzipUtil) Decompress(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gcompress: new gzip reader: %w", err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("gcompress: decompress: %w", err)
	}

	return buf.Bytes(), nil
}

func (g *GzipUtil) CompressString(s string) ([]byte, error) {
	return g.Compress([]byte(s))
}

func (g *GzipUtil) DecompressToString(data []byte) (string, error) {
	decompressed, err := g.Decompress(data)
	if err != nil {
		return "", err
	}
	return string(decompressed), nil
}

// CompressFile gzips sourcePath into targetPath.
func (g *GzipUtil) CompressFile(sourcePath, targetPath string) error {
	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("gcompress: open %s: %w", sourcePath, err)
	}
	defer sourceFile.Close()

	targetFile, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("gcompress: create %s: %w", targetPath, err)
	}
	defer targetFile.Close()

	writer, err := gzip.NewWriterLevel(targetFile, g.CompressionLevel)
	if err != nil {
		return fmt.Errorf("gcompress: new gzip writer: %w", err)
	}
	defer writer.Close()

	if !strings.HasSuffix(targetPath, ".gz") {
		writer.Name = strings.TrimSuffix(sourcePath, ".gz")
	}

	if _, err := io.Copy(writer, sourceFile); err != nil {
		return fmt.Errorf("gcompress: compress %s: %w", sourcePath, err)
	}

	return nil
}

// DecompressFile reverses CompressFile.
func (g *GzipUtil) DecompressFile(sourcePath, targetPath string) error {
	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("gcompress: open %s: %w", sourcePath, err)
	}
	defer sourceFile.Close()

	reader, err := gzip.NewReader(sourceFile)
	if err != nil {
		return fmt.Errorf("gcompress: new gzip reader: %w", err)
	}
	defer reader.Close()

	targetFile, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("gcompress: create %s: %w", targetPath, err)
	}
	defer targetFile.Close()

	if _, err := io.Copy(targetFile, reader); err != nil {
		return fmt.Errorf("gcompress: decompress %s: %w", sourcePath, err)
	}

	return nil
}

func (g *GzipUtil) IsGzipped(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return data[0] == 0x1f && data[1] == 0x8b
}

func Compress(data []byte) ([]byte, error) {
	return NewGzipUtil().Compress(data)
}

func Decompress(data []byte) ([]byte, error) {
	return NewGzipUtil().Decompress(data)
}

func CompressString(s string) ([]byte, error) {
	return NewGzipUtil().CompressString(s)
}

func DecompressToString(data []byte) (string, error) {
	return NewGzipUtil().DecompressToString(data)
}

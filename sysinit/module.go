// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sysinit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

const (
	moduleTypeUnknown moduleType = ""
	moduleTypePlain   moduleType = ".ko"
	moduleTypeGZIP    moduleType = ".ko.gz"
	moduleTypeXZ      moduleType = ".ko.xz"
	moduleTypeZSTD    moduleType = ".ko.zst"
)

type moduleType string

func parseModuleType(fileName string) moduleType {
	types := []moduleType{
		moduleTypePlain,
		moduleTypeGZIP,
		moduleTypeXZ,
		moduleTypeZSTD,
	}

	for _, typ := range types {
		if strings.HasSuffix(fileName, string(typ)) {
			return typ
		}
	}

	return moduleTypeUnknown
}

// LoadModule loads the kernel module located at the given path with the given
// parameters.
//
// The file may be compressed. The caller is responsible to ensure the module
// belongs to the running kernel and all dependencies are satisfied.
func LoadModule(path string, params string) error {
	module, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer module.Close()

	return loadModule(module, params)
}

func loadModule(module *os.File, params string) error {
	typ := parseModuleType(module.Name())

	// Try finit_module(2) first, as it does not require to read the file into
	// memory. If it is not available try again with init_module(2).
	err := finitModule(int(module.Fd()), params, finitFlagsFor(typ))
	if !errors.Is(err, errors.ErrUnsupported) {
		return err
	}

	data, err := readModule(module, typ)
	if err != nil {
		return err
	}

	return initModule(data, params)
}

// readModule reads the complete, decompressed module.
func readModule(fileReader io.Reader, typ moduleType) ([]byte, error) {
	moduleReader, closeFn, err := newModuleReader(fileReader, typ)
	if err != nil {
		return nil, fmt.Errorf("module reader: %w", err)
	}
	defer closeFn()

	var data bytes.Buffer

	_, err = data.ReadFrom(moduleReader)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}

	return data.Bytes(), nil
}

func newModuleReader(
	fileReader io.Reader,
	typ moduleType,
) (io.Reader, func(), error) {
	noop := func() {}

	switch typ {
	case moduleTypePlain:
		return fileReader, noop, nil
	case moduleTypeGZIP:
		gzipReader, err := gzip.NewReader(fileReader)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip reader: %w", err)
		}

		return gzipReader, func() { _ = gzipReader.Close() }, nil
	case moduleTypeXZ:
		xzReader, err := xz.NewReader(fileReader)
		if err != nil {
			return nil, nil, fmt.Errorf("xz reader: %w", err)
		}

		return xzReader, noop, nil
	case moduleTypeZSTD:
		zstdReader, err := zstd.NewReader(fileReader, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, fmt.Errorf("zstd reader: %w", err)
		}

		return zstdReader, zstdReader.Close, nil
	default:
		return nil, nil, fmt.Errorf("extension %s: %w", typ, errors.ErrUnsupported)
	}
}

func finitFlagsFor(typ moduleType) finitFlags {
	var flags finitFlags

	if isSupportedFinitCompressionType(typ) {
		flags |= finitFlagCompressedFile
	}

	return flags
}

// isSupportedFinitCompressionType checks if the given extension is one of the
// known extensions finit_module(2) supports.
func isSupportedFinitCompressionType(typ moduleType) bool {
	supportedTypes := []moduleType{
		moduleTypeGZIP,
		moduleTypeXZ,
		moduleTypeZSTD,
	}

	return slices.Contains(supportedTypes, typ)
}

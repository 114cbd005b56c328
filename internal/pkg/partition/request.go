// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package partition

import (
	"fmt"
	"strings"

	"github.com/siderolabs/gptflash/internal/pkg/source"
	"github.com/siderolabs/gptflash/pkg/bytesize"
)

// Request is a partition asked for by the user.
//
// File-backed requests carry a Source and its content size, blank requests
// carry the literal size only.
type Request struct {
	Name   string
	Source *source.Source
	Size   uint64
}

// Blank reports whether the request has no image.
func (r Request) Blank() bool {
	return r.Source == nil
}

// FormatRequest asks for a filesystem on a partition.
type FormatRequest struct {
	Partition  string
	Filesystem string
}

// ParseRequest parses a "name:path" file-backed request.
func ParseRequest(arg string) (Request, error) {
	name, path, err := splitPair(arg, "partition", "path")
	if err != nil {
		return Request{}, err
	}

	return NewFileRequest(name, path)
}

// NewFileRequest builds a file-backed request, checking that path is readable.
func NewFileRequest(name, path string) (Request, error) {
	src, err := source.Open(path)
	if err != nil {
		return Request{}, fmt.Errorf("%w: image %q for partition %q: %w", ErrSourceUnavailable, path, name, err)
	}

	return Request{
		Name:   name,
		Source: src,
		Size:   src.Size(),
	}, nil
}

// ParseBlankRequest parses a "name:size" blank request.
func ParseBlankRequest(arg string) (Request, error) {
	name, size, err := splitPair(arg, "blank partition", "size")
	if err != nil {
		return Request{}, err
	}

	return NewBlankRequest(name, size)
}

// NewBlankRequest builds a blank request from a size literal such as "4MiB".
func NewBlankRequest(name, size string) (Request, error) {
	bytes, err := bytesize.Parse(size)
	if err != nil {
		return Request{}, fmt.Errorf("%w: size for blank partition %q: %w", ErrArgument, name, err)
	}

	if bytes == 0 {
		return Request{}, fmt.Errorf("%w: size for blank partition %q must be positive", ErrArgument, name)
	}

	return Request{
		Name: name,
		Size: bytes,
	}, nil
}

// ParseFormatRequest parses a "name:filesystem" format request.
func ParseFormatRequest(arg string) (FormatRequest, error) {
	name, fs, err := splitPair(arg, "format partition", "filesystem")
	if err != nil {
		return FormatRequest{}, err
	}

	return FormatRequest{
		Partition:  name,
		Filesystem: fs,
	}, nil
}

func splitPair(arg, what, value string) (string, string, error) {
	name, rest, ok := strings.Cut(arg, ":")

	switch {
	case !ok:
		return "", "", fmt.Errorf("%w: %s %q must be in the form name:%s", ErrArgument, what, arg, value)
	case name == "":
		return "", "", fmt.Errorf("%w: %s %q has an empty name", ErrArgument, what, arg)
	case rest == "":
		return "", "", fmt.Errorf("%w: %s %q has an empty %s", ErrArgument, what, arg, value)
	}

	return name, rest, nil
}

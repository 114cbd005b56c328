/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

// Package version holds the build information of gptflash.
package version

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
)

var (
	// Name is set at build time.
	Name = "gptflash"
	// Tag is set at build time.
	Tag = "none"
	// SHA is set at build time.
	SHA = "undefined"
	// Built is set at build time.
	Built string
)

const versionTemplate = `{{ .Name }}:
	Tag:         {{ .Tag }}
	SHA:         {{ .SHA }}
	Built:       {{ .Built }}
	Go version:  {{ .GoVersion }}
	OS/Arch:     {{ .Os }}/{{ .Arch }}
`

// Version contains verbose version information.
type Version struct {
	Name      string
	Tag       string
	SHA       string
	Built     string
	GoVersion string
	Os        string
	Arch      string
}

// NewVersion returns the version information of the running binary.
func NewVersion() *Version {
	return &Version{
		Name:      Name,
		Tag:       Tag,
		SHA:       SHA,
		Built:     Built,
		GoVersion: runtime.Version(),
		Os:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// PrintLongVersion writes verbose version information.
func (v *Version) PrintLongVersion(w io.Writer) error {
	tmpl, err := template.New("version").Parse(versionTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, v)
}

// PrintShortVersion writes the tag and SHA.
func (v *Version) PrintShortVersion(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s %s-%s\n", v.Name, v.Tag, v.SHA)

	return err
}

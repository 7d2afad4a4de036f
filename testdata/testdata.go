package testdata

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

//go:embed lvm/*.lvm
var Samples embed.FS

// SampleNames returns the file names of the embedded LVM samples in sorted order
func SampleNames() ([]string, error) {
	entries, err := fs.ReadDir(Samples, "lvm")
	if err != nil {
		return nil, fmt.Errorf("failed to read lvm directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)

	return names, nil
}

// ReadSample reads one embedded LVM sample
func ReadSample(name string) ([]byte, error) {
	return fs.ReadFile(Samples, path.Join("lvm", name))
}

// Package svd reads CMSIS-SVD device descriptions to check register layouts
// declared with mmio and to generate such declarations.
package svd

import (
	"encoding/xml"
	"io"
	"os"
)

func Parse(r io.Reader) (*Device, error) {
	var device Device
	if err := xml.NewDecoder(r).Decode(&device); err != nil {
		return nil, err
	}
	return &device, nil
}

func ParseFile(path string) (*Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

package config

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/alex-vit/lutswitch/internal/keys"
)

type xmlDocument struct {
	XMLName   xml.Name     `xml:"monitors"`
	ToggleKey string       `xml:"lut_toggle,attr,omitempty"`
	Monitors  []xmlMonitor `xml:"monitor"`
}

type xmlMonitor struct {
	Path    *string  `xml:"path,attr"`
	SdrLut  *string  `xml:"sdr_lut,attr"`
	HdrLut  *string  `xml:"hdr_lut,attr"`
	SdrLuts *sdrLuts `xml:"sdr_luts"`
	HdrLuts *hdrLuts `xml:"hdr_luts"`
}

type sdrLuts struct {
	Paths []string `xml:"sdr_lut"`
}

type hdrLuts struct {
	Paths []string `xml:"hdr_lut"`
}

// DefaultPath returns config.xml in the directory of the running executable.
func DefaultPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exe), FileName), nil
}

// Load reads and parses the config file. Errors from os.ReadFile are
// returned wrapped, so errors.Is(err, fs.ErrNotExist) works.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOrDefault is Load that never fails: a missing or corrupt file is
// logged and treated as an empty document with the default toggle key.
func LoadOrDefault(path string) Document {
	doc, err := Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("config: no config file at %s, using defaults", path)
		} else {
			log.Printf("config: load failed: %v, using defaults", err)
		}
		return Default()
	}
	log.Printf("config: loaded %d monitors, toggle=%s", len(doc.Monitors), doc.ToggleKey)
	return doc
}

// Parse decodes a config document. An invalid or missing lut_toggle falls
// back to DefaultToggleKey; records without a path are dropped, and only the
// first record for a given path is kept.
func Parse(data []byte) (Document, error) {
	var x xmlDocument
	if err := xml.Unmarshal(data, &x); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}

	doc := Default()
	if k, err := keys.Parse(x.ToggleKey); err == nil {
		doc.ToggleKey = k
	} else {
		log.Printf("config: toggle key: %v, using %s", err, DefaultToggleKey)
	}

	seen := map[string]bool{}
	for _, xm := range x.Monitors {
		if xm.Path == nil {
			log.Printf("config: skipping monitor without path")
			continue
		}
		if seen[*xm.Path] {
			log.Printf("config: duplicate monitor %s, keeping the first", *xm.Path)
			continue
		}
		seen[*xm.Path] = true
		m := Monitor{Path: *xm.Path}
		if xm.SdrLut != nil {
			m.SdrLut = *xm.SdrLut
		}
		if xm.HdrLut != nil {
			m.HdrLut = *xm.HdrLut
		}
		if xm.SdrLuts != nil {
			m.SdrLuts = nonNil(xm.SdrLuts.Paths)
		}
		if xm.HdrLuts != nil {
			m.HdrLuts = nonNil(xm.HdrLuts.Paths)
		}
		doc.Monitors = append(doc.Monitors, m)
	}
	return doc, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Marshal encodes a document, writing only the attributes and elements
// that have a value.
func Marshal(doc Document) ([]byte, error) {
	x := xmlDocument{ToggleKey: string(doc.ToggleKey)}
	for _, m := range doc.Monitors {
		xm := xmlMonitor{Path: &m.Path}
		if m.SdrLut != "" {
			xm.SdrLut = &m.SdrLut
		}
		if m.HdrLut != "" {
			xm.HdrLut = &m.HdrLut
		}
		if m.SdrLuts != nil {
			xm.SdrLuts = &sdrLuts{Paths: m.SdrLuts}
		}
		if m.HdrLuts != nil {
			xm.HdrLuts = &hdrLuts{Paths: m.HdrLuts}
		}
		x.Monitors = append(x.Monitors, xm)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(x); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Save replaces the file at path with doc. The write goes to a temporary
// file first, so a failed save never leaves a truncated config behind.
func Save(path string, doc Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

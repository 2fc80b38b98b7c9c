package export

import (
	"encoding/json"
	"errors"
	"os"
)

// PDFRecord remembers a downloaded PDF and the Fingerprint of the document
// when it was fetched.
type PDFRecord struct {
	File        string `json:"file"`
	Fingerprint string `json:"fingerprint"`
}

type State struct {
	LastExport string               `json:"lastExport"`
	PDFs       map[string]PDFRecord `json:"pdfs"`
}

// Manifest keeps the export state between runs so unchanged PDFs are not
// downloaded again.
type Manifest struct {
	Path  string
	State State
}

func NewManifest(path string) *Manifest {
	return &Manifest{
		Path:  path,
		State: State{PDFs: make(map[string]PDFRecord)},
	}
}

func (m *Manifest) Load() error {
	data, err := os.ReadFile(m.Path)
	if errors.Is(err, os.ErrNotExist) {
		m.State = State{PDFs: make(map[string]PDFRecord)}
		return nil
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &m.State); err != nil {
		return err
	}
	if m.State.PDFs == nil {
		m.State.PDFs = make(map[string]PDFRecord)
	}
	return nil
}

func (m *Manifest) Save() error {
	data, err := json.MarshalIndent(m.State, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.Path, data, 0644)
}

func pdfKey(kind, id string) string {
	return kind + ":" + id
}

// PDFCurrent reports whether the PDF for the document was already fetched
// while the document had this fingerprint.
func (m *Manifest) PDFCurrent(kind, id, fingerprint string) bool {
	rec, ok := m.State.PDFs[pdfKey(kind, id)]
	return ok && rec.Fingerprint == fingerprint
}

func (m *Manifest) RecordPDF(kind, id, file, fingerprint string) {
	m.State.PDFs[pdfKey(kind, id)] = PDFRecord{File: file, Fingerprint: fingerprint}
}

func (m *Manifest) UpdateLastExport(timestamp string) {
	m.State.LastExport = timestamp
}

package extractor

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
)

// extractDocx parses a .docx file by streaming word/document.xml from the
// ZIP archive. Body paragraphs come first in document order, followed by one
// unit per non-empty table row with cells joined by single spaces.
func (e *Extractor) extractDocx(path string, _ Options) (*Extraction, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	paragraphs, tableRows, err := walkDocumentXML(xml.NewDecoder(rc))
	if err != nil {
		return nil, err
	}

	units := cleanAll(append(paragraphs, tableRows...))

	return &Extraction{
		FileType:   "docx",
		FileName:   filepath.Base(path),
		Units:      units,
		RawText:    strings.Join(units, "\n\n"),
		TotalUnits: len(units),
	}, nil
}

// walkDocumentXML collects body-level paragraph texts and table row texts.
// Paragraphs inside table cells feed their cell, not the paragraph list.
func walkDocumentXML(decoder *xml.Decoder) (paragraphs, tableRows []string, err error) {
	var (
		tableDepth  int
		inParagraph bool
		paraText    strings.Builder
		cellText    strings.Builder
		rowCells    []string
	)

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tc":
				if tableDepth > 0 {
					cellText.Reset()
				}
			case "tr":
				if tableDepth > 0 {
					rowCells = rowCells[:0]
				}
			case "p":
				if tableDepth == 0 {
					inParagraph = true
					paraText.Reset()
				}
			}

		case xml.CharData:
			if tableDepth > 0 {
				cellText.Write(t)
			} else if inParagraph {
				paraText.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth > 0 {
					tableDepth--
				}
			case "tc":
				if tableDepth > 0 {
					if cell := strings.TrimSpace(cellText.String()); cell != "" {
						rowCells = append(rowCells, cell)
					}
					cellText.Reset()
				}
			case "tr":
				if tableDepth > 0 && len(rowCells) > 0 {
					tableRows = append(tableRows, strings.Join(rowCells, " "))
					rowCells = rowCells[:0]
				}
			case "p":
				if tableDepth == 0 && inParagraph {
					inParagraph = false
					if text := strings.TrimSpace(paraText.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
				}
			}
		}
	}

	return paragraphs, tableRows, nil
}

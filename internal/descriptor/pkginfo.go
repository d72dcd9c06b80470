package descriptor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/chrisjsewell/activate-aiida/internal/models"
)

// MetadataVersion is the core metadata version written to PKG-INFO
const MetadataVersion = "2.1"

// RenderPKGInfo renders a record in core metadata format
func RenderPKGInfo(rec *models.Record) []byte {
	var buf bytes.Buffer

	writeField(&buf, "Metadata-Version", MetadataVersion)
	writeField(&buf, "Name", rec.Name)
	writeField(&buf, "Version", rec.Version)
	writeField(&buf, "Summary", rec.Description)
	writeField(&buf, "Home-page", rec.URL)
	writeField(&buf, "Author", rec.Author)
	writeField(&buf, "Author-email", rec.AuthorEmail)
	writeField(&buf, "License", rec.License)
	if len(rec.Keywords) > 0 {
		writeField(&buf, "Keywords", rec.Keywords.String())
	}
	for _, c := range rec.Classifiers {
		writeField(&buf, "Classifier", c)
	}
	for _, r := range rec.InstallRequires {
		writeField(&buf, "Requires-Dist", r)
	}
	writeField(&buf, "Description-Content-Type", rec.LongDescriptionContentType)

	buf.WriteString("\n")
	buf.WriteString(rec.LongDescription)
	if rec.LongDescription != "" && !strings.HasSuffix(rec.LongDescription, "\n") {
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// writeField writes a header line, skipping empty values.
// Continuation lines are indented so multi-line values stay in one field.
func writeField(buf *bytes.Buffer, key, value string) {
	if value == "" {
		return
	}
	value = strings.ReplaceAll(strings.TrimRight(value, "\n"), "\n", "\n        ")
	fmt.Fprintf(buf, "%s: %s\n", key, value)
}

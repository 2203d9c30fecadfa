package duplication

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/mvp-joe/project-gauge/internal/component"
)

// FormatXML serializes the duplications of a file. Each duplication becomes a
// <g> group holding the original block followed by its duplicates, each a
// <b s="start" l="length" r="file key"/> element.
func FormatXML(file *component.Component, ds []Duplication) string {
	var sb strings.Builder
	sb.WriteString("<duplications>")
	for _, d := range ds {
		sb.WriteString("<g>")
		writeBlock(&sb, d.Original().TextBlock, file.Key())
		for _, dup := range d.Duplicates() {
			writeBlock(&sb, dup.TextBlock(), resourceKey(file, dup))
		}
		sb.WriteString("</g>")
	}
	sb.WriteString("</duplications>")
	return sb.String()
}

func resourceKey(file *component.Component, d Duplicate) string {
	switch d.Kind() {
	case KindInProject:
		return d.Component().Key()
	case KindCrossProject:
		return d.FileKey()
	default:
		return file.Key()
	}
}

// writeBlock emits a self-closing element, which encoding/xml's encoder can not produce.
func writeBlock(sb *strings.Builder, b TextBlock, key string) {
	sb.WriteString(`<b s="`)
	sb.WriteString(strconv.Itoa(b.Start))
	sb.WriteString(`" l="`)
	sb.WriteString(strconv.Itoa(b.Length()))
	sb.WriteString(`" r="`)
	_ = xml.EscapeText(sb, []byte(key))
	sb.WriteString(`"/>`)
}

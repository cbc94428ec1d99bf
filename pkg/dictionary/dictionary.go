package dictionary

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/japaniel/lexilookup/pkg/vocab"
)

// DefaultXMLPath is the vocabulary file read when no path is configured.
const DefaultXMLPath = "translations.xml"

const (
	recordElement = "RECORD"
	linkElement   = "LINK"
	wordAttr      = "word"
	cultureAttr   = "culture"
)

// XMLLoader reads a vocabulary graph from an XML file of RECORD elements,
// each holding LINK elements for its translations.
type XMLLoader struct {
	Path string
}

// Load opens the file and parses it with ParseXML.
func (l XMLLoader) Load(ctx context.Context) (*vocab.Graph, error) {
	path := l.Path
	if path == "" {
		path = DefaultXMLPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, vocab.ErrSourceUnavailable, err)
	}
	defer f.Close()
	return ParseXML(ctx, f)
}

// ParseXML builds a graph from r. A RECORD without both a word and a culture
// is skipped along with its links; such a LINK is skipped on its own.
func ParseXML(ctx context.Context, r io.Reader) (*vocab.Graph, error) {
	g := vocab.NewGraph()
	dec := xml.NewDecoder(r)

	// Open RECORD elements. An invalid record sits on the stack as NoRecord.
	var open []vocab.RecordID
	for n := 0; ; n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", vocab.ErrMalformedSource, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case recordElement:
				id := vocab.NoRecord
				if e, ok := entryFromAttrs(t.Attr); ok {
					id = g.AddRoot(e)
				}
				open = append(open, id)
			case linkElement:
				if len(open) == 0 {
					continue
				}
				parent := open[len(open)-1]
				if parent == vocab.NoRecord {
					continue
				}
				e, ok := entryFromAttrs(t.Attr)
				if !ok {
					continue
				}
				if _, err := g.AddLink(parent, e); err != nil {
					return nil, fmt.Errorf("%w: %v", vocab.ErrMalformedSource, err)
				}
			}
		case xml.EndElement:
			if t.Name.Local == recordElement && len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
	}
	return g, nil
}

func entryFromAttrs(attrs []xml.Attr) (vocab.Entry, bool) {
	var word, culture string
	var hasWord, hasCulture bool
	for _, a := range attrs {
		switch a.Name.Local {
		case wordAttr:
			word, hasWord = a.Value, true
		case cultureAttr:
			culture, hasCulture = a.Value, true
		}
	}
	if !hasWord || !hasCulture {
		return vocab.Entry{}, false
	}
	return vocab.NewEntry(word, culture)
}

package catalog

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/cmmoran/externgen/internal/model"
)

// Docs holds one-line summaries from XML documentation files, keyed by
// member id without its parameter list ("M:UnityEngine.Object.Destroy").
type Docs struct {
	summaries map[string]string
}

type docFile struct {
	Members []docMember `xml:"members>member"`
}

type docMember struct {
	Name    string      `xml:"name,attr"`
	Summary summaryText `xml:"summary"`
}

// summaryText flattens a <summary> element to one line. Cross references
// contribute their simple name.
type summaryText string

func (s *summaryText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
			for _, a := range t.Attr {
				switch a.Name.Local {
				case "cref", "name", "langword":
					b.WriteString(crefName(a.Value))
				}
			}
		case xml.EndElement:
			if depth == 0 {
				*s = summaryText(strings.Join(strings.Fields(b.String()), " "))
				return nil
			}
			depth--
		}
	}
}

func crefName(ref string) string {
	if i := strings.IndexByte(ref, ':'); i >= 0 && i < 2 {
		ref = ref[i+1:]
	}
	return lastSegment(memberKey(ref))
}

// memberKey strips the parameter list and method arity from a member id.
func memberKey(id string) string {
	if i := strings.IndexByte(id, '('); i >= 0 {
		id = id[:i]
	}
	if i := strings.Index(id, "``"); i >= 0 {
		id = id[:i]
	}
	return id
}

func lastSegment(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// ParseDocs reads one XML documentation file. The first summary for a key
// wins.
func ParseDocs(r io.Reader) (*Docs, error) {
	var f docFile
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "decode xml documentation")
	}
	d := &Docs{summaries: make(map[string]string, len(f.Members))}
	d.add(&f)
	return d, nil
}

func (d *Docs) add(f *docFile) {
	for _, m := range f.Members {
		key := memberKey(m.Name)
		if key == "" || m.Summary == "" {
			continue
		}
		if _, ok := d.summaries[key]; !ok {
			d.summaries[key] = string(m.Summary)
		}
	}
}

// LoadDocs merges the documentation files under paths. Unreadable files are
// logged and skipped.
func LoadDocs(fs afero.Fs, logger *zap.Logger, paths ...string) (*Docs, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	files, err := expand(fs, paths, []string{".xml"})
	if err != nil {
		return nil, err
	}

	d := &Docs{summaries: make(map[string]string)}
	for _, file := range files {
		fd, err := fs.Open(file)
		if err != nil {
			logger.Warn("skipping documentation file", zap.String("file", file), zap.Error(err))
			continue
		}
		var doc docFile
		err = xml.NewDecoder(fd).Decode(&doc)
		_ = fd.Close()
		if err != nil {
			logger.Warn("skipping documentation file", zap.String("file", file), zap.Error(err))
			continue
		}
		d.add(&doc)
	}
	return d, nil
}

// Len returns the number of distinct documented ids.
func (d *Docs) Len() int {
	if d == nil {
		return 0
	}
	return len(d.summaries)
}

// Summary returns the summary stored for a member id.
func (d *Docs) Summary(id string) string {
	if d == nil {
		return ""
	}
	return d.summaries[memberKey(id)]
}

// Apply fills empty summaries of normalized descriptors in place.
func (d *Docs) Apply(types []*model.TypeDescriptor) {
	if d.Len() == 0 {
		return
	}
	for _, td := range types {
		if td.Summary == "" {
			td.Summary = d.Summary("T:" + td.FullName)
		}
		for _, p := range td.Properties {
			if p.Summary != "" {
				continue
			}
			if p.Summary = d.Summary("P:" + td.FullName + "." + p.Name); p.Summary == "" {
				p.Summary = d.Summary("F:" + td.FullName + "." + p.Name)
			}
		}
		for _, m := range td.Methods {
			if m.Summary == "" {
				m.Summary = d.Summary("M:" + td.FullName + "." + m.Name)
			}
		}
	}
}

package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/extract"
)

// BuildPackage writes an extracted exam as a QTI 2.1 content package: one
// single-choice item per question plus a manifest. fetchMedia, when set,
// loads attached images by blob key so they travel inside the package.
// Questions without a known answer are exported without a correctResponse.
func BuildPackage(ex exam.Exam, fetchMedia func(key string) (io.ReadCloser, error)) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	mf := imsManifest{
		Xmlns:      "http://www.imsglobal.org/xsd/imscp_v1p1",
		Identifier: "manifest-" + ex.ID,
		Resources:  []imsResource{},
	}
	for i, q := range ex.Questions {
		id := fmt.Sprintf("q%d", i+1)
		itemName := id + ".xml"
		res := imsResource{
			Identifier: id,
			Type:       "imsqti_item_xmlv2p1",
			Href:       itemName,
			Files:      []imsFile{{Href: itemName}},
		}

		media := ""
		if q.Image != nil && q.Image.Key != "" && fetchMedia != nil {
			m, err := addMedia(zw, q.Image.Key, fetchMedia)
			if err != nil {
				return nil, fmt.Errorf("media for %s: %w", id, err)
			}
			media = m
			res.Files = append(res.Files, imsFile{Href: m})
		}

		b, err := buildItemXML(id, q, media)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", id, err)
		}
		w, err := zw.Create(itemName)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(b); err != nil {
			return nil, err
		}
		mf.Resources = append(mf.Resources, res)
	}

	mfw, err := zw.Create("imsmanifest.xml")
	if err != nil {
		return nil, err
	}
	b, err := xml.MarshalIndent(mf, "", "  ")
	if err != nil {
		return nil, err
	}
	mfw.Write([]byte(xml.Header))
	mfw.Write(b)

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addMedia(zw *zip.Writer, key string, fetch func(string) (io.ReadCloser, error)) (string, error) {
	rc, err := fetch(key)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	name := "media/" + path.Base(key)
	w, err := zw.Create(name)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(w, rc)
	return name, err
}

// --- mini XML model for manifest (export only) ---
type imsManifest struct {
	XMLName    xml.Name      `xml:"manifest"`
	Xmlns      string        `xml:"xmlns,attr,omitempty"`
	Identifier string        `xml:"identifier,attr"`
	Resources  []imsResource `xml:"resources>resource"`
}
type imsResource struct {
	Identifier string    `xml:"identifier,attr"`
	Type       string    `xml:"type,attr"`
	Href       string    `xml:"href,attr"`
	Files      []imsFile `xml:"file"`
}
type imsFile struct {
	Href string `xml:"href,attr"`
}

// --- item model ---
type assessmentItem struct {
	XMLName    xml.Name            `xml:"assessmentItem"`
	Xmlns      string              `xml:"xmlns,attr"`
	Identifier string              `xml:"identifier,attr"`
	Title      string              `xml:"title,attr"`
	Adaptive   bool                `xml:"adaptive,attr"`
	TimeDep    bool                `xml:"timeDependent,attr"`
	Comment    string              `xml:",comment"`
	Response   responseDeclaration `xml:"responseDeclaration"`
	Body       itemBody            `xml:"itemBody"`
}
type responseDeclaration struct {
	Identifier  string   `xml:"identifier,attr"`
	Cardinality string   `xml:"cardinality,attr"`
	BaseType    string   `xml:"baseType,attr"`
	Correct     *correct `xml:"correctResponse,omitempty"`
}
type correct struct {
	Values []string `xml:"value"`
}
type itemBody struct {
	Prompt      string            `xml:"p"`
	Figure      *figure           `xml:"div,omitempty"`
	Interaction choiceInteraction `xml:"choiceInteraction"`
}
type figure struct {
	Img img `xml:"img"`
}
type img struct {
	Src string `xml:"src,attr"`
	Alt string `xml:"alt,attr"`
}
type choiceInteraction struct {
	ResponseIdentifier string         `xml:"responseIdentifier,attr"`
	Shuffle            bool           `xml:"shuffle,attr"`
	MaxChoices         int            `xml:"maxChoices,attr"`
	Choices            []simpleChoice `xml:"simpleChoice"`
}
type simpleChoice struct {
	Identifier string `xml:"identifier,attr"`
	Text       string `xml:",chardata"`
}

func buildItemXML(id string, q extract.Question, media string) ([]byte, error) {
	it := assessmentItem{
		Xmlns:      "http://www.imsglobal.org/xsd/imsqti_v2p1",
		Identifier: id,
		Title:      truncate(q.Text, 80),
		Comment:    " provenance: " + string(q.Provenance) + " ",
		Response: responseDeclaration{
			Identifier:  "RESPONSE",
			Cardinality: "single",
			BaseType:    "identifier",
		},
		Body: itemBody{
			Prompt: q.Text,
			Interaction: choiceInteraction{
				ResponseIdentifier: "RESPONSE",
				MaxChoices:         1,
			},
		},
	}
	if media != "" {
		it.Body.Figure = &figure{Img: img{Src: media, Alt: "figure for " + id}}
	}
	for i, o := range q.Options {
		choiceID := choiceIdentifier(i)
		it.Body.Interaction.Choices = append(it.Body.Interaction.Choices, simpleChoice{Identifier: choiceID, Text: o})
		if it.Response.Correct == nil && q.Correct != nil && o == *q.Correct {
			it.Response.Correct = &correct{Values: []string{choiceID}}
		}
	}
	b, err := xml.MarshalIndent(it, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// choiceIdentifier returns A, B, ... Z, then C27, C28.
func choiceIdentifier(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("C%d", i+1)
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

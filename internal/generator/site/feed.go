package site

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ralt/pirum/internal/catalog"
	"github.com/ralt/pirum/internal/generator"
	"github.com/ralt/pirum/internal/models"
)

const (
	atomNamespace = "http://www.w3.org/2005/Atom"
	releaseLayout = "2006-01-02 15:04:05"
)

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Xmlns   string      `xml:"xmlns,attr"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Title   string      `xml:"title"`
	Link    atomLink    `xml:"link"`
	Author  atomAuthor  `xml:"author"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomEntry struct {
	Title   string     `xml:"title"`
	Link    atomLink   `xml:"link"`
	ID      string     `xml:"id"`
	Author  atomAuthor `xml:"author"`
	Updated string     `xml:"updated"`
	Content string     `xml:"content"`
}

// renderFeed lists every release. The feed date is the newest release date
// so an unchanged catalog renders an identical feed.
func renderFeed(cat *catalog.Catalog) ([]byte, error) {
	c := cat.Channel
	feed := atomFeed{
		Xmlns:  atomNamespace,
		ID:     c.URL,
		Title:  c.Summary + " Latest Releases",
		Link:   atomLink{Href: c.URL + "/feed.xml", Rel: "self"},
		Author: atomAuthor{Name: c.URL},
	}

	var newest time.Time
	for _, pkg := range cat.Packages {
		for _, r := range pkg.Releases {
			d := r.Descriptor
			date := releaseTime(d.Date)
			if date.After(newest) {
				newest = date
			}

			var author string
			if len(d.Maintainers) > 0 {
				author = d.Maintainers[0].Nickname
			}

			url := c.URL + "/get/" + archiveName(d)
			feed.Entries = append(feed.Entries, atomEntry{
				Title:   fmt.Sprintf("%s %s (%s)", pkg.Name, d.Version, d.Stability),
				Link:    atomLink{Href: url},
				ID:      url,
				Author:  atomAuthor{Name: author},
				Updated: date.Format(time.RFC3339),
				Content: d.Notes,
			})
		}
	}
	feed.Updated = newest.Format(time.RFC3339)

	return generator.MarshalXML(feed)
}

// releaseTime parses a release date, the zero time when it is malformed
func releaseTime(s string) time.Time {
	t, err := time.Parse(releaseLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// archiveName is the file served from get/, tgz when the descriptor does not
// come from a scanned archive
func archiveName(d *models.Descriptor) string {
	if d.Filename != "" {
		return filepath.Base(d.Filename)
	}
	return d.ArchiveBase() + ".tgz"
}

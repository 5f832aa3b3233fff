package descriptor

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/ralt/pirum/internal/models"
)

// XML structures for package.xml (package 2.0 schema, the parts we publish)

type packageXML struct {
	XMLName      xml.Name        `xml:"package"`
	Name         string          `xml:"name"`
	Channel      string          `xml:"channel"`
	Summary      string          `xml:"summary"`
	Description  string          `xml:"description"`
	Leads        []maintainerXML `xml:"lead"`
	Developers   []maintainerXML `xml:"developer"`
	Date         string          `xml:"date"`
	Time         string          `xml:"time"`
	Version      versionXML      `xml:"version"`
	Stability    versionXML      `xml:"stability"`
	License      licenseXML      `xml:"license"`
	Notes        string          `xml:"notes"`
	Dependencies *fragmentXML    `xml:"dependencies"`
	Extension    string          `xml:"providesextension"`
}

type maintainerXML struct {
	Name   string `xml:"name"`
	User   string `xml:"user"`
	Email  string `xml:"email"`
	URL    string `xml:"url"`
	Active string `xml:"active"`
}

type versionXML struct {
	Release string `xml:"release"`
	API     string `xml:"api"`
}

type licenseXML struct {
	URI   string `xml:"uri,attr"`
	Value string `xml:",chardata"`
}

type fragmentXML struct {
	Inner []byte `xml:",innerxml"`
}

// dateLayouts are tried in order when normalising <date> and <time>
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse decodes a package.xml document and checks that it declares the
// name and version encoded in the archive filename.
func Parse(doc []byte, name, version string) (*models.Descriptor, error) {
	var px packageXML
	if err := xml.Unmarshal(doc, &px); err != nil {
		return nil, models.NewError(models.ErrIntegrity, name, "invalid package.xml: %v", err)
	}

	if px.Name != name {
		return nil, models.NewError(models.ErrConsistency, name,
			"the package.xml name %q does not match the name of the archive file %q", px.Name, name)
	}
	if px.Version.Release != version {
		return nil, models.NewError(models.ErrConsistency, name,
			"the package.xml version %q does not match the version of the archive file %q", px.Version.Release, version)
	}

	deps := models.Mapping()
	if px.Dependencies != nil {
		children, err := parseElements(px.Dependencies.Inner)
		if err != nil {
			return nil, models.NewError(models.ErrIntegrity, name, "invalid dependencies: %v", err)
		}
		deps = dependencyTree(children)
	}

	list, err := maintainers(px.Leads, px.Developers)
	if err != nil {
		return nil, &models.PirumError{Type: models.ErrConsistency, Package: name, Err: err}
	}

	d := &models.Descriptor{
		Name:         px.Name,
		Version:      px.Version.Release,
		APIVersion:   px.Version.API,
		Stability:    models.Stability(px.Stability.Release),
		APIStability: models.Stability(px.Stability.API),
		License:      px.License.Value,
		LicenseURI:   px.License.URI,
		Summary:      px.Summary,
		Description:  px.Description,
		Date:         normalizeDate(px.Date, px.Time),
		Channel:      px.Channel,
		MinPHP:       deps.Get("required").Get("php").Get("min").String(),
		Notes:        px.Notes,
		Extension:    px.Extension,
		Maintainers:  list,
		Dependencies: deps,
		PackageXML:   doc,
	}

	return d, nil
}

// maintainers lists leads then developers. A nickname listed twice keeps
// its first position and takes the later record.
func maintainers(leads, developers []maintainerXML) ([]models.Maintainer, error) {
	var list []models.Maintainer
	index := make(map[string]int)

	add := func(m maintainerXML, role string) {
		rec := models.Maintainer{
			Nickname: m.User,
			Name:     m.Name,
			Email:    m.Email,
			URL:      m.URL,
			Role:     role,
			Active:   strings.EqualFold(strings.TrimSpace(m.Active), "yes"),
		}
		if i, ok := index[m.User]; ok {
			list[i] = rec
			return
		}
		index[m.User] = len(list)
		list = append(list, rec)
	}

	for _, m := range leads {
		if err := validNickname(m.User); err != nil {
			return nil, err
		}
		add(m, models.RoleLead)
	}
	for _, m := range developers {
		if err := validNickname(m.User); err != nil {
			return nil, err
		}
		add(m, models.RoleDeveloper)
	}
	return list, nil
}

// validNickname rejects handles that cannot name a rest/m/<handle> directory
func validNickname(nick string) error {
	switch {
	case nick == "":
		return fmt.Errorf("a maintainer has an empty <user>")
	case nick == ".", strings.ContainsAny(nick, `/\`), strings.Contains(nick, ".."):
		return fmt.Errorf("invalid maintainer handle %q", nick)
	}
	return nil
}

func normalizeDate(date, clock string) string {
	raw := strings.TrimSpace(strings.TrimSpace(date) + " " + strings.TrimSpace(clock))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(dateLayouts[0])
		}
	}
	return raw
}

package channel

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/ralt/pirum/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DescriptorFile is the channel descriptor looked up first
const DescriptorFile = "pirum.xml"

// alternates are read through viper when pirum.xml is absent, in order
var alternates = []string{"pirum.yaml", "pirum.yml", "pirum.toml", "pirum.json"}

type serverXML struct {
	XMLName         xml.Name `xml:"server"`
	Name            string   `xml:"name"`
	Summary         string   `xml:"summary"`
	Alias           string   `xml:"alias"`
	URL             string   `xml:"url"`
	Mirrors         []string `xml:"mirror"`
	ValidatePackage string   `xml:"validatepackage"`
	ValidateVersion string   `xml:"validateversion"`
}

// Load reads the channel identity from dir
func Load(dir string) (*models.Channel, error) {
	path := filepath.Join(dir, DescriptorFile)
	if _, err := os.Stat(path); err == nil {
		return loadXML(path)
	}

	for _, name := range alternates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return loadViper(path)
		}
	}

	return nil, models.NewError(models.ErrConfig, "",
		"you must create a %s configuration file in the root of %s", DescriptorFile, dir)
}

func loadXML(path string) (*models.Channel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.WrapIO("", err)
	}

	var s serverXML
	if err := xml.Unmarshal(data, &s); err != nil {
		return nil, models.NewError(models.ErrConfig, "", "your %s configuration is invalid: %v", DescriptorFile, err)
	}

	logrus.Debugf("Loaded channel descriptor %s", path)
	return validate(&models.Channel{
		Name:            s.Name,
		Summary:         s.Summary,
		URL:             s.URL,
		Alias:           s.Alias,
		Mirrors:         s.Mirrors,
		ValidatePackage: s.ValidatePackage,
		ValidateVersion: s.ValidateVersion,
	})
}

func loadViper(path string) (*models.Channel, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, models.NewError(models.ErrConfig, "", "your %s configuration is invalid: %v", filepath.Base(path), err)
	}

	logrus.Debugf("Loaded channel descriptor %s", path)
	return validate(&models.Channel{
		Name:            v.GetString("name"),
		Summary:         v.GetString("summary"),
		URL:             v.GetString("url"),
		Alias:           v.GetString("alias"),
		Mirrors:         v.GetStringSlice("mirrors"),
		ValidatePackage: v.GetString("validatepackage"),
		ValidateVersion: v.GetString("validateversion"),
	})
}

// validate trims the identity and checks the required fields
func validate(c *models.Channel) (*models.Channel, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Summary = strings.TrimSpace(c.Summary)
	c.Alias = strings.TrimSpace(c.Alias)
	c.URL = strings.TrimRight(strings.TrimSpace(c.URL), "/")

	var mirrors []string
	for _, m := range c.Mirrors {
		if m = strings.TrimRight(strings.TrimSpace(m), "/"); m != "" {
			mirrors = append(mirrors, m)
		}
	}
	c.Mirrors = mirrors

	var missing []string
	if c.Name == "" {
		missing = append(missing, "name")
	}
	if c.Summary == "" {
		missing = append(missing, "summary")
	}
	if c.URL == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return nil, models.NewError(models.ErrConfig, "",
			"you must fill required tags in your channel configuration: %s", strings.Join(missing, ", "))
	}

	return c, nil
}

package rest

import (
	"bytes"
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ralt/pirum/internal/catalog"
	"github.com/ralt/pirum/internal/models"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	channel := &models.Channel{Name: "pear.example.com", Summary: "Example", URL: "http://pear.example.com"}
	alice := models.Maintainer{Nickname: "alice", Name: "Alice", URL: "http://alice.example.com", Role: models.RoleLead, Active: true}
	bob := models.Maintainer{Nickname: "bob", Name: "Bob", Role: models.RoleDeveloper}

	php := models.Mapping()
	php.Set("min", models.Scalar("5.3.0"))
	required := models.Mapping()
	required.Set("php", php)
	deps := models.Mapping()
	deps.Set("required", required)

	b := catalog.NewBuilder()
	for _, d := range []*models.Descriptor{
		{Name: "Foo", Version: "1.0.0", APIVersion: "1.0.0", Stability: models.StabilityStable, Channel: channel.Name,
			License: "MIT", Summary: "Foo", Description: "Foo package", Date: "2011-01-01 00:00:00",
			MinPHP: "5.3.0", Maintainers: []models.Maintainer{alice, bob}, Dependencies: deps,
			Size: 1234, PackageXML: []byte("<package>1.0.0</package>")},
		{Name: "Foo", Version: "2.0.0beta1", APIVersion: "2.0.0", Stability: models.StabilityBeta, Channel: channel.Name,
			License: "MIT", Summary: "Foo", Description: "Foo package", Date: "2011-02-01 00:00:00",
			MinPHP: "5.3.0", Maintainers: []models.Maintainer{alice}, Dependencies: models.Mapping(),
			Size: 2345, PackageXML: []byte("<package>2.0.0beta1</package>")},
	} {
		b.Add(models.NewRelease(d))
	}

	cat, err := b.Build(channel)
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return cat
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestGenerateLayout(t *testing.T) {
	outDir := t.TempDir()
	if err := NewGenerator().Generate(context.Background(), testCatalog(t), outDir); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	expected := []string{
		"rest/p/packages.xml",
		"rest/p/foo/info.xml",
		"rest/p/foo/maintainers.xml",
		"rest/p/foo/maintainers2.xml",
		"rest/r/foo/allreleases.xml",
		"rest/r/foo/allreleases2.xml",
		"rest/r/foo/1.0.0.xml",
		"rest/r/foo/v2.1.0.0.xml",
		"rest/r/foo/package.1.0.0.xml",
		"rest/r/foo/deps.1.0.0.txt",
		"rest/r/foo/2.0.0beta1.xml",
		"rest/r/foo/latest.txt",
		"rest/r/foo/stable.txt",
		"rest/r/foo/beta.txt",
		"rest/c/categories.xml",
		"rest/c/Default/info.xml",
		"rest/c/Default/packages.xml",
		"rest/c/Default/packagesinfo.xml",
		"rest/m/alice/info.xml",
		"rest/m/bob/info.xml",
		"rest/m/allmaintainers.xml",
	}
	for _, rel := range expected {
		if _, err := os.Stat(filepath.Join(outDir, rel)); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}

	for _, rel := range []string{"rest/r/foo/alpha.txt", "rest/r/foo/snapshot.txt", "rest/r/foo/devel.txt"} {
		if _, err := os.Stat(filepath.Join(outDir, rel)); !os.IsNotExist(err) {
			t.Errorf("%s should not exist", rel)
		}
	}
}

func TestGeneratePointers(t *testing.T) {
	outDir := t.TempDir()
	if err := NewGenerator().Generate(context.Background(), testCatalog(t), outDir); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	dir := filepath.Join(outDir, "rest", "r", "foo")
	for file, want := range map[string]string{
		"latest.txt": "2.0.0beta1",
		"stable.txt": "1.0.0",
		"beta.txt":   "2.0.0beta1",
	} {
		if got := readFile(t, filepath.Join(dir, file)); got != want {
			t.Errorf("%s = %q, want %q", file, got, want)
		}
	}

	if got := readFile(t, filepath.Join(dir, "package.1.0.0.xml")); got != "<package>1.0.0</package>" {
		t.Errorf("package.xml not republished verbatim: %q", got)
	}
	if got := readFile(t, filepath.Join(dir, "deps.1.0.0.txt")); got != `a:1:{s:8:"required";a:1:{s:3:"php";a:1:{s:3:"min";s:5:"5.3.0";}}}` {
		t.Errorf("unexpected deps: %s", got)
	}
	if got := readFile(t, filepath.Join(dir, "deps.2.0.0beta1.txt")); got != "a:0:{}" {
		t.Errorf("unexpected empty deps: %s", got)
	}
}

func TestGenerateReleaseDocument(t *testing.T) {
	outDir := t.TempDir()
	if err := NewGenerator().Generate(context.Background(), testCatalog(t), outDir); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var r struct {
		Version    string `xml:"v"`
		APIVersion string `xml:"a"`
		MinPHP     string `xml:"mp"`
		Maintainer string `xml:"m"`
		Size       int64  `xml:"f"`
		Get        string `xml:"g"`
	}
	doc := readFile(t, filepath.Join(outDir, "rest", "r", "foo", "v2.1.0.0.xml"))
	if err := xml.Unmarshal([]byte(doc), &r); err != nil {
		t.Fatalf("invalid release document: %v", err)
	}

	if r.Version != "1.0.0" || r.APIVersion != "1.0.0" || r.MinPHP != "5.3.0" {
		t.Errorf("unexpected versions: %+v", r)
	}
	if r.Maintainer != "alice" || r.Size != 1234 {
		t.Errorf("unexpected maintainer/size: %+v", r)
	}
	if r.Get != "http://pear.example.com/get/Foo-1.0.0" {
		t.Errorf("unexpected download url %q", r.Get)
	}
	if !strings.Contains(doc, `xmlns="http://pear.php.net/dtd/rest.release2"`) {
		t.Errorf("missing namespace in:\n%s", doc)
	}
	if !strings.Contains(doc, `xlink:href="/rest/p/foo"`) {
		t.Errorf("missing package link in:\n%s", doc)
	}

	v1 := readFile(t, filepath.Join(outDir, "rest", "r", "foo", "1.0.0.xml"))
	if strings.Contains(v1, "<mp>") {
		t.Errorf("v1 release document should not carry <mp>:\n%s", v1)
	}
}

func TestGenerateMaintainers(t *testing.T) {
	outDir := t.TempDir()
	if err := NewGenerator().Generate(context.Background(), testCatalog(t), outDir); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var m struct {
		Maintainers []struct {
			Handle string `xml:"h"`
			Active string `xml:"a"`
			Role   string `xml:"r"`
		} `xml:"m"`
	}
	doc := readFile(t, filepath.Join(outDir, "rest", "p", "foo", "maintainers2.xml"))
	if err := xml.Unmarshal([]byte(doc), &m); err != nil {
		t.Fatalf("invalid maintainers document: %v", err)
	}

	// Only the latest release's maintainers are listed
	if len(m.Maintainers) != 1 || m.Maintainers[0].Handle != "alice" ||
		m.Maintainers[0].Active != "yes" || m.Maintainers[0].Role != "lead" {
		t.Errorf("unexpected maintainers: %+v", m.Maintainers)
	}

	var all struct {
		Handles []string `xml:"h"`
	}
	if err := xml.Unmarshal([]byte(readFile(t, filepath.Join(outDir, "rest", "m", "allmaintainers.xml"))), &all); err != nil {
		t.Fatalf("invalid allmaintainers document: %v", err)
	}
	if diff := cmp.Diff([]string{"alice", "bob"}, all.Handles); diff != "" {
		t.Errorf("allmaintainers mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	cat := testCatalog(t)
	first := t.TempDir()
	second := t.TempDir()

	if err := NewGenerator().Generate(context.Background(), cat, first); err != nil {
		t.Fatal(err)
	}
	if err := NewGenerator().Generate(context.Background(), cat, second); err != nil {
		t.Fatal(err)
	}

	err := filepath.Walk(first, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(first, path)
		a, _ := os.ReadFile(path)
		b, err := os.ReadFile(filepath.Join(second, rel))
		if err != nil {
			t.Errorf("%s missing from second run", rel)
			return nil
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s differs between runs", rel)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewGenerator().Generate(ctx, testCatalog(t), t.TempDir()); err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
}

package descriptor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ralt/pirum/internal/models"
)

const fooPackageXML = `<?xml version="1.0" encoding="UTF-8"?>
<package packagerversion="1.9.4" version="2.0" xmlns="http://pear.php.net/dtd/package-2.0">
 <name>Foo</name>
 <channel>pear.example.com</channel>
 <summary>Foo does things</summary>
 <description>A longer description of Foo.</description>
 <lead>
  <name>Alice Doe</name>
  <user>alice</user>
  <email>alice@example.com</email>
  <active>yes</active>
 </lead>
 <developer>
  <name>Bob Roe</name>
  <user>bob</user>
  <email>bob@example.com</email>
  <active>no</active>
 </developer>
 <date>2011-03-04</date>
 <time>10:20:30</time>
 <version>
  <release>1.2.0beta1</release>
  <api>1.2.0</api>
 </version>
 <stability>
  <release>beta</release>
  <api>stable</api>
 </stability>
 <license uri="http://www.opensource.org/licenses/mit-license.php">MIT</license>
 <notes>First beta.</notes>
 <dependencies>
  <required>
   <php><min>5.2.4</min></php>
   <pearinstaller><min>1.4.0</min></pearinstaller>
   <package><name>Bar</name><channel>pear.example.com</channel></package>
   <package><name>Baz</name><channel>pear.example.com</channel><min>2.0.0</min></package>
  </required>
  <group name="db" hint="Database support">
   <package><name>Db</name><channel>pear.example.com</channel></package>
  </group>
 </dependencies>
 <phprelease/>
</package>
`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(fooPackageXML), "Foo", "1.2.0beta1")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	checks := map[string][2]string{
		"Name":         {d.Name, "Foo"},
		"Version":      {d.Version, "1.2.0beta1"},
		"APIVersion":   {d.APIVersion, "1.2.0"},
		"Stability":    {string(d.Stability), "beta"},
		"APIStability": {string(d.APIStability), "stable"},
		"License":      {d.License, "MIT"},
		"LicenseURI":   {d.LicenseURI, "http://www.opensource.org/licenses/mit-license.php"},
		"Summary":      {d.Summary, "Foo does things"},
		"Channel":      {d.Channel, "pear.example.com"},
		"Date":         {d.Date, "2011-03-04 10:20:30"},
		"MinPHP":       {d.MinPHP, "5.2.4"},
		"Notes":        {d.Notes, "First beta."},
	}
	for field, v := range checks {
		if v[0] != v[1] {
			t.Errorf("%s = %q, want %q", field, v[0], v[1])
		}
	}

	want := []models.Maintainer{
		{Nickname: "alice", Name: "Alice Doe", Email: "alice@example.com", Role: models.RoleLead, Active: true},
		{Nickname: "bob", Name: "Bob Roe", Email: "bob@example.com", Role: models.RoleDeveloper, Active: false},
	}
	if diff := cmp.Diff(want, d.Maintainers); diff != "" {
		t.Errorf("Maintainers mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDependencyTree(t *testing.T) {
	d, err := Parse([]byte(fooPackageXML), "Foo", "1.2.0beta1")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	deps := d.Dependencies
	if got := deps.Keys; !cmp.Equal(got, []string{"required", "group"}) {
		t.Fatalf("top-level keys = %v", got)
	}

	packages := deps.Get("required").Get("package")
	if packages == nil || packages.Kind != models.SequenceNode || packages.Len() != 2 {
		t.Fatalf("expected repeated <package> to become a sequence of 2, got %+v", packages)
	}
	if got := packages.Items[1].Get("min").String(); got != "2.0.0" {
		t.Errorf("second package min = %q", got)
	}

	groups := deps.Get("group")
	if groups.Kind != models.SequenceNode || groups.Len() != 1 {
		t.Fatalf("expected one group entry, got %+v", groups)
	}
	g := groups.Items[0]
	if got := g.Get("attribs").Get("name").String(); got != "db" {
		t.Errorf("group name = %q", got)
	}
	if got := g.Get("attribs").Get("hint").String(); got != "Database support" {
		t.Errorf("group hint = %q", got)
	}
	if got := g.Get("package").Get("name").String(); got != "Db" {
		t.Errorf("group package = %q", got)
	}
}

func TestParseNameMismatch(t *testing.T) {
	_, err := Parse([]byte(fooPackageXML), "Bar", "1.2.0beta1")
	if !models.IsType(err, models.ErrConsistency) {
		t.Fatalf("expected ConsistencyError, got %v", err)
	}
}

func TestParseVersionMismatch(t *testing.T) {
	_, err := Parse([]byte(fooPackageXML), "Foo", "1.2.0")
	if !models.IsType(err, models.ErrConsistency) {
		t.Fatalf("expected ConsistencyError, got %v", err)
	}
}

func TestParseInvalidDocument(t *testing.T) {
	_, err := Parse([]byte("<notapackage/>"), "Foo", "1.0.0")
	if !models.IsType(err, models.ErrIntegrity) {
		t.Fatalf("expected IntegrityError, got %v", err)
	}
}

func TestParseDuplicateMaintainerKeepsPosition(t *testing.T) {
	doc := `<package><name>Foo</name><version><release>1.0.0</release></version>
<lead><user>alice</user><name>Alice</name><active>yes</active></lead>
<lead><user>carol</user><name>Carol</name><active>yes</active></lead>
<developer><user>alice</user><name>Alice D.</name><active>yes</active></developer>
</package>`

	d, err := Parse([]byte(doc), "Foo", "1.0.0")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(d.Maintainers) != 2 {
		t.Fatalf("expected 2 maintainers, got %d", len(d.Maintainers))
	}
	if d.Maintainers[0].Nickname != "alice" || d.Maintainers[0].Role != models.RoleDeveloper {
		t.Errorf("unexpected first maintainer: %+v", d.Maintainers[0])
	}
	if d.Dependencies.Len() != 0 {
		t.Errorf("expected empty dependencies, got %d entries", d.Dependencies.Len())
	}
}

func TestParseRejectsUnsafeNickname(t *testing.T) {
	for _, user := range []string{"", "../../../escaped", "a/b", `a\b`, "..", "."} {
		doc := `<package><name>Foo</name><version><release>1.0.0</release></version>
<lead><user>` + user + `</user><name>Alice</name><active>yes</active></lead>
</package>`

		if _, err := Parse([]byte(doc), "Foo", "1.0.0"); !models.IsType(err, models.ErrConsistency) {
			t.Errorf("user %q: expected ConsistencyError, got %v", user, err)
		}
	}
}
